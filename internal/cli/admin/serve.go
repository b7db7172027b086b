package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/orbia-ai/orbia/internal/actions"
	"github.com/orbia-ai/orbia/internal/api/handlers"
	"github.com/orbia-ai/orbia/internal/auth"
	"github.com/orbia-ai/orbia/internal/config"
	"github.com/orbia-ai/orbia/internal/database"
	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/intent"
	"github.com/orbia-ai/orbia/internal/jobs"
	"github.com/orbia-ai/orbia/internal/knowledge"
	"github.com/orbia-ai/orbia/internal/llm"
	"github.com/orbia-ai/orbia/internal/openai"
	"github.com/orbia-ai/orbia/internal/orchestrator"
	"github.com/orbia-ai/orbia/internal/repository"
	"github.com/orbia-ai/orbia/internal/server"
	"github.com/orbia-ai/orbia/internal/storage"
	"github.com/orbia-ai/orbia/internal/telemetry"
	"github.com/orbia-ai/orbia/internal/vectorindex"
	"github.com/orbia-ai/orbia/internal/websearch"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the orbia API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("ORBIA_OPENAI_API_KEY is required: the vector index cannot embed without it")
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	conversationRepo := repository.NewConversationRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	learningJobRepo := repository.NewLearningJobRepository(pool)

	authSvc := auth.NewService(userRepo, apiKeyRepo, &auth.DefaultUUIDGenerator{})

	if cfg.InitUserName != "" {
		if err := bootstrapInitialUser(ctx, cfg, userRepo, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial user: %w", err)
		}
	}

	embeddingClient := openai.NewClient(cfg.OpenAIAPIKey)

	indexStore, err := vectorindex.NewStore(cfg.IndexDir)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}

	index, err := vectorindex.New(ctx, embeddingClient, indexStore, vectorindex.Config{
		Split: vectorindex.SplitConfig{
			MaxChars: cfg.ChunkMaxChars,
			Overlap:  cfg.ChunkOverlap,
		},
		StrictOwnerFilter: cfg.StrictOwnerFilter,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector index: %w", err)
	}

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready, snapshot backup enabled", cfg.S3Bucket)
		index.WithBackup(s3Client)
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:            cfg.GroqAPIKey,
		BaseURL:           cfg.GroqBaseURL,
		RequestsPerSecond: 5,
		Burst:             5,
	})

	searchProviders := []websearch.Provider{
		websearch.NewDuckDuckGo(),
		websearch.NewWikipedia(),
	}
	if cfg.HasSearxNG() {
		searchProviders = append(searchProviders, websearch.NewSearxNG(cfg.SearxNGURL))
	}
	searchSvc := websearch.NewService(searchProviders...)

	knowledgeStore := knowledge.NewStore(knowledgeRepo, index, embeddingClient, cfg.MinValueScore)

	registry, err := actions.NewRegistry(llmClient, searchSvc, index, conversationRepo)
	if err != nil {
		return fmt.Errorf("failed to build action registry: %w", err)
	}

	chat := orchestrator.New(
		intent.NewRouter(cfg.IntentThreshold),
		knowledgeStore,
		registry,
		index,
		llmClient,
		conversationRepo,
		learningJobRepo,
		cfg.RetrievalK,
	)

	learningWorker := jobs.NewWorker(jobs.NewLearningWorker(learningJobRepo, knowledgeStore), 10*time.Second)
	go learningWorker.Start(ctx)
	log.Println("learning worker started")

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:       authSvc,
		ChatHandler:         handlers.NewChatHandler(chat),
		ConversationHandler: handlers.NewConversationHandler(conversationRepo),
		AgenticHandler:      handlers.NewAgenticHandler(registry),
		KnowledgeHandler:    handlers.NewKnowledgeHandler(knowledgeStore, index),
		AuthHandler:         handlers.NewAuthHandler(authSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	learningWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func bootstrapInitialUser(ctx context.Context, cfg *config.Config, userRepo *repository.UserRepository, authSvc *auth.Service) error {
	user, err := userRepo.GetByName(ctx, cfg.InitUserName)
	if err != nil && err != domain.ErrUserNotFound {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	if user == nil {
		user, err = authSvc.CreateUser(ctx, cfg.InitUserName)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		log.Printf("bootstrap: created user '%s' (id: %s)", user.Name, user.ID)
	} else {
		log.Printf("bootstrap: user '%s' already exists (id: %s)", user.Name, user.ID)
	}

	if cfg.InitAPIKey != "" {
		if !auth.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid ORBIA_INIT_API_KEY format (expected 'orb_<64 hex chars>')")
		}

		if _, err := authSvc.ValidateAPIKey(ctx, cfg.InitAPIKey); err == nil {
			log.Println("bootstrap: API key already exists")
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, user.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Println("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
