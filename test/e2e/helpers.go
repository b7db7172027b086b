//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbia-ai/orbia/internal/actions"
	"github.com/orbia-ai/orbia/internal/api/handlers"
	"github.com/orbia-ai/orbia/internal/auth"
	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/intent"
	"github.com/orbia-ai/orbia/internal/jobs"
	"github.com/orbia-ai/orbia/internal/knowledge"
	"github.com/orbia-ai/orbia/internal/orchestrator"
	"github.com/orbia-ai/orbia/internal/repository"
	"github.com/orbia-ai/orbia/internal/server"
	"github.com/orbia-ai/orbia/internal/testutil"
	"github.com/orbia-ai/orbia/internal/vectorindex"
	"github.com/orbia-ai/orbia/internal/websearch"
)

// assistantReply is long and structured enough to clear the learning
// admission gate.
const assistantReply = "Voici une réponse détaillée à votre question.\n" +
	"- Le point principal est expliqué en premier\n" +
	"- Les détails techniques suivent avec des exemples concrets\n" +
	"- La conclusion résume les étapes à retenir\n" +
	"N'hésitez pas à demander des précisions supplémentaires sur chaque point."

// fakeLLM answers deterministically; it stands in for the Groq client so the
// suite runs without network access.
type fakeLLM struct{}

func (f *fakeLLM) Respond(ctx context.Context, messages []domain.Message) string {
	return assistantReply
}

func (f *fakeLLM) Generate(ctx context.Context, messages []domain.Message) (string, error) {
	return assistantReply, nil
}

// fakeEmbedder produces stable byte-derived vectors so similarity search
// works without an embedding API.
type fakeEmbedder struct{}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, b := range []byte(text) {
		vec[i%8] += float32(b) / 255
	}
	return vec, nil
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, _ := f.GenerateEmbedding(ctx, t)
		out[i] = v
	}
	return out, nil
}

// fakeSearcher returns one canned web result.
type fakeSearcher struct{}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) *websearch.Outcome {
	return &websearch.Outcome{
		Query: query,
		Results: []websearch.Result{
			{Title: "Résultat de test", URL: "https://example.org", Content: "Contenu de test pour " + query, Source: "fake", Confidence: 0.9},
		},
		ResultCount:   1,
		Status:        "success",
		HasWebResults: true,
	}
}

// TestEnv holds everything a flow test needs: the running server, direct
// repository access, and the background learning processor.
type TestEnv struct {
	T               *testing.T
	Ctx             context.Context
	Pool            *pgxpool.Pool
	Server          *httptest.Server
	LearningJobRepo *repository.LearningJobRepository
	KnowledgeRepo   *repository.KnowledgeRepository
	Processor       *jobs.LearningWorker
	HTTPClient      *http.Client

	UserID   string
	APIToken string
}

// SetupEnv starts Postgres, runs migrations, and wires the full service with
// fake LLM and embedding backends.
func SetupEnv(t *testing.T) *TestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")
	t.Cleanup(func() {
		pool.Close()
		pgC.Terminate(ctx)
	})

	conversationRepo := repository.NewConversationRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	learningJobRepo := repository.NewLearningJobRepository(pool)

	authSvc := auth.NewService(userRepo, apiKeyRepo, &auth.DefaultUUIDGenerator{})

	embedder := &fakeEmbedder{}
	llm := &fakeLLM{}

	indexStore, err := vectorindex.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open index store: %v", err)
	}
	index, err := vectorindex.New(ctx, embedder, indexStore, vectorindex.Config{
		Split: vectorindex.DefaultSplitConfig(),
	})
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	knowledgeStore := knowledge.NewStore(knowledgeRepo, index, embedder, 0.3)

	registry, err := actions.NewRegistry(llm, &fakeSearcher{}, index, conversationRepo)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	chat := orchestrator.New(
		intent.NewRouter(0.6),
		knowledgeStore,
		registry,
		index,
		llm,
		conversationRepo,
		learningJobRepo,
		3,
	)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:       authSvc,
		ChatHandler:         handlers.NewChatHandler(chat),
		ConversationHandler: handlers.NewConversationHandler(conversationRepo),
		AgenticHandler:      handlers.NewAgenticHandler(registry),
		KnowledgeHandler:    handlers.NewKnowledgeHandler(knowledgeStore, index),
		AuthHandler:         handlers.NewAuthHandler(authSvc),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &TestEnv{
		T:               t,
		Ctx:             ctx,
		Pool:            pool,
		Server:          srv,
		LearningJobRepo: learningJobRepo,
		KnowledgeRepo:   knowledgeRepo,
		Processor:       jobs.NewLearningWorker(learningJobRepo, knowledgeStore),
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Bootstrap creates a user and API key through the open endpoints.
func (e *TestEnv) Bootstrap() {
	userResp, err := e.Post("/users", map[string]string{"name": "e2e-user"}, "")
	if err != nil {
		e.T.Fatalf("failed to create user: %v", err)
	}

	var user struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(userResp.Data, &user); err != nil {
		e.T.Fatalf("failed to parse user response: %v", err)
	}
	e.UserID = user.ID

	keyResp, err := e.Post("/apikeys", map[string]string{
		"user_id": e.UserID,
		"name":    "e2e-key",
	}, "")
	if err != nil {
		e.T.Fatalf("failed to create API key: %v", err)
	}

	var key struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(keyResp.Data, &key); err != nil {
		e.T.Fatalf("failed to parse key response: %v", err)
	}
	e.APIToken = key.Token
}

// DrainLearningJobs processes pending learning jobs until none remain.
func (e *TestEnv) DrainLearningJobs() {
	for i := 0; i < 10; i++ {
		if err := e.Processor.ProcessJobs(e.Ctx); err != nil {
			e.T.Fatalf("failed to process learning jobs: %v", err)
		}
		counts, err := e.LearningJobRepo.CountByStatus(e.Ctx)
		if err != nil {
			e.T.Fatalf("failed to count jobs: %v", err)
		}
		if counts[domain.LearningJobStatusPending] == 0 && counts[domain.LearningJobStatusProcessing] == 0 {
			return
		}
	}
	e.T.Fatal("learning jobs did not drain")
}

// APIResponse is the standard response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request.
func (e *TestEnv) Get(path, token string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, token)
}

// Post performs a POST request.
func (e *TestEnv) Post(path string, body interface{}, token string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, token)
}

// Delete performs a DELETE request.
func (e *TestEnv) Delete(path, token string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, token)
}

func (e *TestEnv) doRequest(method, path string, body interface{}, token string) (*APIResponse, error) {
	url := e.Server.URL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}
