package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbia-ai/orbia/internal/config"
	"github.com/orbia-ai/orbia/internal/openai"
	"github.com/orbia-ai/orbia/internal/repository"
	"github.com/orbia-ai/orbia/internal/vectorindex"
)

func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the vector index",
		Long:  "Rebuild and inspect the in-memory vector index",
	}

	cmd.AddCommand(IndexRebuildCmd())
	cmd.AddCommand(IndexStatsCmd())

	return cmd
}

func IndexRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the vector index from the knowledge base",
		Long:  "Rebuild the on-disk vector index from knowledge entries with stored embeddings",
		RunE:  runIndexRebuild,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("ORBIA_OPENAI_API_KEY is required to rebuild the index")
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(pool)

	entries, err := knowledgeRepo.ListWithEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load knowledge entries: %w", err)
	}

	store, err := vectorindex.NewStore(cfg.IndexDir)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}

	index, err := vectorindex.New(ctx, openai.NewClient(cfg.OpenAIAPIKey), store, vectorindex.Config{
		Split: vectorindex.SplitConfig{
			MaxChars: cfg.ChunkMaxChars,
			Overlap:  cfg.ChunkOverlap,
		},
		StrictOwnerFilter: cfg.StrictOwnerFilter,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector index: %w", err)
	}

	indexed, err := index.Rebuild(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"entries": len(entries),
			"indexed": indexed,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Index rebuilt: %d chunks from %d knowledge entries\n", indexed, len(entries))
	}

	return nil
}

func IndexStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show vector index statistics",
		Long:  "Show chunk count and configuration of the persisted vector index",
		RunE:  runIndexStats,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runIndexStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("ORBIA_OPENAI_API_KEY is required to load the index")
	}

	store, err := vectorindex.NewStore(cfg.IndexDir)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}

	index, err := vectorindex.New(ctx, openai.NewClient(cfg.OpenAIAPIKey), store, vectorindex.Config{
		Split:             vectorindex.DefaultSplitConfig(),
		StrictOwnerFilter: cfg.StrictOwnerFilter,
	})
	if err != nil {
		return fmt.Errorf("failed to load vector index: %w", err)
	}

	stats := index.Stats()

	if outputFormat == "json" {
		data := map[string]interface{}{
			"total_chunks":    stats.TotalChunks,
			"index_kind":      stats.IndexKind,
			"embedding_model": stats.EmbeddingModel,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Index: %s\n", stats.IndexKind)
		fmt.Printf("Chunks: %d\n", stats.TotalChunks)
		fmt.Printf("Embedding model: %s\n", stats.EmbeddingModel)
	}

	return nil
}
