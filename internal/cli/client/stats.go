package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// KnowledgeStats represents the knowledge stats API response.
type KnowledgeStats struct {
	Total         int     `json:"total"`
	HighValue     int     `json:"high_value"`
	GraphKeywords int     `json:"graph_keywords"`
	AvgScore      float64 `json:"avg_score"`
}

// IndexStats represents the index stats API response.
type IndexStats struct {
	TotalChunks    int    `json:"total_chunks"`
	IndexKind      string `json:"index_kind"`
	EmbeddingModel string `json:"embedding_model"`
}

// KnowledgeEntry represents one learned knowledge entry.
type KnowledgeEntry struct {
	ID              string  `json:"id"`
	Question        string  `json:"question"`
	Response        string  `json:"response"`
	InteractionType string  `json:"interaction_type"`
	ValueScore      float64 `json:"value_score"`
	UsageCount      int     `json:"usage_count"`
	CreatedAt       string  `json:"created_at"`
}

// KnowledgeList represents the knowledge list API response.
type KnowledgeList struct {
	Items []KnowledgeEntry `json:"items"`
}

// KnowledgeCmd creates the knowledge parent command.
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect the learned knowledge base",
		Long:  "List recent knowledge entries and show learning statistics",
	}

	cmd.AddCommand(KnowledgeListCmd())
	cmd.AddCommand(KnowledgeStatsCmd())

	return cmd
}

// KnowledgeListCmd creates the knowledge list command.
func KnowledgeListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent knowledge entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runKnowledgeList(limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")

	return cmd
}

func runKnowledgeList(limit int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/knowledge?limit=%d", limit))
	if err != nil {
		return fmt.Errorf("failed to list knowledge: %w", err)
	}

	var list KnowledgeList
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		return fmt.Errorf("failed to parse knowledge entries: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(list.Items) == 0 {
		fmt.Println("No knowledge entries yet.")
		return nil
	}

	fmt.Printf("Knowledge entries (%d):\n\n", len(list.Items))
	for i, e := range list.Items {
		question := e.Question
		if len(question) > 80 {
			question = question[:77] + "..."
		}
		fmt.Printf("%d. %s\n", i+1, question)
		fmt.Printf("   score: %.2f, used: %d, type: %s, created: %s\n", e.ValueScore, e.UsageCount, e.InteractionType, e.CreatedAt)
		if i < len(list.Items)-1 {
			fmt.Println()
		}
	}

	return nil
}

// KnowledgeStatsCmd creates the knowledge stats command.
func KnowledgeStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base and index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runKnowledgeStats(outputJSON)
		},
	}

	return cmd
}

func runKnowledgeStats(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/knowledge/stats")
	if err != nil {
		return fmt.Errorf("failed to get knowledge stats: %w", err)
	}

	var stats KnowledgeStats
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return fmt.Errorf("failed to parse knowledge stats: %w", err)
	}

	indexResp, err := api.Get("/index/stats")
	if err != nil {
		return fmt.Errorf("failed to get index stats: %w", err)
	}

	var indexStats IndexStats
	if err := json.Unmarshal(indexResp.Data, &indexStats); err != nil {
		return fmt.Errorf("failed to parse index stats: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(map[string]interface{}{
			"knowledge": stats,
			"index":     indexStats,
		}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println("Knowledge base:")
	fmt.Printf("  Entries: %d\n", stats.Total)
	fmt.Printf("  High value: %d\n", stats.HighValue)
	fmt.Printf("  Graph keywords: %d\n", stats.GraphKeywords)
	fmt.Printf("  Average score: %.2f\n", stats.AvgScore)
	fmt.Println("Index:")
	fmt.Printf("  Chunks: %d\n", indexStats.TotalChunks)
	fmt.Printf("  Kind: %s\n", indexStats.IndexKind)
	fmt.Printf("  Embedding model: %s\n", indexStats.EmbeddingModel)

	return nil
}
