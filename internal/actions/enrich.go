package actions

import (
	"context"
	"fmt"
	"log"

	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/websearch"
)

// enrich feeds a successful action's output back into the vector index under
// the acting owner. Best-effort: failures are logged and never surface.
func (r *Registry) enrich(ctx context.Context, name string, params map[string]any, ownerID string, payload map[string]any) {
	chunks := enrichmentChunks(name, params, ownerID, payload)
	if len(chunks) == 0 {
		return
	}

	added, err := r.index.Add(ctx, chunks)
	if err != nil {
		log.Printf("actions: knowledge enrichment from %s failed: %v", name, err)
		return
	}
	log.Printf("actions: %d chunks added from %s", added, name)
}

func enrichmentChunks(name string, params map[string]any, ownerID string, payload map[string]any) []domain.Chunk {
	switch name {
	case domain.ActionWebSearch:
		return searchChunks(ownerID, payload)
	case domain.ActionDataAnalysis:
		if content := analysisDigest(payload); content != "" {
			return []domain.Chunk{domain.NewChunk(content, domain.ChunkMetadata{
				Source:   domain.ActionDataAnalysis,
				OwnerID:  ownerID,
				AddedVia: "agentic_action",
			})}
		}
	case domain.ActionDocProcessing:
		if content := documentDigest(payload); content != "" {
			return []domain.Chunk{domain.NewChunk(content, domain.ChunkMetadata{
				Source:   domain.ActionDocProcessing,
				OwnerID:  ownerID,
				AddedVia: "agentic_action",
			})}
		}
	}
	return nil
}

// searchChunks converts live web hits into chunks. Fallback answers carry no
// provenance and are skipped.
func searchChunks(ownerID string, payload map[string]any) []domain.Chunk {
	results, ok := payload["results"].([]websearch.Result)
	if !ok {
		return nil
	}
	query, _ := payload["query"].(string)

	chunks := make([]domain.Chunk, 0, len(results))
	for _, res := range results {
		content := fmt.Sprintf("Titre: %s\n\nContenu: %s", res.Title, res.Content)
		chunks = append(chunks, domain.NewChunk(content, domain.ChunkMetadata{
			Source:   res.Source,
			OwnerID:  ownerID,
			URL:      res.URL,
			Query:    query,
			AddedVia: "agentic_action",
		}))
	}
	return chunks
}

func analysisDigest(payload map[string]any) string {
	switch payload["type"] {
	case "numeric_analysis":
		return fmt.Sprintf("Analyse numérique: %v valeurs, somme %v, moyenne %v, min %v, max %v",
			payload["count"], payload["sum"], payload["average"], payload["min"], payload["max"])
	case "text_analysis":
		return fmt.Sprintf("Analyse textuelle: %v mots, %v caractères",
			payload["word_count"], payload["character_count"])
	}
	return ""
}

func documentDigest(payload map[string]any) string {
	if summary, ok := payload["summary"].(string); ok && summary != "" {
		return "Résumé du document: " + summary
	}
	if keypoints, ok := payload["keypoints"].(string); ok && keypoints != "" {
		return "Points clés du document: " + keypoints
	}
	return ""
}
