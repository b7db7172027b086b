package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbia-ai/orbia/internal/domain"
)

func (r *Registry) updateKnowledge(ctx context.Context, params map[string]any, ownerID string) (map[string]any, error) {
	text := stringParam(params, "text", "")
	if text == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "aucun texte fourni pour la mise à jour")
	}
	source := stringParam(params, "source", "agentic_update")

	added, err := r.index.Add(ctx, []domain.Chunk{
		domain.NewChunk(text, domain.ChunkMetadata{
			Source:   source,
			OwnerID:  ownerID,
			AddedVia: "agentic_update",
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("mise à jour des connaissances échouée: %w", err)
	}

	return map[string]any{
		"action":       domain.ActionKnowledgeUpdate,
		"chunks_added": added,
		"source":       source,
	}, nil
}

func (r *Registry) generateSummary(ctx context.Context, params map[string]any, ownerID string) (map[string]any, error) {
	conversationID := stringParam(params, "conversation_id", "")
	if conversationID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "identifiant de conversation requis")
	}

	conversation, err := r.convos.Get(ctx, ownerID, conversationID)
	if err != nil {
		return nil, err
	}

	var transcript strings.Builder
	for _, msg := range conversation.Messages {
		fmt.Fprintf(&transcript, "%s: %s\n", msg.Role, msg.Content)
	}

	prompt := fmt.Sprintf(`Résumez cette conversation en mettant en évidence:
1. Les questions principales posées
2. Les réponses importantes
3. Les conclusions ou actions à prendre

Conversation:
%s`, transcript.String())

	summary, err := r.llm.Generate(ctx, []domain.Message{{Role: domain.RoleUser, Content: prompt}})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"conversation_id": conversationID,
		"message_count":   len(conversation.Messages),
		"summary":         summary,
	}, nil
}
