package actions

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orbia-ai/orbia/internal/domain"
)

func TestRegistry_KnowledgeUpdate(t *testing.T) {
	registry, _, _, index, _ := newTestRegistry(t)

	index.On("Add", mock.Anything, mock.MatchedBy(func(chunks []domain.Chunk) bool {
		return len(chunks) == 1 &&
			chunks[0].Content == "Les sauvegardes tournent chaque nuit à 2h." &&
			chunks[0].Metadata.Source == "runbook" &&
			chunks[0].Metadata.OwnerID == "user-1" &&
			chunks[0].Metadata.AddedVia == "agentic_update"
	})).Return(1, nil)

	result := registry.Execute(context.Background(), domain.ActionKnowledgeUpdate, map[string]any{
		"text":   "Les sauvegardes tournent chaque nuit à 2h.",
		"source": "runbook",
	}, "user-1")

	require.True(t, result.Succeeded())
	assert.Equal(t, 1, result.Result["chunks_added"])
	assert.Equal(t, "runbook", result.Result["source"])
	index.AssertExpectations(t)
}

func TestRegistry_KnowledgeUpdate_MissingText(t *testing.T) {
	registry, _, _, index, _ := newTestRegistry(t)

	result := registry.Execute(context.Background(), domain.ActionKnowledgeUpdate, map[string]any{}, "user-1")

	assert.Equal(t, domain.ActionStatusError, result.Status)
	assert.Contains(t, result.Error, "aucun texte fourni")
	index.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestRegistry_SummaryGeneration(t *testing.T) {
	registry, llm, _, _, convos := newTestRegistry(t)

	conversation := &domain.Conversation{
		ID:      "conv-1",
		OwnerID: "user-1",
		Title:   "Déploiement",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "Comment déployer le service ?", Timestamp: time.Now()},
			{Role: domain.RoleAssistant, Content: "Utilisez le pipeline de production.", Timestamp: time.Now()},
		},
	}
	convos.On("Get", mock.Anything, "user-1", "conv-1").Return(conversation, nil)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(messages []domain.Message) bool {
		return len(messages) == 1 &&
			strings.Contains(messages[0].Content, "Résumez cette conversation") &&
			strings.Contains(messages[0].Content, "user: Comment déployer le service ?")
	})).Return("Résumé: déploiement via pipeline.", nil)

	result := registry.Execute(context.Background(), domain.ActionSummary, map[string]any{
		"conversation_id": "conv-1",
	}, "user-1")

	require.True(t, result.Succeeded())
	assert.Equal(t, "conv-1", result.Result["conversation_id"])
	assert.Equal(t, 2, result.Result["message_count"])
	assert.Equal(t, "Résumé: déploiement via pipeline.", result.Result["summary"])
}

func TestRegistry_SummaryGeneration_NotFound(t *testing.T) {
	registry, _, _, _, convos := newTestRegistry(t)

	convos.On("Get", mock.Anything, "user-1", "missing").Return(nil, domain.ErrConversationNotFound)

	result := registry.Execute(context.Background(), domain.ActionSummary, map[string]any{
		"conversation_id": "missing",
	}, "user-1")

	assert.Equal(t, domain.ActionStatusError, result.Status)
	assert.Contains(t, result.Error, "conversation not found")
}

func TestRegistry_SummaryGeneration_MissingID(t *testing.T) {
	registry, _, _, _, convos := newTestRegistry(t)

	result := registry.Execute(context.Background(), domain.ActionSummary, map[string]any{}, "user-1")

	assert.Equal(t, domain.ActionStatusError, result.Status)
	assert.Contains(t, result.Error, "identifiant de conversation requis")
	convos.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}
