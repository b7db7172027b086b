package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionTypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		typeVal  InteractionType
		expected string
	}{
		{"WebSearch", InteractionWebSearch, "web_search"},
		{"DataAnalysis", InteractionDataAnalysis, "data_analysis"},
		{"RAGConversation", InteractionRAGConversation, "rag_conversation"},
		{"CodeGeneration", InteractionCodeGeneration, "code_generation"},
		{"DocProcessing", InteractionDocProcessing, "document_processing"},
		{"KnowledgeUpdate", InteractionKnowledgeUpdate, "knowledge_update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.typeVal))
		})
	}
}

func TestNewKnowledgeEntry(t *testing.T) {
	now := time.Now()
	entry := NewKnowledgeEntry(
		"e1",
		"user1",
		"how do goroutines work?",
		"Goroutines are lightweight threads managed by the Go runtime.",
		InteractionRAGConversation,
		0.62,
		now,
	)

	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, "user1", entry.OwnerID)
	assert.Equal(t, InteractionRAGConversation, entry.InteractionType)
	assert.Equal(t, 0.62, entry.ValueScore)
	assert.Equal(t, now, entry.CreatedAt)
	assert.Nil(t, entry.LastUsed)
	assert.Equal(t, 0, entry.UsageCount)
}

func TestKnowledgeEntryAnonymized(t *testing.T) {
	entry := NewKnowledgeEntry("e1", "user1", "q", "r", InteractionWebSearch, 0.8, time.Now())

	anon := entry.Anonymized()

	assert.Equal(t, CommunitySource, anon.OwnerID)
	assert.Equal(t, entry.Question, anon.Question)
	assert.Equal(t, entry.ValueScore, anon.ValueScore)
	// the original is untouched
	assert.Equal(t, "user1", entry.OwnerID)
}

func TestValidateKnowledgeEntry(t *testing.T) {
	now := time.Now()

	valid := func() *KnowledgeEntry {
		return NewKnowledgeEntry("e1", "user1", "question", "response", InteractionWebSearch, 0.5, now)
	}

	t.Run("valid entry passes", func(t *testing.T) {
		require.NoError(t, ValidateKnowledgeEntry(valid()))
	})

	t.Run("nil entry fails", func(t *testing.T) {
		assert.Error(t, ValidateKnowledgeEntry(nil))
	})

	tests := []struct {
		name   string
		mutate func(*KnowledgeEntry)
	}{
		{"missing ID", func(e *KnowledgeEntry) { e.ID = "" }},
		{"missing OwnerID", func(e *KnowledgeEntry) { e.OwnerID = "" }},
		{"missing Question", func(e *KnowledgeEntry) { e.Question = "" }},
		{"missing Response", func(e *KnowledgeEntry) { e.Response = "" }},
		{"invalid InteractionType", func(e *KnowledgeEntry) { e.InteractionType = "telepathy" }},
		{"score above 1", func(e *KnowledgeEntry) { e.ValueScore = 1.2 }},
		{"negative score", func(e *KnowledgeEntry) { e.ValueScore = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid()
			tt.mutate(entry)
			assert.Error(t, ValidateKnowledgeEntry(entry))
		})
	}
}

func TestLearnableInteractionTypes(t *testing.T) {
	learnable := LearnableInteractionTypes()

	assert.Len(t, learnable, 5)
	assert.NotContains(t, learnable, InteractionKnowledgeUpdate)
	for _, it := range learnable {
		assert.True(t, IsValidInteractionType(it))
	}
}

func TestEnhancedContext(t *testing.T) {
	t.Run("empty context has no knowledge", func(t *testing.T) {
		ctx := &EnhancedContext{}
		assert.False(t, ctx.HasKnowledge())
		assert.Equal(t, 0, ctx.TotalItems())
	})

	t.Run("counts all sources", func(t *testing.T) {
		ctx := &EnhancedContext{
			OwnerKnowledge:  []*KnowledgeEntry{{}, {}},
			GlobalKnowledge: []*KnowledgeEntry{{}},
			ActionKnowledge: &ActionKnowledge{Action: ActionWebSearch},
		}
		assert.True(t, ctx.HasKnowledge())
		assert.Equal(t, 4, ctx.TotalItems())
	})
}
