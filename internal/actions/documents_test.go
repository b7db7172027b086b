package actions

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orbia-ai/orbia/internal/domain"
)

func TestRegistry_DocumentProcessing_Summarize(t *testing.T) {
	registry, llm, _, index, _ := newTestRegistry(t)

	llm.On("Generate", mock.Anything, mock.MatchedBy(func(messages []domain.Message) bool {
		return len(messages) == 1 && strings.HasPrefix(messages[0].Content, "Résumez ce document")
	})).Return("Un résumé court.", nil)
	index.On("Add", mock.Anything, mock.Anything).Return(1, nil)

	result := registry.Execute(context.Background(), domain.ActionDocProcessing, map[string]any{
		"action":  "summarize",
		"content": "Un long document sur l'architecture logicielle.",
	}, "user-1")

	require.True(t, result.Succeeded())
	assert.Equal(t, "summarize", result.Result["action"])
	assert.Equal(t, "Un résumé court.", result.Result["summary"])
	assert.Equal(t, 16, result.Result["summary_length"])
	llm.AssertExpectations(t)
}

func TestRegistry_DocumentProcessing_ExtractKeypoints(t *testing.T) {
	registry, llm, _, index, _ := newTestRegistry(t)

	llm.On("Generate", mock.Anything, mock.MatchedBy(func(messages []domain.Message) bool {
		return len(messages) == 1 && strings.HasPrefix(messages[0].Content, "Extrayez les points clés")
	})).Return("- point un\n- point deux", nil)
	index.On("Add", mock.Anything, mock.Anything).Return(1, nil)

	result := registry.Execute(context.Background(), domain.ActionDocProcessing, map[string]any{
		"action":  "extract_keypoints",
		"content": "Compte rendu de la réunion de planification.",
	}, "user-1")

	require.True(t, result.Succeeded())
	assert.Equal(t, "- point un\n- point deux", result.Result["keypoints"])
}

func TestRegistry_DocumentProcessing_Errors(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr string
	}{
		{
			name:    "missing content",
			params:  map[string]any{"action": "summarize"},
			wantErr: "contenu du document requis",
		},
		{
			name: "unknown action",
			params: map[string]any{
				"action":  "translate",
				"content": "du texte",
			},
			wantErr: "action de document non supportée",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, _, _, _, _ := newTestRegistry(t)

			result := registry.Execute(context.Background(), domain.ActionDocProcessing, tt.params, "user-1")

			assert.Equal(t, domain.ActionStatusError, result.Status)
			assert.Contains(t, result.Error, tt.wantErr)
		})
	}
}

func TestRegistry_CodeGeneration(t *testing.T) {
	registry, llm, _, _, _ := newTestRegistry(t)

	llm.On("Generate", mock.Anything, mock.MatchedBy(func(messages []domain.Message) bool {
		return len(messages) == 1 &&
			strings.Contains(messages[0].Content, "Génère du code go pour: un serveur HTTP") &&
			strings.Contains(messages[0].Content, "Exigences: avec arrêt gracieux")
	})).Return("package main", nil)

	result := registry.Execute(context.Background(), domain.ActionCodeGen, map[string]any{
		"language":     "go",
		"task":         "un serveur HTTP",
		"requirements": "avec arrêt gracieux",
	}, "user-1")

	require.True(t, result.Succeeded())
	assert.Equal(t, "go", result.Result["language"])
	assert.Equal(t, "package main", result.Result["code"])
	assert.Equal(t, 12, result.Result["code_length"])
}

func TestRegistry_CodeGeneration_DefaultsAndErrors(t *testing.T) {
	registry, llm, _, _, _ := newTestRegistry(t)

	llm.On("Generate", mock.Anything, mock.MatchedBy(func(messages []domain.Message) bool {
		return strings.Contains(messages[0].Content, "Génère du code python pour: trier une liste")
	})).Return("def sort(xs): ...", nil)

	result := registry.Execute(context.Background(), domain.ActionCodeGen, map[string]any{
		"task": "trier une liste",
	}, "user-1")
	require.True(t, result.Succeeded())
	assert.Equal(t, "python", result.Result["language"])

	missing := registry.Execute(context.Background(), domain.ActionCodeGen, map[string]any{}, "user-1")
	assert.Equal(t, domain.ActionStatusError, missing.Status)
	assert.Contains(t, missing.Error, "description de la tâche requise")
}
