package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/websearch"
)

func TestBuildActionResponse_Search(t *testing.T) {
	t.Run("numbered results capped at three", func(t *testing.T) {
		result := &domain.ActionResult{
			Action: domain.ActionWebSearch,
			Status: domain.ActionStatusSuccess,
			Result: map[string]any{
				"query": "python 2025",
				"results": []websearch.Result{
					{Title: "Premier", Content: strings.Repeat("a", 250), Source: "duckduckgo"},
					{Title: "Deuxième", Content: "court", Source: "wikipedia_fr"},
					{Title: "", Content: "sans titre", Source: "searxng"},
					{Title: "Quatrième", Content: "ignoré", Source: "searxng"},
				},
			},
		}

		response, ok := BuildActionResponse(result)
		require.True(t, ok)
		assert.Contains(t, response, "🔍 **Recherche Terminée**")
		assert.Contains(t, response, "4 résultat(s) pour : 'python 2025'")
		assert.Contains(t, response, "**1. Premier**")
		assert.Contains(t, response, strings.Repeat("a", 200)+"...")
		assert.Contains(t, response, "**3. Sans titre**")
		assert.NotContains(t, response, "Quatrième")
		assert.Contains(t, response, "*Source: wikipedia_fr*")
	})

	t.Run("fallback answer renders from untyped payload", func(t *testing.T) {
		result := &domain.ActionResult{
			Action: domain.ActionWebSearch,
			Status: domain.ActionStatusSuccess,
			Result: map[string]any{
				"query": "calcul quantique",
				"results": []map[string]any{
					{"title": "Réponse experte sur : calcul quantique", "content": "Un panorama.", "source": "llm_fallback"},
				},
			},
		}

		response, ok := BuildActionResponse(result)
		require.True(t, ok)
		assert.Contains(t, response, "Réponse experte sur : calcul quantique")
		assert.Contains(t, response, "*Source: llm_fallback*")
	})

	t.Run("no results", func(t *testing.T) {
		result := &domain.ActionResult{
			Action: domain.ActionWebSearch,
			Status: domain.ActionStatusSuccess,
			Result: map[string]any{"query": "introuvable"},
		}

		response, ok := BuildActionResponse(result)
		require.True(t, ok)
		assert.Equal(t, "🔍 **Recherche**\n\nAucun résultat trouvé pour 'introuvable'", response)
	})

	t.Run("error keeps the search layout", func(t *testing.T) {
		result := &domain.ActionResult{
			Action: domain.ActionWebSearch,
			Status: domain.ActionStatusError,
			Error:  "requête de recherche vide",
		}

		response, ok := BuildActionResponse(result)
		require.True(t, ok)
		assert.Equal(t, "🔍 **Recherche - Service temporairement limité**\n\nrequête de recherche vide", response)
	})
}

func TestBuildActionResponse_Code(t *testing.T) {
	result := &domain.ActionResult{
		Action: domain.ActionCodeGen,
		Status: domain.ActionStatusSuccess,
		Result: map[string]any{"language": "go", "code": "package main"},
	}

	response, ok := BuildActionResponse(result)
	require.True(t, ok)
	assert.Equal(t, "💻 **Code Généré**\n\n```go\npackage main\n```", response)

	failed := &domain.ActionResult{
		Action: domain.ActionCodeGen,
		Status: domain.ActionStatusError,
		Error:  "description de la tâche requise",
	}
	response, ok = BuildActionResponse(failed)
	require.True(t, ok)
	assert.Equal(t, "💻 **Génération de Code - Erreur**\n\ndescription de la tâche requise", response)
}

func TestBuildActionResponse_Generic(t *testing.T) {
	result := &domain.ActionResult{
		Action: domain.ActionKnowledgeUpdate,
		Status: domain.ActionStatusSuccess,
		Result: map[string]any{"chunks_added": 2},
	}

	response, ok := BuildActionResponse(result)
	require.True(t, ok)
	assert.Contains(t, response, "✅ **Action 'knowledge_update' exécutée**")
	assert.Contains(t, response, "chunks_added")

	failed := &domain.ActionResult{
		Action: domain.ActionSummary,
		Status: domain.ActionStatusError,
		Error:  "conversation not found",
	}
	_, ok = BuildActionResponse(failed)
	assert.False(t, ok)
}

func TestContextPrompt(t *testing.T) {
	assert.Equal(t, "Question: quoi de neuf ?\n\nRéponse:", ContextPrompt("quoi de neuf ?", nil))

	chunks := []domain.Chunk{
		domain.NewChunk("Première note.", domain.ChunkMetadata{Source: "notes"}),
		domain.NewChunk("Seconde note.", domain.ChunkMetadata{}),
	}
	prompt := ContextPrompt("quoi de neuf ?", chunks)
	assert.Contains(t, prompt, "Utilisez le contexte pour répondre précisément.")
	assert.Contains(t, prompt, "Document 1 (Source: notes):\nPremière note.")
	assert.Contains(t, prompt, "Document 2 (Source: Inconnu):\nSeconde note.")
	assert.Contains(t, prompt, "QUESTION: quoi de neuf ?")
}
