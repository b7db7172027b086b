package orchestrator

import (
	"fmt"
	"strings"

	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/websearch"
)

// BuildActionResponse renders an action result as a user-facing reply.
// Search and code results get dedicated layouts, including their failure
// modes; other failed actions report ok=false so the caller can fall back
// to retrieval.
func BuildActionResponse(result *domain.ActionResult) (string, bool) {
	switch result.Action {
	case domain.ActionWebSearch:
		return formatSearchResponse(result), true
	case domain.ActionCodeGen:
		return formatCodeResponse(result), true
	}

	if !result.Succeeded() {
		return "", false
	}
	summary := truncateRunes(fmt.Sprintf("%v", result.Result), 500)
	return fmt.Sprintf("✅ **Action '%s' exécutée**\n\n%s", result.Action, summary), true
}

func formatSearchResponse(result *domain.ActionResult) string {
	if !result.Succeeded() {
		return "🔍 **Recherche - Service temporairement limité**\n\n" + result.Error
	}

	query, _ := result.Result["query"].(string)
	items := searchItems(result.Result["results"])
	if len(items) == 0 {
		return fmt.Sprintf("🔍 **Recherche**\n\nAucun résultat trouvé pour '%s'", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Recherche Terminée**\n\n%d résultat(s) pour : '%s'\n\n", len(items), query)
	for i, item := range items {
		if i == 3 {
			break
		}
		title := item.title
		if title == "" {
			title = "Sans titre"
		}
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, title)
		fmt.Fprintf(&b, "%s\n", truncateRunes(item.content, 200))
		if item.source != "" {
			fmt.Fprintf(&b, "*Source: %s*\n", item.source)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatCodeResponse(result *domain.ActionResult) string {
	if !result.Succeeded() {
		return "💻 **Génération de Code - Erreur**\n\n" + result.Error
	}

	language, _ := result.Result["language"].(string)
	if language == "" {
		language = "python"
	}
	code, _ := result.Result["code"].(string)
	return fmt.Sprintf("💻 **Code Généré**\n\n```%s\n%s\n```", language, code)
}

type searchItem struct {
	title   string
	content string
	source  string
}

// searchItems normalizes the two payload shapes a search can produce: typed
// provider hits and the untyped fallback answer.
func searchItems(raw any) []searchItem {
	switch results := raw.(type) {
	case []websearch.Result:
		items := make([]searchItem, 0, len(results))
		for _, r := range results {
			items = append(items, searchItem{title: r.Title, content: r.Content, source: r.Source})
		}
		return items
	case []map[string]any:
		items := make([]searchItem, 0, len(results))
		for _, r := range results {
			title, _ := r["title"].(string)
			content, _ := r["content"].(string)
			source, _ := r["source"].(string)
			items = append(items, searchItem{title: title, content: content, source: source})
		}
		return items
	}
	return nil
}

// ContextPrompt grounds the question in retrieved documents. Without
// context the question passes through bare.
func ContextPrompt(query string, chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return fmt.Sprintf("Question: %s\n\nRéponse:", query)
	}

	sections := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		source := chunk.Metadata.Source
		if source == "" {
			source = "Inconnu"
		}
		sections = append(sections, fmt.Sprintf("Document %d (Source: %s):\n%s", i+1, source, chunk.Content))
	}

	return fmt.Sprintf(`Utilisez le contexte pour répondre précisément.

CONTEXTE:
%s

QUESTION: %s

RÉPONSE:`, strings.Join(sections, "\n\n"), query)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
