package intent

import (
	"strings"

	"github.com/orbia-ai/orbia/internal/domain"
)

const defaultMaxResults = 5

// extractParameters builds action parameters from the raw message.
func extractParameters(action, message string) map[string]any {
	switch action {
	case domain.ActionWebSearch:
		return map[string]any{"query": message, "max_results": defaultMaxResults}
	case domain.ActionCodeGen:
		return map[string]any{"task": message, "language": detectLanguage(message)}
	case domain.ActionDocProcessing:
		return map[string]any{"action": "summarize", "content": message}
	default:
		return map[string]any{"input": message}
	}
}

// detectLanguage guesses the programming language a code request targets.
// Python is the default.
func detectLanguage(message string) string {
	lower := strings.ToLower(message)

	checks := []struct {
		language string
		words    []string
	}{
		{"python", []string{"python", " py ", "pandas", "nlp", " ml ", " dl "}},
		{"javascript", []string{"javascript", " js ", "node"}},
		{"html", []string{"html", "css", "web"}},
		{"java", []string{"java", "spring"}},
		{"c++", []string{"c++"}},
		{"c#", []string{"c#"}},
		{"c", []string{" c "}},
	}

	for _, check := range checks {
		for _, w := range check.words {
			if strings.Contains(lower, w) {
				return check.language
			}
		}
	}
	return "python"
}
