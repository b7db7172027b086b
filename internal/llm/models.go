package llm

import "strings"

// ModelProfile describes one chat model available on the Groq-compatible
// endpoint.
type ModelProfile struct {
	Name      string
	Category  string
	MaxTokens int
	UseCase   string
}

// DefaultModel answers everyday conversation turns.
const DefaultModel = "llama-3.1-8b-instant"

// Catalog lists the models the service is allowed to route to.
func Catalog() []ModelProfile {
	return []ModelProfile{
		{Name: "llama-3.1-8b-instant", Category: "fast", MaxTokens: 8192, UseCase: "everyday conversation, short answers"},
		{Name: "meta-llama/llama-4-maverick-17b-128e-instruct", Category: "balanced", MaxTokens: 128000, UseCase: "general tasks, long prompts"},
		{Name: "qwen/qwen3-32b", Category: "technical", MaxTokens: 32768, UseCase: "code and technical documentation"},
		{Name: "llama-3.3-70b-versatile", Category: "powerful", MaxTokens: 8192, UseCase: "research and detailed analysis"},
		{Name: "deepseek-r1-distill-llama-70b", Category: "specialized", MaxTokens: 32768, UseCase: "multi-step reasoning"},
		{Name: "openai/gpt-oss-20b", Category: "multilingual", MaxTokens: 8192, UseCase: "translation, mixed-language input"},
		{Name: "gemma2-9b-it", Category: "efficient", MaxTokens: 8192, UseCase: "concise low-latency replies"},
	}
}

var (
	technicalKeywords = []string{
		"code", "program", "script", "python", "javascript", "java", "c++",
		"html", "css", "algorithm", "algorithme", "fonction",
	}
	analysisKeywords = []string{
		"recherche", "analyse", "détaillé", "complet", "complexe", "étude", "rapport",
	}
	reasoningKeywords = []string{
		"raisonnement", "logique", "problème", "solution", "stratégie",
	}
	multilingualKeywords = []string{
		"anglais", "english", "español", "français", "deutsch", "multilingue", "traduction",
	}
)

// SelectModel picks a model for the latest user message. Routing is
// keyword-driven with length tiers; unmatched messages go to the fast model.
func SelectModel(message string) string {
	lower := strings.ToLower(message)

	if containsAny(lower, technicalKeywords) {
		return "qwen/qwen3-32b"
	}
	if containsAny(lower, analysisKeywords) {
		return "llama-3.3-70b-versatile"
	}
	if containsAny(lower, reasoningKeywords) {
		return "deepseek-r1-distill-llama-70b"
	}
	if containsAny(lower, multilingualKeywords) {
		return "openai/gpt-oss-20b"
	}
	if len([]rune(message)) > 300 {
		return "meta-llama/llama-4-maverick-17b-128e-instruct"
	}

	return DefaultModel
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
