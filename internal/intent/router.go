// Package intent classifies user messages into agentic actions with a
// keyword-and-regex scorer. Classification is deterministic: rules are
// evaluated in a fixed order and ties keep the earlier rule.
package intent

import (
	"regexp"
	"strings"

	"github.com/orbia-ai/orbia/internal/domain"
)

const (
	keywordWeight = 0.2
	patternWeight = 0.5

	// DefaultThreshold is the confidence a classification must exceed to
	// dispatch an action.
	DefaultThreshold = 0.6
)

type rule struct {
	action   string
	keywords []string
	patterns []*regexp.Regexp
}

var rules = []rule{
	{
		action: domain.ActionWebSearch,
		keywords: []string{
			"recherche", "cherche", "trouve", "informations", "actualités",
			"nouvelles", "avancées", "tendances", "derniers", "mise à jour",
			"quelle est la", "qu'est-ce que", "définition de",
		},
		patterns: compile(
			`recherche.*sur`, `cherche.*info`, `trouve.*sur`,
			`actualités.*ia`, `mise à jour.*2025`, `mise à jour.*2026`,
		),
	},
	{
		action: domain.ActionCodeGen,
		keywords: []string{
			"code", "programme", "python", "javascript", "html", "génère",
			"écris", "script", "fonction", "algorithme", "boucle", "variable",
		},
		patterns: compile(
			`génère.*code`, `écris.*programme`, `code.*pour`,
			`python.*pour`, `fonction.*python`,
		),
	},
	{
		action: domain.ActionDocProcessing,
		keywords: []string{
			"résume", "synthèse", "synthétise", "extrait", "points clés",
			"récapitule", "résumé", "synopsis", "abstract",
		},
		patterns: compile(
			`résume.*document`, `synthèse.*pour`, `points clés.*pour`,
		),
	},
	{
		action: domain.ActionDataAnalysis,
		keywords: []string{
			"analyse", "data", "données", "statistiques", "graphique",
			"tableau", "comparaison", "chiffres", "pourcentage", "statistique",
		},
		patterns: compile(
			`analyse.*données`, `stats.*sur`, `graphique.*pour`,
		),
	},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Router scores messages against the rule table.
type Router struct {
	threshold float64
}

func NewRouter(threshold float64) *Router {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Router{threshold: threshold}
}

// Threshold returns the dispatch threshold.
func (r *Router) Threshold() float64 {
	return r.threshold
}

// Classify scores the message against every rule and returns the best
// match. The Action is empty when no rule scores above zero; the caller
// checks IsActionable against the threshold for dispatch.
func (r *Router) Classify(message string) domain.Classification {
	lower := strings.ToLower(message)

	best := domain.Classification{}
	for _, rl := range rules {
		score := scoreRule(rl, lower)
		if score > best.Confidence {
			best = domain.Classification{
				Action:     rl.action,
				Confidence: score,
				Parameters: extractParameters(rl.action, message),
			}
		}
	}
	return best
}

func scoreRule(rl rule, lower string) float64 {
	var score float64
	for _, kw := range rl.keywords {
		if strings.Contains(lower, kw) {
			score += keywordWeight
		}
	}
	for _, p := range rl.patterns {
		if p.MatchString(lower) {
			score += patternWeight
			break
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
