package actions

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/orbia-ai/orbia/internal/domain"
)

const defaultSearchResults = 8

// queryStopwords are filler words stripped from search queries.
var queryStopwords = map[string]struct{}{
	"rechercher": {}, "chercher": {}, "trouver": {}, "donner": {}, "montrer": {},
	"sur": {}, "des": {}, "du": {}, "de": {}, "la": {}, "le": {}, "les": {},
	"un": {}, "une": {}, "pour": {}, "afin": {}, "dans": {}, "avec": {}, "sans": {},
}

var yearToken = regexp.MustCompile(`^(19|20)\d{2}$`)

// OptimizeQuery strips filler words and short tokens from a search query.
// Year tokens survive the filter and move to the tail so temporal searches
// keep their anchor.
func OptimizeQuery(query string) string {
	var kept, years []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if yearToken.MatchString(word) {
			years = append(years, word)
			continue
		}
		if _, stop := queryStopwords[word]; stop {
			continue
		}
		if len([]rune(word)) <= 2 {
			continue
		}
		kept = append(kept, word)
	}
	return strings.TrimSpace(strings.Join(append(kept, years...), " "))
}

func (r *Registry) webSearch(ctx context.Context, params map[string]any, ownerID string) (map[string]any, error) {
	query := OptimizeQuery(stringParam(params, "query", ""))
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "requête de recherche vide")
	}
	maxResults := intParam(params, "max_results", defaultSearchResults)

	outcome := r.search.Search(ctx, query, maxResults)
	if !outcome.HasWebResults {
		return r.searchFallback(ctx, query)
	}

	sources := make([]string, 0, len(outcome.Results))
	seen := make(map[string]struct{})
	for _, res := range outcome.Results {
		if _, ok := seen[res.Source]; ok {
			continue
		}
		seen[res.Source] = struct{}{}
		sources = append(sources, res.Source)
	}

	return map[string]any{
		"query":        query,
		"results":      outcome.Results,
		"result_count": outcome.ResultCount,
		"sources_used": sources,
		"source":       "web_search_success",
		"status":       "success",
	}, nil
}

// searchFallback answers from the language model when no provider returned
// results. The payload is shaped like a single search hit so downstream
// formatting stays uniform.
func (r *Registry) searchFallback(ctx context.Context, query string) (map[string]any, error) {
	prompt := fallbackPrompt(query)

	answer, err := r.llm.Generate(ctx, []domain.Message{
		{Role: domain.RoleUser, Content: prompt},
	})
	if err != nil {
		return map[string]any{
			"query": query,
			"results": []map[string]any{{
				"title":   "Service temporairement indisponible",
				"content": "Les services de recherche et l'assistant IA rencontrent des difficultés techniques. Veuillez réessayer dans quelques instants.",
				"source":  "error_fallback",
			}},
			"result_count": 1,
			"source":       "error_fallback",
			"status":       "error",
		}, nil
	}

	return map[string]any{
		"query": query,
		"results": []map[string]any{{
			"title":   fmt.Sprintf("Réponse experte sur : %s", query),
			"content": answer,
			"source":  "llm_fallback",
			"type":    "enhanced_response",
		}},
		"result_count": 1,
		"source":       "llm_fallback",
		"status":       "fallback",
	}, nil
}

// fallbackPrompt adapts the fallback prompt to the query: recent technology
// questions get an explicit knowledge-cutoff framing.
func fallbackPrompt(query string) string {
	lower := strings.ToLower(query)
	recent := false
	for _, year := range []string{"2024", "2025", "2026"} {
		if strings.Contains(query, year) {
			recent = true
			break
		}
	}
	technical := false
	for _, word := range []string{"llm", "ai", "ia", "intelligence artificielle", "modèle", "algorithme"} {
		if strings.Contains(lower, word) {
			technical = true
			break
		}
	}

	if recent && technical {
		return fmt.Sprintf(`Vous êtes un expert en IA et technologies récentes. L'utilisateur demande : "%s"

Cette question concerne des informations potentiellement très récentes. Présentez les tendances observées jusqu'à votre date de coupure, les projections fondées sur les développements connus, et recommandez des sources spécialisées pour les informations les plus fraîches.`, query)
	}

	return fmt.Sprintf(`Vous êtes un assistant IA spécialisé. L'utilisateur pose cette question : "%s"

Fournissez les informations factuelles disponibles jusqu'à votre date de coupure, une analyse des tendances observées, et des recommandations pour obtenir les informations les plus récentes.`, query)
}
