package knowledge

import (
	"strings"
	"unicode"

	"github.com/orbia-ai/orbia/internal/domain"
)

const maxKeywords = 10

// relevanceThreshold is the minimum keyword-overlap ratio for an entry to
// count as relevant to a query.
const relevanceThreshold = 0.3

var stopwords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {},
	"et": {}, "ou": {}, "mais": {}, "où": {}, "que": {}, "qui": {}, "quoi": {},
}

// ExtractKeywords pulls up to ten unique lowercase keywords from a text,
// dropping punctuation, stopwords and words shorter than three runes.
// First-seen order is preserved so extraction is deterministic.
func ExtractKeywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, text)

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// Relevant reports whether an entry's question shares enough keywords with
// the query to be worth surfacing. Entries below the storage gate never
// qualify.
func Relevant(entry *domain.KnowledgeEntry, queryKeywords []string, minValueScore float64) bool {
	if entry == nil || entry.ValueScore < minValueScore {
		return false
	}
	if len(queryKeywords) == 0 {
		return false
	}

	entryKeywords := ExtractKeywords(entry.Question)
	common := 0
	queryAll := make(map[string]struct{}, len(queryKeywords))
	for _, k := range queryKeywords {
		queryAll[k] = struct{}{}
	}
	for _, k := range entryKeywords {
		if _, ok := queryAll[k]; ok {
			common++
		}
	}

	ratio := float64(common) / float64(len(queryKeywords))
	return ratio > relevanceThreshold
}
