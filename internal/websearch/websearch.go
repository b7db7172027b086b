// Package websearch aggregates public search providers behind a fallback
// chain. Providers are queried in priority order and results accumulate
// until the requested limit is reached.
package websearch

import (
	"context"
	"html"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Result is a normalized search hit from any provider.
type Result struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	Source     string  `json:"source"`
	Domain     string  `json:"domain"`
	Confidence float64 `json:"confidence"`
}

// Outcome is the aggregate of a chained search.
type Outcome struct {
	Query         string   `json:"query"`
	Results       []Result `json:"results"`
	ResultCount   int      `json:"result_count"`
	Status        string   `json:"status"`
	HasWebResults bool     `json:"has_web_results"`
}

// Provider is a single search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Service chains providers with graceful degradation. A provider error is
// logged and the chain moves on.
type Service struct {
	providers []Provider
}

func NewService(providers ...Provider) *Service {
	return &Service{providers: providers}
}

// Search queries providers in order until maxResults hits are accumulated.
// It never returns an error; an empty Outcome with status no_results signals
// total failure so the caller can fall back to the language model.
func (s *Service) Search(ctx context.Context, query string, maxResults int) *Outcome {
	if maxResults <= 0 {
		maxResults = 5
	}

	var results []Result
	for _, p := range s.providers {
		part, err := p.Search(ctx, query, maxResults)
		if err != nil {
			log.Printf("websearch: provider %s failed: %v", p.Name(), err)
			continue
		}
		if len(part) > 0 {
			log.Printf("websearch: provider %s returned %d results", p.Name(), len(part))
			results = append(results, part...)
			if len(results) >= maxResults {
				break
			}
		}
	}

	if len(results) == 0 {
		return &Outcome{
			Query:   query,
			Results: []Result{},
			Status:  "no_results",
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return &Outcome{
		Query:         query,
		Results:       results,
		ResultCount:   len(results),
		Status:        "success",
		HasWebResults: true,
	}
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0"

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// cleanText strips HTML markup and collapses whitespace.
func cleanText(text string) string {
	text = html.UnescapeString(text)
	text = tagPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func extractDomain(rawURL string) string {
	rest := rawURL
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return "inconnu"
	}
	return rest
}
