package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// wikipediaEndpoint holds one language edition's search API.
type wikipediaEndpoint struct {
	Lang string
	URL  string
}

// Wikipedia queries the MediaWiki search API, preferring the French edition
// and falling back to English when it has nothing.
type Wikipedia struct {
	client    *http.Client
	endpoints []wikipediaEndpoint
}

func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		client: defaultHTTPClient(),
		endpoints: []wikipediaEndpoint{
			{Lang: "fr", URL: "https://fr.wikipedia.org/w/api.php"},
			{Lang: "en", URL: "https://en.wikipedia.org/w/api.php"},
		},
	}
}

func (w *Wikipedia) Name() string { return "wikipedia" }

type wikipediaSearchItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type wikipediaResponse struct {
	Query struct {
		Search []wikipediaSearchItem `json:"search"`
	} `json:"query"`
}

func (w *Wikipedia) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	var lastErr error

	for _, endpoint := range w.endpoints {
		results, err := w.searchEdition(ctx, endpoint, query, maxResults)
		if err != nil {
			lastErr = err
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func (w *Wikipedia) searchEdition(ctx context.Context, endpoint wikipediaEndpoint, query string, maxResults int) ([]Result, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"format":   {"json"},
		"utf8":     {"1"},
		"srlimit":  {fmt.Sprintf("%d", maxResults)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia %s status %d", endpoint.Lang, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return nil, fmt.Errorf("wikipedia %s returned %s, not JSON", endpoint.Lang, ct)
	}

	var payload wikipediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var results []Result
	for _, item := range payload.Query.Search {
		results = append(results, Result{
			Title:      item.Title,
			Content:    cleanText(item.Snippet),
			URL:        articleURL(endpoint.Lang, item.Title),
			Source:     "wikipedia_" + endpoint.Lang,
			Domain:     "wikipedia.org",
			Confidence: 0.8,
		})
		if len(results) == maxResults {
			break
		}
	}
	return results, nil
}

func articleURL(lang, title string) string {
	slug := url.QueryEscape(strings.ReplaceAll(title, " ", "_"))
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", lang, slug)
}
