package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// SearxNG queries a self-hosted SearxNG instance with JSON output enabled.
type SearxNG struct {
	client  *http.Client
	baseURL string
}

func NewSearxNG(baseURL string) *SearxNG {
	return &SearxNG{
		client:  defaultHTTPClient(),
		baseURL: baseURL,
	}
}

func (s *SearxNG) Name() string { return "searxng" }

type searxngItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

type searxngResponse struct {
	Results []searxngItem `json:"results"`
}

func (s *SearxNG) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{
		"q":          {query},
		"format":     {"json"},
		"language":   {"fr"},
		"safesearch": {"0"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng status %d", resp.StatusCode)
	}

	var payload searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var results []Result
	for _, item := range payload.Results {
		if item.Title == "" || item.Content == "" {
			continue
		}
		results = append(results, Result{
			Title:      cleanText(item.Title),
			Content:    cleanText(item.Content),
			URL:        item.URL,
			Source:     "searxng",
			Domain:     extractDomain(item.URL),
			Confidence: 0.75,
		})
		if len(results) == maxResults {
			break
		}
	}
	return results, nil
}
