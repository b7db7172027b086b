package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// DuckDuckGo queries the instant-answer API. The API answers 202 while it
// warms a query, so those responses are retried with backoff.
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
	// newBackOff builds the retry policy per request.
	newBackOff func() backoff.BackOff
}

func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		client:  defaultHTTPClient(),
		baseURL: duckDuckGoEndpoint,
		newBackOff: func() backoff.BackOff {
			policy := backoff.NewExponentialBackOff()
			policy.InitialInterval = time.Second
			policy.Multiplier = 3
			policy.RandomizationFactor = 0
			return backoff.WithMaxRetries(policy, 3)
		},
	}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

type duckDuckGoTopic struct {
	Text     string            `json:"Text"`
	FirstURL string            `json:"FirstURL"`
	Topics   []duckDuckGoTopic `json:"Topics"`
}

type duckDuckGoResponse struct {
	Heading       string            `json:"Heading"`
	AbstractText  string            `json:"AbstractText"`
	AbstractURL   string            `json:"AbstractURL"`
	RelatedTopics []duckDuckGoTopic `json:"RelatedTopics"`
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{
		"q":           {query},
		"format":      {"json"},
		"no_html":     {"1"},
		"no_redirect": {"1"},
	}
	reqURL := d.baseURL + "?" + params.Encode()

	var payload duckDuckGoResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusAccepted:
			// Query still warming, retry.
			return fmt.Errorf("duckduckgo not ready: status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("duckduckgo status %d", resp.StatusCode))
		}
	}

	if err := backoff.Retry(operation, backoff.WithContext(d.newBackOff(), ctx)); err != nil {
		return nil, err
	}

	return parseDuckDuckGo(&payload, maxResults), nil
}

func parseDuckDuckGo(data *duckDuckGoResponse, maxResults int) []Result {
	var results []Result

	if data.AbstractText != "" {
		title := data.Heading
		if title == "" {
			title = "Résumé"
		}
		results = append(results, Result{
			Title:      title,
			Content:    cleanText(data.AbstractText),
			URL:        data.AbstractURL,
			Source:     "duckduckgo",
			Domain:     extractDomain(data.AbstractURL),
			Confidence: 0.9,
		})
	}

	for _, topic := range data.RelatedTopics {
		if topic.Text != "" {
			results = append(results, topicResult(topic, 0.7))
			continue
		}
		for _, sub := range topic.Topics {
			if sub.Text != "" {
				results = append(results, topicResult(sub, 0.65))
			}
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func topicResult(topic duckDuckGoTopic, confidence float64) Result {
	title := topic.Text
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	return Result{
		Title:      title,
		Content:    cleanText(topic.Text),
		URL:        topic.FirstURL,
		Source:     "duckduckgo",
		Domain:     extractDomain(topic.FirstURL),
		Confidence: confidence,
	}
}
