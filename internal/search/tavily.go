// Package search queries the Tavily web-search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tanmayd/research-hub/internal/models"
)

var (
	// ErrUnavailable covers network failures and timeouts talking to the
	// search provider.
	ErrUnavailable = errors.New("search provider unreachable or timed out")
	// ErrQuota is returned when the provider rate-limits us.
	ErrQuota = errors.New("search provider rate limit exceeded")
)

const defaultEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewTavily constructs a Tavily search provider. A zero timeout falls back
// to 30 seconds.
func NewTavily(apiKey string, timeout time.Duration) *Tavily {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Tavily{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Search posts a query and returns at most maxResults hits, in provider order.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":      t.apiKey,
		"query":        query,
		"search_depth": "advanced",
		"max_results":  maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrQuota
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("tavily: authentication failed (http %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tavily: http %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tavily: decode: %w", err)
	}

	now := time.Now()
	results := make([]models.SearchResult, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, models.SearchResult{
			URL:         r.URL,
			Title:       r.Title,
			Snippet:     r.Content,
			RetrievedAt: now,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
