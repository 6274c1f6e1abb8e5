package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/script-engine/internal/httputil"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Searxng queries a self-hosted SearXNG instance. No key is needed.
type Searxng struct {
	URL    string
	Client *http.Client
}

type searxngResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (s *Searxng) Name() string { return SearchSearxng }

// Search executes a query against the instance's JSON API.
func (s *Searxng) Search(ctx context.Context, query string, k int) (SearchResponse, error) {
	endpoint, err := url.Parse(strings.TrimRight(s.URL, "/") + "/search")
	if err != nil {
		return SearchResponse{}, &Error{Provider: s.Name(), Kind: types.ErrBadRequest, Err: fmt.Errorf("parse searxng url: %w", err)}
	}
	q := endpoint.Query()
	q.Set("q", query)
	q.Set("format", "json")
	if k > 0 {
		q.Set("count", strconv.Itoa(k))
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("create searxng request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := httputil.Do(s.Client, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("searxng request failed: %w", err)
	}

	var decoded searxngResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return SearchResponse{}, &Error{Provider: s.Name(), Kind: types.ErrUpstream, Err: fmt.Errorf("decode searxng response: %w", err)}
	}

	out := SearchResponse{Results: make([]SearchResult, 0, len(decoded.Results))}
	for _, item := range decoded.Results {
		out.Results = append(out.Results, SearchResult{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.URL,
			Snippet: strings.TrimSpace(item.Content),
			Score:   item.Score,
		})
	}
	return out, nil
}
