package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/script-engine/internal/httputil"
	"github.com/pdiddy/script-engine/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Package-level var for test substitution.
var tavilyAPIURL = "https://api.tavily.com/search"

// Tavily queries the Tavily Search API. The key travels in the JSON body.
type Tavily struct {
	APIKey string
	// URL overrides tavilyAPIURL when set.
	URL string
	// Depth is "basic" or "advanced"; empty uses "advanced".
	Depth  string
	Client *http.Client
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (t *Tavily) Name() string { return SearchTavily }

// Search posts one query and maps the hits and synthesized answer.
func (t *Tavily) Search(ctx context.Context, query string, k int) (SearchResponse, error) {
	depth := t.Depth
	if depth == "" {
		depth = "advanced"
	}
	payload, err := json.Marshal(tavilyRequest{
		APIKey:        t.APIKey,
		Query:         query,
		SearchDepth:   depth,
		MaxResults:    k,
		IncludeAnswer: true,
	})
	if err != nil {
		return SearchResponse{}, fmt.Errorf("marshal tavily request: %w", err)
	}

	url := t.URL
	if url == "" {
		url = tavilyAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return SearchResponse{}, fmt.Errorf("create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := httputil.Do(t.Client, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("tavily request failed: %w", err)
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return SearchResponse{}, &Error{Provider: t.Name(), Kind: types.ErrUpstream, Err: fmt.Errorf("decode tavily response: %w", err)}
	}

	out := SearchResponse{
		Answer:  strings.TrimSpace(decoded.Answer),
		Results: make([]SearchResult, 0, len(decoded.Results)),
	}
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
