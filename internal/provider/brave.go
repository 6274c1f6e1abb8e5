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

const defaultBraveURL = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave Search API.
type Brave struct {
	APIKey string
	URL    string
	Client *http.Client
}

type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

func (b *Brave) Name() string { return SearchBrave }

// Search executes a query against the Brave Search API.
func (b *Brave) Search(ctx context.Context, query string, k int) (SearchResponse, error) {
	raw := b.URL
	if strings.TrimSpace(raw) == "" {
		raw = defaultBraveURL
	}
	endpoint, err := url.Parse(raw)
	if err != nil {
		return SearchResponse{}, &Error{Provider: b.Name(), Kind: types.ErrBadRequest, Err: fmt.Errorf("parse brave url: %w", err)}
	}
	q := endpoint.Query()
	q.Set("q", query)
	if k > 0 {
		q.Set("count", strconv.Itoa(k))
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("create brave request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	body, err := httputil.Do(b.Client, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("brave request failed: %w", err)
	}

	var decoded braveResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return SearchResponse{}, &Error{Provider: b.Name(), Kind: types.ErrUpstream, Err: fmt.Errorf("decode brave response: %w", err)}
	}

	out := SearchResponse{Results: make([]SearchResult, 0, len(decoded.Web.Results))}
	for _, item := range decoded.Web.Results {
		out.Results = append(out.Results, SearchResult{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.URL,
			Snippet: strings.TrimSpace(item.Description),
			Score:   item.Score,
		})
	}
	return out, nil
}
