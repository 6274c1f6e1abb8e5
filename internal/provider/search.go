// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Search backends selectable through configuration.
const (
	SearchTavily  = "tavily"
	SearchBrave   = "brave"
	SearchSearxng = "searxng"
)

// DefaultSearchResults is used when a caller asks for zero results.
const DefaultSearchResults = 5

// SearchResult is one hit returned by a web-search backend.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
	Score   float64
}

// SearchResponse is a backend's reply: the ranked hits plus an optional
// synthesized answer (only Tavily provides one).
type SearchResponse struct {
	Results []SearchResult
	Answer  string
}

// Searcher performs a single search request. Implementations do not retry.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, k int) (SearchResponse, error)
}

// WebSearch is the web-search adapter: a Searcher plus its retry policy.
type WebSearch struct {
	searcher Searcher
	policy   Policy
	log      *logrus.Logger
}

// NewWebSearch wraps s. A nil searcher yields an unavailable adapter.
func NewWebSearch(s Searcher, p Policy, log *logrus.Logger) *WebSearch {
	p.MinLength = 0
	return &WebSearch{searcher: s, policy: p.normalize(), log: logging.OrDiscard(log)}
}

// Name returns the backend name, or "search" when unavailable.
func (w *WebSearch) Name() string {
	if w == nil || w.searcher == nil {
		return "search"
	}
	return w.searcher.Name()
}

// Available reports whether a backend is configured.
func (w *WebSearch) Available() bool {
	return w != nil && w.searcher != nil
}

// Search queries the backend for up to k results. A response with zero
// results is a success and is not retried. Text on the call result is left
// empty; callers format the response themselves.
func (w *WebSearch) Search(ctx context.Context, query string, k int) (SearchResponse, types.ProviderCallResult) {
	if !w.Available() {
		return SearchResponse{}, types.ProviderCallResult{ErrorKind: types.ErrCredentialMissing}
	}
	if k <= 0 {
		k = DefaultSearchResults
	}

	resp, res, m := runCall(ctx, w.policy, w.Name(),
		func(ctx context.Context) (SearchResponse, error) {
			return w.searcher.Search(ctx, query, k)
		}, nil)

	entry := w.log.WithFields(logging.Fields{
		"adapter":    w.Name(),
		"attempts":   res.Attempts,
		"latency_ms": res.LatencyMS,
	})
	if res.Success {
		if len(resp.Results) > k {
			resp.Results = resp.Results[:k]
		}
		entry.WithField("results", len(resp.Results)).Debug("search succeeded")
	} else {
		entry.WithField("error_kind", res.ErrorKind).WithError(m.err).Warn("search failed")
	}
	return resp, res
}

// NewSearcher builds the backend named by cfg.Provider. It returns nil when
// the backend lacks what it needs (key or endpoint), which makes the
// adapter unavailable rather than failing startup.
func NewSearcher(cfg types.SearchConfig, client *http.Client) (Searcher, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = SearchTavily
	}
	switch provider {
	case SearchTavily:
		if cfg.APIKey == "" {
			return nil, nil
		}
		return &Tavily{APIKey: cfg.APIKey, URL: cfg.APIURL, Depth: cfg.Depth, Client: client}, nil
	case SearchBrave:
		if cfg.APIKey == "" {
			return nil, nil
		}
		return &Brave{APIKey: cfg.APIKey, URL: cfg.APIURL, Client: client}, nil
	case SearchSearxng:
		if cfg.APIURL == "" {
			return nil, nil
		}
		return &Searxng{URL: cfg.APIURL, Client: client}, nil
	}
	return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
}

// NewCompleter builds the completer named by cfg.Provider, or nil when cfg
// is not configured.
func NewCompleter(cfg types.LLMConfig, client *http.Client) (Completer, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "anthropic":
		return &Anthropic{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			URL:       cfg.APIURL,
			Client:    client,
		}, nil
	case "openai", "ollama", "compatible":
		return NewOpenAI(cfg, client), nil
	}
	return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
}
