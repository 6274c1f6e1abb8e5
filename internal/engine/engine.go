// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine is the functional surface of the generation pipeline. It
// builds adapters from a resolved configuration, assembles the dispatcher's
// fallback chains, and exposes topic, research, script, source and
// reading-time operations that always return a usable result.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/dispatch"
	"github.com/pdiddy/script-engine/internal/httputil"
	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/internal/provider"
	"github.com/pdiddy/script-engine/internal/readtime"
	"github.com/pdiddy/script-engine/internal/research"
	"github.com/pdiddy/script-engine/internal/script"
	"github.com/pdiddy/script-engine/internal/sources"
	"github.com/pdiddy/script-engine/internal/topic"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Adapter roles.
const (
	RolePrimary   = "primary"
	RoleSecondary = "secondary"
	RoleTertiary  = "tertiary"
	RoleSearch    = "search"
)

// Adapters is the set of upstream adapters a pipeline runs on. Any of them
// may be nil.
type Adapters struct {
	Primary   *provider.LLM
	Secondary *provider.LLM
	Tertiary  *provider.LLM
	Search    *provider.WebSearch
}

// AdapterStatus describes one configured role.
type AdapterStatus struct {
	Role      string `json:"role" yaml:"role"`
	Name      string `json:"name" yaml:"name"`
	Available bool   `json:"available" yaml:"available"`
}

// Engine runs the pipeline. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	adapters  Adapters
	dispatch  *dispatch.Dispatcher
	topics    *topic.Generator
	research  *research.Aggregator
	scripts   *script.Generator
	extractor *sources.Extractor
	log       *logrus.Logger
}

type options struct {
	client *http.Client
	trace  dispatch.TraceSink
	now    func() time.Time
}

// Option customizes engine construction.
type Option func(*options)

// WithHTTPClient sets the client shared by every network adapter.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithTrace delivers dispatcher trace events to sink.
func WithTrace(sink dispatch.TraceSink) Option {
	return func(o *options) { o.trace = sink }
}

// WithClock sets the clock used for year clamping and synthesized
// references.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds adapters from cfg and returns an engine over them. Adapters
// without credentials are left out; an unknown provider name is an error.
func New(cfg types.Config, log *logrus.Logger, opts ...Option) (*Engine, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = httputil.NewClient(cfg.Adapter.Timeout)
	}

	a, err := BuildAdapters(cfg, o.client, log)
	if err != nil {
		return nil, err
	}
	return NewWithAdapters(a, cfg.Health, log, opts...), nil
}

// BuildAdapters constructs every adapter cfg has credentials for.
func BuildAdapters(cfg types.Config, client *http.Client, log *logrus.Logger) (Adapters, error) {
	policy := provider.PolicyFromConfig(cfg.Adapter)
	used := map[string]bool{}

	llm := func(role string, c types.LLMConfig) (*provider.LLM, error) {
		comp, err := provider.NewCompleter(c, client)
		if err != nil {
			return nil, fmt.Errorf("%s adapter: %w", role, err)
		}
		if comp == nil {
			return nil, nil
		}
		name := comp.Name()
		if used[name] {
			name += "-" + role
		}
		used[name] = true
		return provider.NewLLM(name, comp, policy, log), nil
	}

	var (
		a   Adapters
		err error
	)
	if a.Primary, err = llm(RolePrimary, cfg.Primary); err != nil {
		return Adapters{}, err
	}
	if a.Secondary, err = llm(RoleSecondary, cfg.Secondary); err != nil {
		return Adapters{}, err
	}
	if a.Tertiary, err = llm(RoleTertiary, cfg.Tertiary); err != nil {
		return Adapters{}, err
	}

	searcher, err := provider.NewSearcher(cfg.Search, client)
	if err != nil {
		return Adapters{}, fmt.Errorf("search adapter: %w", err)
	}
	if searcher != nil {
		a.Search = provider.NewWebSearch(searcher, policy, log)
	}
	return a, nil
}

// NewWithAdapters returns an engine over prebuilt adapters. The chains are:
//
//	topics:   primary, secondary, tertiary, static framings
//	script:   primary, secondary, tertiary, scaffold
//	research: search, secondary, tertiary, primary, stub
func NewWithAdapters(a Adapters, health types.HealthConfig, log *logrus.Logger, opts ...Option) *Engine {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	log = logging.OrDiscard(log)

	var search *provider.WebSearch
	if a.Search.Available() {
		search = a.Search
	}
	chains := map[dispatch.TaskKind]dispatch.Chain{
		dispatch.KindTopics:   topic.Chain(a.Primary, a.Secondary, a.Tertiary),
		dispatch.KindScript:   script.Chain(a.Primary, a.Secondary, a.Tertiary),
		dispatch.KindResearch: research.Chain(search, []*provider.LLM{a.Secondary, a.Tertiary, a.Primary}, o.now),
	}
	d := dispatch.New(chains, log)
	if o.trace != nil {
		d = d.WithTrace(o.trace)
	}

	agg := research.New(d, log)
	extractor := &sources.Extractor{Now: o.now}
	e := &Engine{
		adapters:  a,
		dispatch:  d,
		topics:    topic.New(d, log),
		research:  agg,
		scripts:   script.New(d, a.Primary, agg, health, log).WithExtractor(extractor),
		extractor: extractor,
		log:       log,
	}
	e.log.WithField("adapters", e.Adapters()).Debug("engine ready")
	return e
}

// Adapters reports every role and whether it is usable.
func (e *Engine) Adapters() []AdapterStatus {
	llm := func(role string, l *provider.LLM) AdapterStatus {
		s := AdapterStatus{Role: role, Available: l.Available()}
		if s.Available {
			s.Name = l.Name()
		}
		return s
	}
	search := AdapterStatus{Role: RoleSearch, Available: e.adapters.Search.Available()}
	if search.Available {
		search.Name = e.adapters.Search.Name()
	}
	return []AdapterStatus{
		llm(RolePrimary, e.adapters.Primary),
		llm(RoleSecondary, e.adapters.Secondary),
		llm(RoleTertiary, e.adapters.Tertiary),
		search,
	}
}

// GenerateTopics returns at most n topics for theme, every field populated.
func (e *Engine) GenerateTopics(ctx context.Context, theme string, n int, profile *types.CreatorProfile) []types.Topic {
	return e.topics.Generate(ctx, theme, n, profile)
}

// FetchResearch returns research text for topic with its origin.
func (e *Engine) FetchResearch(ctx context.Context, topicText string, maxResults int) types.ResearchBundle {
	return e.research.Fetch(ctx, topicText, maxResults)
}

// GenerateScript drafts a script. The text always carries [HOOK],
// [INTRODUCTION] and [CONCLUSION].
func (e *Engine) GenerateScript(ctx context.Context, topicText, researchText string, profile *types.CreatorProfile) types.ScriptDraft {
	return e.scripts.Generate(ctx, topicText, researchText, profile)
}

// GenerateScriptFromTopic drafts a script from a generated topic.
func (e *Engine) GenerateScriptFromTopic(ctx context.Context, t types.Topic, researchText string, profile *types.CreatorProfile) types.ScriptDraft {
	return e.scripts.GenerateFromTopic(ctx, t, researchText, profile)
}

// ExtractSources mines sources from research text.
func (e *Engine) ExtractSources(text string) []types.Source {
	return e.extractor.Extract(text)
}

// EstimateReadingTime returns the narration time of text.
func (e *Engine) EstimateReadingTime(text string) types.ReadingTime {
	return readtime.Estimate(text)
}
