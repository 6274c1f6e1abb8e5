// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package script drafts long-form narrated scripts from a topic, research
// text and an optional creator profile. When the primary model is down or
// every adapter fails, a deterministic scaffold is returned instead.
package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/dispatch"
	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/internal/provider"
	"github.com/pdiddy/script-engine/internal/readtime"
	"github.com/pdiddy/script-engine/internal/research"
	"github.com/pdiddy/script-engine/internal/sources"
	"github.com/pdiddy/script-engine/pkg/types"
)

// MinLength is the shortest script accepted from an adapter.
const MinLength = 200

// ScaffoldProvider is reported as the provider of a scaffolded draft.
const ScaffoldProvider = "scaffold"

// Health check defaults.
const (
	defaultHealthTimeout  = 2 * time.Second
	defaultHealthAttempts = 2
	healthDelay           = 100 * time.Millisecond
	healthPrompt          = "Réponds simplement : OK"
)

const enrichPromptFmt = `Donne des statistiques et des faits récents, précis et vérifiables, sur le sujet suivant : "%s". Réponds par une liste à puces, sans introduction.`

// Generator drafts scripts through the dispatcher's script chain.
type Generator struct {
	d        *dispatch.Dispatcher
	primary  *provider.LLM
	research *research.Aggregator
	health   provider.Policy
	budget   time.Duration
	extract  func(string) []types.Source
	log      *logrus.Logger
}

// New returns a generator. primary is health-checked before each draft and
// used to enrich thin research; agg fetches research when the caller has
// none. Either may be nil.
func New(d *dispatch.Dispatcher, primary *provider.LLM, agg *research.Aggregator, health types.HealthConfig, log *logrus.Logger) *Generator {
	return &Generator{
		d:        d,
		primary:  primary,
		research: agg,
		health:   HealthPolicy(health),
		budget:   healthBudget(health),
		extract:  sources.Extract,
		log:      logging.OrDiscard(log),
	}
}

// WithExtractor returns a copy of g that extracts draft sources with ex.
func (g *Generator) WithExtractor(ex *sources.Extractor) *Generator {
	cp := *g
	cp.extract = ex.Extract
	return &cp
}

// HealthPolicy bounds the primary health check. The configured timeout is
// the budget for the whole check, split evenly across attempts.
func HealthPolicy(cfg types.HealthConfig) provider.Policy {
	p := provider.Policy{
		MaxAttempts: cfg.Attempts,
		BaseDelay:   healthDelay,
		Backoff:     types.BackoffLinear,
		MinLength:   1,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultHealthAttempts
	}
	p.Timeout = healthBudget(cfg) / time.Duration(p.MaxAttempts)
	return p
}

func healthBudget(cfg types.HealthConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return defaultHealthTimeout
	}
	return cfg.Timeout
}

// Chain builds the script chain: each LLM in order, validated on length,
// terminated by the scaffold.
func Chain(llms ...*provider.LLM) dispatch.Chain {
	return dispatch.Chain{
		Steps:    dispatch.LLMSteps(llms...),
		Validate: dispatch.MinLength(MinLength),
		Static: func(req dispatch.Request) string {
			return Scaffold(Brief{Topic: req.Subject, Profile: req.Profile})
		},
		StaticTag: ScaffoldProvider,
	}
}

// Generate drafts a script about topic. It never fails and the text always
// carries [HOOK], [INTRODUCTION] and [CONCLUSION] markers.
func (g *Generator) Generate(ctx context.Context, topic, researchText string, profile *types.CreatorProfile) types.ScriptDraft {
	return g.GenerateBrief(ctx, Brief{Topic: strings.TrimSpace(topic), Profile: profile}, researchText)
}

// GenerateFromTopic drafts a script from a generated topic, carrying its
// angle and key points into the prompt.
func (g *Generator) GenerateFromTopic(ctx context.Context, t types.Topic, researchText string, profile *types.CreatorProfile) types.ScriptDraft {
	return g.GenerateBrief(ctx, BriefFromTopic(t, profile), researchText)
}

// GenerateBrief drafts a script for b. The draft carries the research it
// was written from and the sources extracted from that research.
func (g *Generator) GenerateBrief(ctx context.Context, b Brief, researchText string) types.ScriptDraft {
	entry := g.log.WithField("topic", b.topic())

	if !g.healthy(ctx) {
		entry.Warn("primary health check failed, using scaffold")
		return g.withSources(NewDraft(Scaffold(b), ScaffoldProvider, true), researchText)
	}

	researchText = g.ensureResearch(ctx, b, researchText)

	prompt, err := BuildPrompt(b, researchText)
	if err != nil {
		entry.WithError(err).Error("building script prompt")
		return g.withSources(NewDraft(Scaffold(b), ScaffoldProvider, true), researchText)
	}

	out := g.d.Run(ctx, dispatch.KindScript, dispatch.Request{
		Prompt:  prompt,
		Subject: b.Topic,
		Profile: b.Profile,
	})
	if !out.OK() || out.Static {
		// The chain's own scaffold only knows the subject; rebuild with the full brief.
		return g.withSources(NewDraft(Scaffold(b), ScaffoldProvider, true), researchText)
	}

	text := EnsureMarkers(out.Text, b)
	draft := g.withSources(NewDraft(text, out.Adapter, false), researchText)
	entry.WithFields(logging.Fields{
		"adapter":  out.Adapter,
		"words":    draft.WordCount,
		"sections": len(draft.Sections),
		"sources":  len(draft.Sources),
	}).Info("script generated")
	return draft
}

// withSources attaches researchText and its sources to d. Empty research
// yields no sources.
func (g *Generator) withSources(d types.ScriptDraft, researchText string) types.ScriptDraft {
	d.Research = strings.TrimSpace(researchText)
	d.Sources = []types.Source{}
	if d.Research != "" {
		d.Sources = g.extract(d.Research)
	}
	return d
}

// healthy issues a trivial prompt to the primary adapter under the health
// policy, retries and backoff included within the budget. A missing primary
// is unhealthy.
func (g *Generator) healthy(ctx context.Context) bool {
	if !g.primary.Available() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, g.budget)
	defer cancel()
	res := g.primary.WithPolicy(g.health).Generate(ctx, healthPrompt)
	return res.Success
}

// ensureResearch returns researchText unchanged when it is long enough.
// Otherwise it fetches fresh research and appends recent facts from the
// primary adapter when it answers.
func (g *Generator) ensureResearch(ctx context.Context, b Brief, researchText string) string {
	if len([]rune(strings.TrimSpace(researchText))) >= research.MinLength {
		return researchText
	}
	if g.research != nil {
		bundle := g.research.Fetch(ctx, b.topic(), research.DefaultMaxResults)
		if !bundle.IsEmpty() {
			researchText = bundle.RawText
		}
	}
	if g.primary.Available() {
		res := g.primary.Generate(ctx, fmt.Sprintf(enrichPromptFmt, b.topic()))
		if res.Success {
			researchText = strings.TrimSpace(researchText + "\n\nStatistiques et faits récents :\n" + res.Text)
		}
	}
	return researchText
}

// NewDraft derives sections, word count and reading time from text.
func NewDraft(text, adapter string, fallback bool) types.ScriptDraft {
	sections := ParseSections(text)
	if len(sections) == 0 {
		sections = []types.Section{{Heading: HeadingHook, Body: ""}}
	}
	rt := readtime.Estimate(text)
	return types.ScriptDraft{
		Text:        text,
		Sections:    sections,
		WordCount:   rt.WordCount,
		ReadingTime: rt,
		Provider:    adapter,
		Fallback:    fallback,
	}
}
