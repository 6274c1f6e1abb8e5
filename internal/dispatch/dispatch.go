// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch runs ordered fallback chains over provider adapters.
// Each task kind owns one chain: adapters are tried strictly in order, each
// result is validated, and the first valid text wins. A chain may end in a
// static generator that performs no I/O and always succeeds.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/internal/provider"
	"github.com/pdiddy/script-engine/pkg/types"
)

// TaskKind names a fallback chain.
type TaskKind string

const (
	KindTopics   TaskKind = "topics"
	KindScript   TaskKind = "script"
	KindResearch TaskKind = "research"
)

// Trace event names.
const (
	EventStarted          = "adapter_started"
	EventSucceeded        = "adapter_succeeded"
	EventFailed           = "adapter_failed"
	EventValidationFailed = "validation_failed"
)

// StaticAdapter is the adapter name reported when the static generator wins.
const StaticAdapter = "static"

// Request carries the inputs of one dispatch. Prompt is what LLM steps
// send; Subject and Limit are for steps and static generators that work
// from the raw subject (search queries, stubs, default topics).
type Request struct {
	Prompt  string
	Subject string
	Limit   int
	Profile *types.CreatorProfile
}

// Step is one adapter in a chain.
type Step struct {
	// Name identifies the adapter in traces and outcomes.
	Name string
	// Tag is copied to the outcome when this step wins (e.g. a research origin).
	Tag string
	Run func(ctx context.Context, req Request) types.ProviderCallResult
}

// Validator checks a candidate text. A non-nil error sends the dispatcher
// to the next step.
type Validator func(text string) error

// Chain is the ordered fallback list for one task kind.
type Chain struct {
	Steps    []Step
	Validate Validator

	// Static, when set, terminates the chain. It must not perform I/O and
	// its output is not validated.
	Static    func(req Request) string
	StaticTag string
}

// Outcome is the result of a dispatch.
type Outcome struct {
	Text    string
	Adapter string
	Tag     string
	// Static reports that every adapter failed and the static generator ran.
	Static bool
	// Tried lists the adapters attempted, in order.
	Tried []string
}

// OK reports whether the outcome carries text.
func (o Outcome) OK() bool { return o.Text != "" }

// TraceEvent is emitted around every adapter attempt.
type TraceEvent struct {
	Kind      TaskKind
	Event     string
	Adapter   string
	Attempts  int
	LatencyMS int64
	ErrorKind types.ErrorKind
	Reason    string
}

// TraceSink receives trace events. It is called synchronously.
type TraceSink func(TraceEvent)

// ErrUnknownKind is returned by Chain for kinds with no registered chain.
var ErrUnknownKind = errors.New("no chain registered for task kind")

// Dispatcher holds one immutable chain per task kind. Alternate adapter
// sets are installed by building another Dispatcher.
type Dispatcher struct {
	chains map[TaskKind]Chain
	log    *logrus.Logger
	sink   TraceSink
}

// New builds a dispatcher over chains. The map is copied.
func New(chains map[TaskKind]Chain, log *logrus.Logger) *Dispatcher {
	cp := make(map[TaskKind]Chain, len(chains))
	for k, c := range chains {
		c.Steps = append([]Step(nil), c.Steps...)
		cp[k] = c
	}
	return &Dispatcher{chains: cp, log: logging.OrDiscard(log)}
}

// WithTrace returns a copy of d that also sends trace events to sink.
func (d *Dispatcher) WithTrace(sink TraceSink) *Dispatcher {
	cp := *d
	cp.sink = sink
	return &cp
}

// Chain returns the chain registered for kind.
func (d *Dispatcher) Chain(kind TaskKind) (Chain, error) {
	c, ok := d.chains[kind]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return c, nil
}

// Run tries each step of kind's chain in order and returns the first valid
// text. When every step fails and the chain has a static generator, its
// output is returned. Otherwise the outcome is empty.
func (d *Dispatcher) Run(ctx context.Context, kind TaskKind, req Request) Outcome {
	chain, err := d.Chain(kind)
	if err != nil {
		d.log.WithField("kind", kind).Error(err)
		return Outcome{}
	}

	var out Outcome
	for _, step := range chain.Steps {
		out.Tried = append(out.Tried, step.Name)
		d.emit(TraceEvent{Kind: kind, Event: EventStarted, Adapter: step.Name})

		res := step.Run(ctx, req)
		ev := TraceEvent{
			Kind:      kind,
			Adapter:   step.Name,
			Attempts:  res.Attempts,
			LatencyMS: res.LatencyMS,
			ErrorKind: res.ErrorKind,
		}
		text := strings.TrimSpace(res.Text)
		if !res.Success || text == "" {
			ev.Event = EventFailed
			if ev.ErrorKind == types.ErrNone {
				ev.ErrorKind = types.ErrUpstream
			}
			d.emit(ev)
			continue
		}
		if chain.Validate != nil {
			if verr := chain.Validate(text); verr != nil {
				ev.Event = EventValidationFailed
				ev.ErrorKind = types.ErrValidation
				ev.Reason = verr.Error()
				d.emit(ev)
				continue
			}
		}

		ev.Event = EventSucceeded
		d.emit(ev)
		out.Text = text
		out.Adapter = step.Name
		out.Tag = step.Tag
		return out
	}

	if chain.Static != nil {
		out.Tried = append(out.Tried, StaticAdapter)
		out.Text = chain.Static(req)
		out.Adapter = StaticAdapter
		out.Tag = chain.StaticTag
		out.Static = true
		d.emit(TraceEvent{Kind: kind, Event: EventSucceeded, Adapter: StaticAdapter})
	}
	return out
}

func (d *Dispatcher) emit(ev TraceEvent) {
	fields := logging.Fields{
		"kind":    ev.Kind,
		"event":   ev.Event,
		"adapter": ev.Adapter,
	}
	if ev.Event != EventStarted {
		fields["attempts"] = ev.Attempts
		fields["latency_ms"] = ev.LatencyMS
	}
	if ev.ErrorKind != types.ErrNone {
		fields["error_kind"] = ev.ErrorKind
	}
	if ev.Reason != "" {
		fields["reason"] = ev.Reason
	}
	entry := d.log.WithFields(fields)
	switch ev.Event {
	case EventFailed, EventValidationFailed:
		entry.Warn("dispatch")
	case EventStarted:
		entry.Debug("dispatch")
	default:
		entry.Info("dispatch")
	}
	if d.sink != nil {
		d.sink(ev)
	}
}

// LLMStep adapts an LLM to a chain step that sends req.Prompt.
func LLMStep(llm *provider.LLM) Step {
	return Step{
		Name: llm.Name(),
		Run: func(ctx context.Context, req Request) types.ProviderCallResult {
			return llm.Generate(ctx, req.Prompt)
		},
	}
}

// LLMSteps adapts each non-nil LLM in order.
func LLMSteps(llms ...*provider.LLM) []Step {
	steps := make([]Step, 0, len(llms))
	for _, l := range llms {
		if l != nil {
			steps = append(steps, LLMStep(l))
		}
	}
	return steps
}

// MinLength rejects texts whose trimmed length is below n characters.
func MinLength(n int) Validator {
	return func(text string) error {
		if got := len([]rune(strings.TrimSpace(text))); got < n {
			return fmt.Errorf("text too short: %d < %d characters", got, n)
		}
		return nil
	}
}
