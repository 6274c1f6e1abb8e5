// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"time"

	"github.com/pdiddy/script-engine/pkg/types"
)

// State is a step of the retry state machine:
//
//	idle → trying(attempt) → waiting(delay) → trying(attempt+1) → ...
//	trying → succeeded | exhausted
type State int

const (
	StateIdle State = iota
	StateTrying
	StateWaiting
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTrying:
		return "trying"
	case StateWaiting:
		return "waiting"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 30 * time.Second
	defaultBaseDelay   = time.Second

	// rateLimitFactor stretches the backoff after an HTTP 429.
	rateLimitFactor = 3
)

// Policy bounds a single adapter call: how many attempts, how long each may
// take, and how long to wait in between.
type Policy struct {
	MaxAttempts int
	Timeout     time.Duration
	BaseDelay   time.Duration
	Backoff     types.BackoffKind

	// MinLength is the shortest trimmed text response accepted as a success.
	// Shorter bodies are retried like upstream errors.
	MinLength int
}

// PolicyFromConfig builds the default adapter policy from configuration.
func PolicyFromConfig(cfg types.AdapterConfig) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		Timeout:     cfg.Timeout,
		BaseDelay:   cfg.BaseDelay,
		Backoff:     cfg.Backoff,
		MinLength:   1,
	}.normalize()
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.BaseDelay == 0 && p.Backoff == "" {
		p.BaseDelay = defaultBaseDelay
	}
	if p.Backoff != types.BackoffLinear {
		p.Backoff = types.BackoffExponential
	}
	if p.MinLength < 0 {
		p.MinLength = 0
	}
	return p
}

// delay returns the wait before the attempt that follows attempt n (1-based).
func (p Policy) delay(n int, kind types.ErrorKind) time.Duration {
	var d time.Duration
	switch p.Backoff {
	case types.BackoffLinear:
		d = p.BaseDelay * time.Duration(n)
	default:
		d = p.BaseDelay << (n - 1)
	}
	if kind == types.ErrRateLimited {
		d *= rateLimitFactor
	}
	return d
}

// attemptFunc performs one upstream attempt under its own deadline.
type attemptFunc[T any] func(ctx context.Context) (T, error)

// machine drives one adapter call through the retry states.
type machine[T any] struct {
	policy  Policy
	name    string
	state   State
	attempt int
	value   T
	err     *Error
	history []State
}

func (m *machine[T]) transition(to State) {
	m.state = to
	m.history = append(m.history, to)
}

// run executes the call until it succeeds or the policy is exhausted.
// accept may reject a response that decoded fine (empty or too short); the
// rejection is retried as an upstream error.
func (m *machine[T]) run(ctx context.Context, call attemptFunc[T], accept func(T) error) {
	m.history = []State{StateIdle}
	for {
		switch m.state {
		case StateIdle:
			m.attempt = 1
			m.transition(StateTrying)

		case StateTrying:
			v, err := m.try(ctx, call, accept)
			if err == nil {
				m.value = v
				m.err = nil
				m.transition(StateSucceeded)
				continue
			}
			m.err = classify(m.name, err)
			if !m.err.Kind.Retryable() || m.attempt >= m.policy.MaxAttempts {
				m.transition(StateExhausted)
				continue
			}
			m.transition(StateWaiting)

		case StateWaiting:
			wait := m.policy.delay(m.attempt, m.err.Kind)
			select {
			case <-ctx.Done():
				m.err = classify(m.name, ctx.Err())
				m.transition(StateExhausted)
			case <-time.After(wait):
				m.attempt++
				m.transition(StateTrying)
			}

		case StateSucceeded, StateExhausted:
			return
		}
	}
}

func (m *machine[T]) try(ctx context.Context, call attemptFunc[T], accept func(T) error) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.policy.Timeout)
	defer cancel()

	v, err := call(callCtx)
	if err != nil {
		// A deadline hit inside the call surfaces as a timeout even when the
		// client reports it as a generic transport error.
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return v, &Error{Provider: m.name, Kind: types.ErrTimeout, Err: err}
		}
		return v, err
	}
	if accept != nil {
		if err := accept(v); err != nil {
			var zero T
			return zero, &Error{Provider: m.name, Kind: types.ErrUpstream, Err: err}
		}
	}
	return v, nil
}

// runCall runs call under policy p and reports the outcome. The value is
// the zero value unless the call succeeded.
func runCall[T any](ctx context.Context, p Policy, name string, call attemptFunc[T], accept func(T) error) (T, types.ProviderCallResult, *machine[T]) {
	m := &machine[T]{policy: p.normalize(), name: name}
	start := time.Now()
	m.run(ctx, call, accept)

	res := types.ProviderCallResult{
		Success:   m.state == StateSucceeded,
		Attempts:  m.attempt,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if m.err != nil && !res.Success {
		res.ErrorKind = m.err.Kind
	}
	return m.value, res, m
}
