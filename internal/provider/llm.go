// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider wraps the upstream text-generation and web-search
// services behind uniform adapters. Every adapter call runs through the
// same retry state machine and reports a types.ProviderCallResult; callers
// never see a raw transport error.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Completer performs a single completion request against one upstream.
// Implementations do not retry; LLM owns the retry policy.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLM is a text-generation adapter: a Completer plus its retry policy.
// An LLM built without credentials is unavailable and fails every call
// immediately with ErrCredentialMissing.
type LLM struct {
	name      string
	completer Completer
	policy    Policy
	log       *logrus.Logger
}

// NewLLM wraps c with policy p. A nil completer yields an unavailable
// adapter reported under name.
func NewLLM(name string, c Completer, p Policy, log *logrus.Logger) *LLM {
	if c != nil && name == "" {
		name = c.Name()
	}
	return &LLM{name: name, completer: c, policy: p.normalize(), log: logging.OrDiscard(log)}
}

// Name returns the adapter name used in logs and outcomes.
func (l *LLM) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Available reports whether the adapter has credentials to call upstream.
func (l *LLM) Available() bool {
	return l != nil && l.completer != nil
}

// Policy returns the retry policy applied to each call.
func (l *LLM) Policy() Policy { return l.policy }

// WithPolicy returns a copy of the adapter using p. The health check uses
// it to run a cheap, tightly bounded check.
func (l *LLM) WithPolicy(p Policy) *LLM {
	cp := *l
	cp.policy = p.normalize()
	return &cp
}

// Generate sends prompt upstream and returns the outcome. On success Text
// holds the trimmed completion; on failure Text is empty and ErrorKind
// says why.
func (l *LLM) Generate(ctx context.Context, prompt string) types.ProviderCallResult {
	if !l.Available() {
		return types.ProviderCallResult{ErrorKind: types.ErrCredentialMissing}
	}

	minLen := l.policy.MinLength
	text, res, m := runCall(ctx, l.policy, l.name,
		func(ctx context.Context) (string, error) {
			out, err := l.completer.Complete(ctx, prompt)
			return strings.TrimSpace(out), err
		},
		func(out string) error {
			if len([]rune(out)) < minLen || out == "" {
				return fmt.Errorf("%w: %d chars", ErrShortResponse, len(out))
			}
			return nil
		})

	entry := l.log.WithFields(logging.Fields{
		"adapter":    l.name,
		"attempts":   res.Attempts,
		"latency_ms": res.LatencyMS,
	})
	if res.Success {
		res.Text = text
		entry.Debug("llm call succeeded")
	} else {
		entry.WithField("error_kind", res.ErrorKind).WithError(m.err).Warn("llm call failed")
	}
	return res
}
