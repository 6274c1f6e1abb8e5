// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"errors"
	"fmt"

	"github.com/pdiddy/script-engine/internal/httputil"
	"github.com/pdiddy/script-engine/pkg/types"
)

var (
	// ErrUnavailable is returned by adapters built without credentials.
	ErrUnavailable = errors.New("adapter unavailable: credentials missing")

	// ErrShortResponse marks a body below the minimum viable length.
	ErrShortResponse = errors.New("response shorter than minimum viable length")
)

// Error is a classified adapter failure.
type Error struct {
	Provider string
	Kind     types.ErrorKind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify wraps err as *Error, keeping an existing classification.
func classify(name string, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	e := &Error{Provider: name, Kind: httputil.Kind(err), Err: err}
	var se *httputil.StatusError
	if errors.As(err, &se) {
		e.Status = se.Code
	}
	return e
}

// KindOf returns the error kind of err, or ErrNone for nil.
func KindOf(err error) types.ErrorKind {
	if err == nil {
		return types.ErrNone
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return httputil.Kind(err)
}
