// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across upstream adapters:
// a single-attempt request executor and classification of failures into
// the adapter error taxonomy.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/script-engine/pkg/types"
)

// DefaultTimeout is the per-call wall-clock cap applied when a client is
// built without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of a failing response is kept for logs.
const maxErrorBody = 512

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// NewClient returns an http.Client with the given timeout, or DefaultTimeout
// when timeout is not positive.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Do executes req once and returns the response body. Non-2xx responses are
// returned as *StatusError with a truncated body. The response body is
// always drained and closed.
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: msg}
	}
	return body, nil
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(code int) types.ErrorKind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return types.ErrUnauthorized
	case code == http.StatusTooManyRequests:
		return types.ErrRateLimited
	case code == http.StatusRequestTimeout:
		return types.ErrTimeout
	case code >= 500:
		return types.ErrUpstream
	case code >= 400:
		return types.ErrBadRequest
	}
	return types.ErrNone
}

// Kind classifies an error returned by Do (or by an SDK wrapping net/http)
// into the adapter taxonomy. Unknown errors are treated as network failures.
func Kind(err error) types.ErrorKind {
	if err == nil {
		return types.ErrNone
	}

	var se *StatusError
	if errors.As(err, &se) {
		return KindForStatus(se.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.ErrTimeout
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return types.ErrTimeout
	}

	return types.ErrNetwork
}
