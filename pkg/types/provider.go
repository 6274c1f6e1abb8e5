// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ErrorKind classifies why an upstream call failed.
type ErrorKind string

const (
	ErrNone              ErrorKind = ""
	ErrCredentialMissing ErrorKind = "credential_missing"
	ErrUnauthorized      ErrorKind = "unauthorized"
	ErrNetwork           ErrorKind = "network"
	ErrTimeout           ErrorKind = "timeout"
	ErrRateLimited       ErrorKind = "rate_limited"
	ErrUpstream          ErrorKind = "upstream"
	ErrBadRequest        ErrorKind = "bad_request"
	ErrValidation        ErrorKind = "validation_failed"
)

// Retryable reports whether another attempt on the same adapter may succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrNetwork, ErrTimeout, ErrRateLimited, ErrUpstream:
		return true
	}
	return false
}

// ProviderCallResult is the outcome of one adapter call, retries included.
// Text is empty whenever Success is false.
type ProviderCallResult struct {
	Success   bool      `json:"success"`
	Text      string    `json:"text"`
	Attempts  int       `json:"attempts"`
	LatencyMS int64     `json:"latency_ms"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
}
