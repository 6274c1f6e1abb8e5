// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/pkg/types"
)

func TestDo_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "hello")
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	body, err := Do(ts.Client(), req)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestDo_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, strings.Repeat("x", 2000))
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = Do(ts.Client(), req)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Len(t, se.Body, maxErrorBody)
	assert.Equal(t, types.ErrUpstream, Kind(err))
}

func TestDo_ClientTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = Do(NewClient(20*time.Millisecond), req)
	require.Error(t, err)
	assert.Equal(t, types.ErrTimeout, Kind(err))
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		code int
		want types.ErrorKind
	}{
		{http.StatusOK, types.ErrNone},
		{http.StatusBadRequest, types.ErrBadRequest},
		{http.StatusUnauthorized, types.ErrUnauthorized},
		{http.StatusForbidden, types.ErrUnauthorized},
		{http.StatusNotFound, types.ErrBadRequest},
		{http.StatusRequestTimeout, types.ErrTimeout},
		{http.StatusTooManyRequests, types.ErrRateLimited},
		{http.StatusInternalServerError, types.ErrUpstream},
		{http.StatusBadGateway, types.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.code))
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, types.ErrNone, Kind(nil))
	assert.Equal(t, types.ErrTimeout, Kind(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	assert.Equal(t, types.ErrNetwork, Kind(errors.New("connection refused")))
	assert.Equal(t, types.ErrRateLimited, Kind(fmt.Errorf("wrapped: %w", &StatusError{Code: 429})))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewClient(0).Timeout)
	assert.Equal(t, 5*time.Second, NewClient(5*time.Second).Timeout)
}
