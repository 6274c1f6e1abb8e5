// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline over HTTP as JSON endpoints. It has
// no authentication or sessions; callers resolve identity upstream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/internal/engine"
	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/pkg/types"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 30 * time.Second

// Pipeline is the generation surface served over HTTP.
type Pipeline interface {
	GenerateTopics(ctx context.Context, theme string, n int, profile *types.CreatorProfile) []types.Topic
	FetchResearch(ctx context.Context, topic string, maxResults int) types.ResearchBundle
	GenerateScript(ctx context.Context, topic, research string, profile *types.CreatorProfile) types.ScriptDraft
	GenerateScriptFromTopic(ctx context.Context, t types.Topic, research string, profile *types.CreatorProfile) types.ScriptDraft
	ExtractSources(text string) []types.Source
	EstimateReadingTime(text string) types.ReadingTime
	Adapters() []engine.AdapterStatus
}

// Archive stores runs. It is optional.
type Archive interface {
	Save(ctx context.Context, kind archive.Kind, subject string, fallback bool, payload any) (archive.Run, error)
	Get(ctx context.Context, id string) (archive.Run, error)
	List(ctx context.Context, opts archive.ListOptions) ([]archive.Run, error)
}

// Server routes HTTP requests to a pipeline.
type Server struct {
	pipeline    Pipeline
	archive     Archive
	frontendURL string
	log         *logrus.Logger
	router      *gin.Engine
}

// Option customizes a Server.
type Option func(*Server)

// WithArchive enables "save" on generation requests and the /v1/runs
// endpoints.
func WithArchive(a Archive) Option {
	return func(s *Server) { s.archive = a }
}

// WithFrontendURL sets the base URL used to build run links.
func WithFrontendURL(u string) Option {
	return func(s *Server) { s.frontendURL = u }
}

// New returns a server for p.
func New(p Pipeline, log *logrus.Logger, opts ...Option) *Server {
	s := &Server{pipeline: p, log: logging.OrDiscard(log)}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), s.logRequests(), gin.Recovery())

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.POST("/topics", s.topics)
	v1.POST("/research", s.research)
	v1.POST("/scripts", s.scripts)
	v1.POST("/sources", s.sources)
	v1.POST("/reading-time", s.readingTime)
	v1.GET("/runs", s.listRuns)
	v1.GET("/runs/:id", s.getRun)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logging.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString("request_id"),
		}).Info("HTTP request")
	}
}
