package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/pkg/types"
)

type topicsRequest struct {
	Theme   string                `json:"theme"`
	Count   int                   `json:"count"`
	Profile *types.CreatorProfile `json:"profile"`
	Save    bool                  `json:"save"`
}

type researchRequest struct {
	Topic      string `json:"topic"`
	MaxResults int    `json:"max_results"`
	Save       bool   `json:"save"`
}

type scriptRequest struct {
	Topic string `json:"topic"`

	// TopicDetail, when set, carries the angle and key points of a
	// generated topic. Its title wins over Topic.
	TopicDetail *types.Topic          `json:"topic_detail"`
	Research    string                `json:"research"`
	Profile     *types.CreatorProfile `json:"profile"`
	Save        bool                  `json:"save"`
}

type textRequest struct {
	Text string `json:"text"`
}

type runRef struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"adapters": s.pipeline.Adapters(),
	})
}

func (s *Server) topics(c *gin.Context) {
	var req topicsRequest
	if !bind(c, &req) {
		return
	}
	topics := s.pipeline.GenerateTopics(c.Request.Context(), req.Theme, req.Count, req.Profile)
	resp := gin.H{"topics": topics}
	s.save(c, req.Save, archive.KindTopics, req.Theme, false, topics, resp)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) research(c *gin.Context) {
	var req researchRequest
	if !bind(c, &req) {
		return
	}
	bundle := s.pipeline.FetchResearch(c.Request.Context(), req.Topic, req.MaxResults)
	resp := gin.H{"research": bundle}
	s.save(c, req.Save, archive.KindResearch, req.Topic, bundle.Origin == types.OriginStub, bundle, resp)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) scripts(c *gin.Context) {
	var req scriptRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	var (
		draft   types.ScriptDraft
		subject = req.Topic
	)
	if req.TopicDetail != nil && strings.TrimSpace(req.TopicDetail.Title) != "" {
		subject = req.TopicDetail.Title
		draft = s.pipeline.GenerateScriptFromTopic(ctx, *req.TopicDetail, req.Research, req.Profile)
	} else {
		draft = s.pipeline.GenerateScript(ctx, req.Topic, req.Research, req.Profile)
	}

	resp := gin.H{"script": draft}
	s.save(c, req.Save, archive.KindScript, subject, draft.Fallback, draft, resp)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) sources(c *gin.Context) {
	var req textRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": s.pipeline.ExtractSources(req.Text)})
}

func (s *Server) readingTime(c *gin.Context) {
	var req textRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.pipeline.EstimateReadingTime(req.Text))
}

func (s *Server) listRuns(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive disabled"})
		return
	}
	opts := archive.ListOptions{Kind: archive.Kind(c.Query("kind"))}
	if opts.Kind != "" && !opts.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind"})
		return
	}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		opts.Limit = n
	}

	runs, err := s.archive.List(c.Request.Context(), opts)
	if err != nil {
		s.log.WithError(err).Error("listing runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing runs failed"})
		return
	}
	if runs == nil {
		runs = []archive.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive disabled"})
		return
	}
	run, err := s.archive.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, archive.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, archive.ErrAmbiguous):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.log.WithError(err).Error("reading run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reading run failed"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// save archives payload when asked and an archive is configured, adding
// the run reference to resp. Archive failures are logged, never returned:
// the generated result is still delivered.
func (s *Server) save(c *gin.Context, want bool, kind archive.Kind, subject string, fallback bool, payload any, resp gin.H) {
	if !want || s.archive == nil {
		return
	}
	run, err := s.archive.Save(c.Request.Context(), kind, subject, fallback, payload)
	if err != nil {
		s.log.WithError(err).WithField("kind", kind).Error("archiving run")
		return
	}
	ref := runRef{ID: run.ID}
	if s.frontendURL != "" {
		ref.URL = strings.TrimRight(s.frontendURL, "/") + "/runs/" + run.ID
	}
	resp["run"] = ref
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
