package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/internal/engine"
	"github.com/pdiddy/script-engine/internal/readtime"
	"github.com/pdiddy/script-engine/internal/sources"
	"github.com/pdiddy/script-engine/pkg/types"
)

type stubPipeline struct {
	themes    []string
	counts    []int
	fromTopic []types.Topic
	profiles  []*types.CreatorProfile
}

func (p *stubPipeline) GenerateTopics(_ context.Context, theme string, n int, profile *types.CreatorProfile) []types.Topic {
	p.themes = append(p.themes, theme)
	p.counts = append(p.counts, n)
	p.profiles = append(p.profiles, profile)
	return []types.Topic{{Title: "Idée sur " + theme}}
}

func (p *stubPipeline) FetchResearch(_ context.Context, topic string, _ int) types.ResearchBundle {
	return types.ResearchBundle{RawText: "Recherche sur " + topic, Provider: "static", Origin: types.OriginStub}
}

func (p *stubPipeline) GenerateScript(_ context.Context, topic, research string, profile *types.CreatorProfile) types.ScriptDraft {
	p.profiles = append(p.profiles, profile)
	return types.ScriptDraft{
		Text:     "[HOOK]\n" + topic,
		Provider: "scaffold",
		Fallback: true,
		Research: research,
		Sources:  sources.Extract(research),
	}
}

func (p *stubPipeline) GenerateScriptFromTopic(_ context.Context, t types.Topic, _ string, _ *types.CreatorProfile) types.ScriptDraft {
	p.fromTopic = append(p.fromTopic, t)
	return types.ScriptDraft{Text: "[HOOK]\n" + t.Title, Provider: "anthropic"}
}

func (p *stubPipeline) ExtractSources(text string) []types.Source { return sources.Extract(text) }

func (p *stubPipeline) EstimateReadingTime(text string) types.ReadingTime {
	return readtime.Estimate(text)
}

func (p *stubPipeline) Adapters() []engine.AdapterStatus {
	return []engine.AdapterStatus{{Role: engine.RolePrimary, Name: "anthropic", Available: true}}
}

func setup(t *testing.T, opts ...Option) (*Server, *stubPipeline) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	p := &stubPipeline{}
	return New(p, nil, opts...), p
}

func withArchive(t *testing.T) Option {
	t.Helper()
	store, err := archive.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return WithArchive(store)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	s, _ := setup(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status   string                 `json:"status"`
		Adapters []engine.AdapterStatus `json:"adapters"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Adapters, 1)
	assert.Equal(t, "anthropic", body.Adapters[0].Name)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	s, _ := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestTopics(t *testing.T) {
	s, p := setup(t)
	rec := do(t, s, http.MethodPost, "/v1/topics", `{"theme":"IA","count":3,"profile":{"channel_name":"ChefTV"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Topics []types.Topic `json:"topics"`
		Run    *runRef       `json:"run"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Topics, 1)
	assert.Equal(t, "Idée sur IA", body.Topics[0].Title)
	assert.Nil(t, body.Run)
	assert.Equal(t, []int{3}, p.counts)
	require.NotNil(t, p.profiles[0])
	assert.Equal(t, "ChefTV", p.profiles[0].ChannelName)
}

func TestMalformedJSON(t *testing.T) {
	s, p := setup(t)
	for _, path := range []string{"/v1/topics", "/v1/research", "/v1/scripts", "/v1/sources", "/v1/reading-time"} {
		rec := do(t, s, http.MethodPost, path, "{bad json")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Empty(t, p.themes)
}

func TestResearch(t *testing.T) {
	s, _ := setup(t)
	rec := do(t, s, http.MethodPost, "/v1/research", `{"topic":"volcans","max_results":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Research types.ResearchBundle `json:"research"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "Recherche sur volcans", body.Research.RawText)
	assert.Equal(t, types.OriginStub, body.Research.Origin)
}

func TestScripts(t *testing.T) {
	s, p := setup(t)

	rec := do(t, s, http.MethodPost, "/v1/scripts", `{"topic":"Test","profile":{"youtuber_name":"Alice"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Script types.ScriptDraft `json:"script"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "[HOOK]\nTest", body.Script.Text)
	assert.True(t, body.Script.Fallback)
	assert.Equal(t, "Alice", p.profiles[0].AuthorName)
	assert.Empty(t, body.Script.Sources)

	rec = do(t, s, http.MethodPost, "/v1/scripts", `{"topic":"Volcans","research":"Source: https://fr.wikipedia.org/wiki/Volcan\nTitre: Volcan"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body.Script = types.ScriptDraft{}
	decode(t, rec, &body)
	require.Len(t, body.Script.Sources, 1)
	assert.Equal(t, "https://fr.wikipedia.org/wiki/Volcan", body.Script.Sources[0].URL)
	assert.Equal(t, "Volcan", body.Script.Sources[0].Title)

	rec = do(t, s, http.MethodPost, "/v1/scripts", `{"topic":"ignoré","topic_detail":{"title":"Le jeûne","angle":"Science"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "[HOOK]\nLe jeûne", body.Script.Text)
	require.Len(t, p.fromTopic, 1)
	assert.Equal(t, "Science", p.fromTopic[0].Angle)
}

func TestSourcesAndReadingTime(t *testing.T) {
	s, _ := setup(t)

	rec := do(t, s, http.MethodPost, "/v1/sources", `{"text":"Voir https://fr.wikipedia.org/wiki/Volcan"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var src struct {
		Sources []types.Source `json:"sources"`
	}
	decode(t, rec, &src)
	require.Len(t, src.Sources, 1)
	assert.Equal(t, types.SourceEncyclopedia, src.Sources[0].Type)

	words := strings.Repeat("mot ", 650)
	rec = do(t, s, http.MethodPost, "/v1/reading-time", `{"text":"[HOOK] `+words+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var rt types.ReadingTime
	decode(t, rec, &rt)
	assert.Equal(t, "5:00", rt.Formatted)
	assert.Equal(t, 650, rt.WordCount)
}

func TestSaveAndRuns(t *testing.T) {
	s, _ := setup(t, withArchive(t), WithFrontendURL("https://app.example.org/"))

	rec := do(t, s, http.MethodPost, "/v1/scripts", `{"topic":"Test","save":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved struct {
		Run runRef `json:"run"`
	}
	decode(t, rec, &saved)
	require.NotEmpty(t, saved.Run.ID)
	assert.Equal(t, "https://app.example.org/runs/"+saved.Run.ID, saved.Run.URL)

	rec = do(t, s, http.MethodPost, "/v1/topics", `{"theme":"IA","save":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/runs?kind=script", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Runs []archive.Run `json:"runs"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, archive.KindScript, list.Runs[0].Kind)
	assert.True(t, list.Runs[0].Fallback)

	rec = do(t, s, http.MethodGet, "/v1/runs/"+saved.Run.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run archive.Run
	decode(t, rec, &run)
	var draft types.ScriptDraft
	require.NoError(t, run.Decode(&draft))
	assert.Equal(t, "[HOOK]\nTest", draft.Text)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/runs/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/v1/runs?kind=pdf", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/v1/runs?limit=-1", "").Code)
}

func TestRunsWithoutArchive(t *testing.T) {
	s, _ := setup(t)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/runs", "").Code)

	rec := do(t, s, http.MethodPost, "/v1/topics", `{"theme":"IA","save":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"run"`)
}
