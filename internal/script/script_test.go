// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/internal/dispatch"
	"github.com/pdiddy/script-engine/internal/provider"
	"github.com/pdiddy/script-engine/internal/research"
	"github.com/pdiddy/script-engine/pkg/types"
)

var testPolicy = provider.Policy{MaxAttempts: 1, Timeout: time.Second, BaseDelay: time.Millisecond, Backoff: types.BackoffLinear}

var fastHealth = types.HealthConfig{Timeout: time.Second, Attempts: 2}

type scriptedCompleter struct {
	name    string
	respond func(prompt string) (string, error)
	prompts []string
}

func (s *scriptedCompleter) Name() string { return s.name }

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.respond(prompt)
}

func failing(name string) *scriptedCompleter {
	return &scriptedCompleter{name: name, respond: func(string) (string, error) {
		return "", errors.New("connection refused")
	}}
}

// healthyWith answers the health check with OK, the enrichment prompt with
// facts, and anything else with script.
func healthyWith(name, script string) *scriptedCompleter {
	return &scriptedCompleter{name: name, respond: func(p string) (string, error) {
		switch {
		case p == healthPrompt:
			return "OK", nil
		case strings.HasPrefix(p, "Donne des statistiques"):
			return "- 42 % des foyers sont concernés.", nil
		}
		return script, nil
	}}
}

func llm(c *scriptedCompleter) *provider.LLM {
	return provider.NewLLM(c.name, c, testPolicy, nil)
}

func newGenerator(agg *research.Aggregator, completers ...*scriptedCompleter) *Generator {
	var llms []*provider.LLM
	for _, c := range completers {
		llms = append(llms, llm(c))
	}
	d := dispatch.New(map[dispatch.TaskKind]dispatch.Chain{dispatch.KindScript: Chain(llms...)}, nil)
	var primary *provider.LLM
	if len(llms) > 0 {
		primary = llms[0]
	}
	return New(d, primary, agg, fastHealth, nil)
}

func longResearch() string {
	return strings.Repeat("Les chiffres de l'INSEE montrent une hausse continue. ", 5)
}

func fullScript() string {
	return "[HOOK]\nVous n'allez pas le croire.\n\n[INTRODUCTION]\nBienvenue.\n\n[PARTIE 1]\n" +
		strings.Repeat("Développement détaillé du sujet. ", 10) +
		"\n\n[ANALYSE APPROFONDIE]\nNuances.\n\n[CONCLUSION]\nÀ bientôt."
}

func assertMarkers(t *testing.T, text string) {
	t.Helper()
	assert.Contains(t, text, "[HOOK]")
	assert.Contains(t, text, "[INTRODUCTION]")
	assert.Contains(t, text, "[CONCLUSION]")
}

func TestGenerate_HealthCheckFailsUsesScaffold(t *testing.T) {
	primary := failing("primary")
	secondary := healthyWith("secondary", fullScript())
	g := newGenerator(nil, primary, secondary)

	draft := g.Generate(context.Background(), "Test", "", &types.CreatorProfile{
		AuthorName:  "Alice",
		ChannelName: "AliceTV",
	})

	assertMarkers(t, draft.Text)
	assert.Contains(t, draft.Text, "Alice")
	assert.Contains(t, draft.Text, "AliceTV")
	assert.Contains(t, draft.Text, "Test")
	assert.True(t, draft.Fallback)
	assert.Equal(t, ScaffoldProvider, draft.Provider)
	assert.Len(t, primary.prompts, fastHealth.Attempts)
	assert.Empty(t, secondary.prompts)
	assert.Empty(t, draft.Research)
	assert.NotNil(t, draft.Sources)
	assert.Empty(t, draft.Sources)
	require.NotEmpty(t, draft.Sections)
	assert.Equal(t, HeadingHook, draft.Sections[0].Heading)
}

func TestGenerate_NoAdaptersStillReturnsScript(t *testing.T) {
	g := newGenerator(nil)
	draft := g.Generate(context.Background(), "", "", &types.CreatorProfile{AuthorName: "Zoé"})
	assertMarkers(t, draft.Text)
	assert.Contains(t, draft.Text, "Zoé")
	assert.Greater(t, draft.WordCount, 0)
}

func TestGenerate_HappyPath(t *testing.T) {
	primary := healthyWith("primary", fullScript())
	g := newGenerator(nil, primary)

	draft := g.Generate(context.Background(), "Le sommeil", longResearch(), &types.CreatorProfile{ChannelName: "DormirTV"})

	assert.False(t, draft.Fallback)
	assert.Equal(t, "primary", draft.Provider)
	assert.Equal(t, fullScript(), draft.Text)
	require.Len(t, draft.Sections, 5)
	assert.Equal(t, HeadingHook, draft.Sections[0].Heading)
	assert.Equal(t, "PARTIE 1", draft.Sections[2].Heading)
	assert.Equal(t, draft.ReadingTime.WordCount, draft.WordCount)

	// health check + script prompt, no enrichment since research was long enough
	require.Len(t, primary.prompts, 2)
	scriptPrompt := primary.prompts[1]
	assert.Contains(t, scriptPrompt, `"Le sommeil"`)
	assert.Contains(t, scriptPrompt, "INSEE")
	assert.Contains(t, scriptPrompt, "DormirTV")
	for _, s := range RequiredSections {
		assert.Contains(t, scriptPrompt, "["+s+"]")
	}
}

func TestGenerate_ShortScriptFallsToSecondary(t *testing.T) {
	primary := healthyWith("primary", "[HOOK] trop court")
	secondary := healthyWith("secondary", fullScript())
	g := newGenerator(nil, primary, secondary)

	draft := g.Generate(context.Background(), "Le sommeil", longResearch(), nil)
	assert.Equal(t, "secondary", draft.Provider)
	assert.False(t, draft.Fallback)
}

func TestGenerate_AllScriptAdaptersFail(t *testing.T) {
	primary := healthyWith("primary", "court")
	g := newGenerator(nil, primary, failing("secondary"))

	draft := g.Generate(context.Background(), "Le sommeil", longResearch(), &types.CreatorProfile{AuthorName: "Alice"})
	assert.True(t, draft.Fallback)
	assertMarkers(t, draft.Text)
	assert.Contains(t, draft.Text, "Alice")
}

func TestGenerate_RepairsMissingMarkers(t *testing.T) {
	body := strings.Repeat("Un texte sans aucun marqueur mais assez long. ", 10)
	primary := healthyWith("primary", body)
	g := newGenerator(nil, primary)

	draft := g.Generate(context.Background(), "Les abeilles", longResearch(), &types.CreatorProfile{AuthorName: "Léa", ChannelName: "NatureTV"})

	assertMarkers(t, draft.Text)
	assert.Contains(t, draft.Text, strings.TrimSpace(body))
	assert.Equal(t, HeadingHook, draft.Sections[0].Heading)
	assert.Equal(t, HeadingIntroduction, draft.Sections[1].Heading)
	assert.Equal(t, HeadingConclusion, draft.Sections[len(draft.Sections)-1].Heading)
	assert.Contains(t, draft.Text, "NatureTV")
}

type fakeSearcher struct{ queries []string }

func (f *fakeSearcher) Name() string { return "tavily" }

func (f *fakeSearcher) Search(_ context.Context, q string, _ int) (provider.SearchResponse, error) {
	f.queries = append(f.queries, q)
	return provider.SearchResponse{Results: []provider.SearchResult{{
		Title:   "Étude sur le sommeil",
		URL:     "https://www.inserm.fr/dossier/sommeil",
		Snippet: "Un adulte sur trois dort moins de six heures par nuit selon les dernières enquêtes nationales.",
	}}}, nil
}

func TestGenerate_ThinResearchIsFetchedAndEnriched(t *testing.T) {
	fs := &fakeSearcher{}
	chain := research.Chain(provider.NewWebSearch(fs, testPolicy, nil), nil, nil)
	agg := research.New(dispatch.New(map[dispatch.TaskKind]dispatch.Chain{dispatch.KindResearch: chain}, nil), nil)

	primary := healthyWith("primary", fullScript())
	g := newGenerator(agg, primary)

	draft := g.Generate(context.Background(), "Le sommeil", "trop court", nil)
	require.False(t, draft.Fallback)

	assert.Equal(t, []string{"Le sommeil"}, fs.queries)
	require.Len(t, primary.prompts, 3)
	assert.True(t, strings.HasPrefix(primary.prompts[1], "Donne des statistiques"))
	scriptPrompt := primary.prompts[2]
	assert.Contains(t, scriptPrompt, "Un adulte sur trois")
	assert.Contains(t, scriptPrompt, "Statistiques et faits récents :\n- 42 % des foyers")

	assert.Contains(t, draft.Research, "Un adulte sur trois")
	require.Len(t, draft.Sources, 1)
	assert.Equal(t, "https://www.inserm.fr/dossier/sommeil", draft.Sources[0].URL)
	assert.Equal(t, "Étude sur le sommeil", draft.Sources[0].Title)
	assert.False(t, draft.Sources[0].Simulated)
}

func TestGenerateFromTopic_CarriesAngleAndKeyPoints(t *testing.T) {
	primary := healthyWith("primary", fullScript())
	g := newGenerator(nil, primary)

	g.GenerateFromTopic(context.Background(), types.Topic{
		Title:     "Le jeûne",
		Angle:     "Démêler le vrai du faux",
		KeyPoints: []string{"Origines", "Études cliniques"},
	}, longResearch(), nil)

	require.Len(t, primary.prompts, 2)
	assert.Contains(t, primary.prompts[1], "Angle éditorial : Démêler le vrai du faux")
	assert.Contains(t, primary.prompts[1], "- Études cliniques")
}

func TestBuildPrompt_Compressed(t *testing.T) {
	b := Brief{Topic: "Les volcans", Profile: &types.CreatorProfile{AuthorName: "Hugo", ChannelName: "GéoTV"}}
	prompt, err := BuildPrompt(b, strings.Repeat("lave ", 5000))
	require.NoError(t, err)

	assert.LessOrEqual(t, len([]rune(prompt)), MaxPromptChars)
	assert.Contains(t, prompt, "Hugo")
	assert.Contains(t, prompt, "GéoTV")
	assert.Contains(t, prompt, `"Les volcans"`)
	for _, s := range RequiredSections {
		assert.Contains(t, prompt, "["+s+"]")
	}
	assert.NotContains(t, prompt, "Consignes")
}

func TestBuildPrompt_FullWhenShort(t *testing.T) {
	prompt, err := BuildPrompt(Brief{Topic: "Les volcans"}, "lave")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Consignes")
	assert.Contains(t, prompt, defaultAuthor)
}

func TestParseSections(t *testing.T) {
	text := "Voici le script :\n[HOOK] Accroche\n[INTRODUCTION]\nIntro [1] avec citation\n\n[PARTIE 1]\nCorps"
	got := ParseSections(text)
	require.Len(t, got, 4)
	assert.Equal(t, types.Section{Body: "Voici le script :"}, got[0])
	assert.Equal(t, types.Section{Heading: "HOOK", Body: "Accroche"}, got[1])
	assert.Equal(t, types.Section{Heading: "INTRODUCTION", Body: "Intro [1] avec citation"}, got[2])
	assert.Equal(t, types.Section{Heading: "PARTIE 1", Body: "Corps"}, got[3])

	assert.Empty(t, ParseSections("   "))
	assert.Equal(t, []types.Section{{Body: "texte brut"}}, ParseSections("texte brut"))
}

func TestEnsureMarkers(t *testing.T) {
	b := Brief{Topic: "Paris"}

	complete := "[HOOK]\na\n\n[INTRODUCTION]\nb\n\n[CONCLUSION]\nc"
	assert.Equal(t, complete, EnsureMarkers(complete, b))

	chatter := "Bien sûr ! Voici :\n" + complete
	assert.Equal(t, complete, EnsureMarkers(chatter, b))

	noIntro := EnsureMarkers("[HOOK]\na\n\n[PARTIE 1]\nb", b)
	secs := ParseSections(noIntro)
	require.Len(t, secs, 4)
	assert.Equal(t, []string{"HOOK", "INTRODUCTION", "PARTIE 1", "CONCLUSION"},
		[]string{secs[0].Heading, secs[1].Heading, secs[2].Heading, secs[3].Heading})
	assert.Contains(t, secs[1].Body, "Paris")

	mixed := EnsureMarkers("[Hook]\nA.\n\n[Introduction]\nB.\n\n[Partie 1]\nC.\n\n[Conclusion]\nD.", b)
	assert.Equal(t, "[HOOK]\nA.\n\n[INTRODUCTION]\nB.\n\n[Partie 1]\nC.\n\n[CONCLUSION]\nD.", mixed)
}

func TestScaffold_Deterministic(t *testing.T) {
	b := Brief{Topic: "Le café", Profile: &types.CreatorProfile{AuthorName: "Alice", ChannelName: "AliceTV"}}
	s := Scaffold(b)
	assert.Equal(t, s, Scaffold(b))

	secs := ParseSections(s)
	var headings []string
	for _, sec := range secs {
		headings = append(headings, sec.Heading)
	}
	assert.Equal(t, []string{"HOOK", "INTRODUCTION", "SECTION 1", "SECTION 2", "SECTION 3", "CONCLUSION"}, headings)
}

func TestHealthPolicy_Defaults(t *testing.T) {
	p := HealthPolicy(types.HealthConfig{})
	assert.Equal(t, defaultHealthAttempts, p.MaxAttempts)
	assert.Equal(t, defaultHealthTimeout/defaultHealthAttempts, p.Timeout)

	p = HealthPolicy(types.HealthConfig{Timeout: 3 * time.Second, Attempts: 3})
	assert.Equal(t, time.Second, p.Timeout)
}

// hangingCompleter blocks until its context is done.
type hangingCompleter struct{ calls int }

func (h *hangingCompleter) Name() string { return "hanging" }

func (h *hangingCompleter) Complete(ctx context.Context, _ string) (string, error) {
	h.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerate_HealthCheckStaysWithinBudget(t *testing.T) {
	hang := &hangingCompleter{}
	primary := provider.NewLLM("primary", hang, testPolicy, nil)
	d := dispatch.New(map[dispatch.TaskKind]dispatch.Chain{dispatch.KindScript: Chain(primary)}, nil)
	budget := 300 * time.Millisecond
	g := New(d, primary, nil, types.HealthConfig{Timeout: budget, Attempts: 2}, nil)

	start := time.Now()
	draft := g.Generate(context.Background(), "Test", longResearch(), nil)
	elapsed := time.Since(start)

	assert.True(t, draft.Fallback)
	assert.Less(t, elapsed, budget+200*time.Millisecond)
	assert.LessOrEqual(t, hang.calls, 2)
}
