// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topic generates structured video ideas for a theme. Model output
// goes through a two-stage JSON parser; every returned topic is normalized
// so all fields are populated.
package topic

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/dispatch"
	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/internal/provider"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Bounds on the number of topics per request.
const (
	MinCount     = 1
	MaxCount     = 20
	DefaultCount = 5
)

// defaultTheme stands in for an empty theme.
const defaultTheme = "votre thématique"

var topicsPromptTmpl = template.Must(template.New("topics").Parse(
	`Tu es un stratège de contenu vidéo. Propose exactement {{.N}} idées de vidéos originales sur le thème : "{{.Theme}}".
{{if .Profile}}
Profil du créateur :
{{.Profile}}{{end}}
Réponds UNIQUEMENT avec un objet JSON valide, sans texte avant ni après, de la forme :
{"topics": [{"title": "...", "angle": "...", "why_interesting": "...", "key_points": ["..."], "target_audience": "...", "estimated_duration": "10-15 minutes", "potential_guests": ["..."], "factual_accuracy": "high|medium|low", "timeliness": "very_recent|recent|evergreen", "sources": ["..."]}]}

Chaque idée doit avoir un titre accrocheur et un angle distinct des autres.
`))

// Generator produces topics through the dispatcher's topics chain.
type Generator struct {
	d   *dispatch.Dispatcher
	log *logrus.Logger
}

// New returns a generator running d's topics chain.
func New(d *dispatch.Dispatcher, log *logrus.Logger) *Generator {
	return &Generator{d: d, log: logging.OrDiscard(log)}
}

// Chain builds the topics chain: each LLM in order, validated by Parse,
// terminated by the static framings.
func Chain(llms ...*provider.LLM) dispatch.Chain {
	return dispatch.Chain{
		Steps: dispatch.LLMSteps(llms...),
		Validate: func(text string) error {
			_, err := Parse(text)
			return err
		},
		Static: func(req dispatch.Request) string { return staticJSON(req.Subject) },
	}
}

// Generate returns at most n topics for theme, n clamped to [1, 20]; zero
// means DefaultCount. Every topic is normalized. It never fails: when all
// adapters fail the three static framings are returned.
func (g *Generator) Generate(ctx context.Context, theme string, n int, profile *types.CreatorProfile) []types.Topic {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = defaultTheme
	}
	n = clamp(n)

	prompt, err := renderPrompt(theme, n, profile)
	if err != nil {
		g.log.WithError(err).Error("rendering topics prompt")
	}
	out := g.d.Run(ctx, dispatch.KindTopics, dispatch.Request{
		Prompt:  prompt,
		Subject: theme,
		Limit:   n,
		Profile: profile,
	})

	parsed, err := Parse(out.Text)
	if err != nil {
		parsed = StaticTopics(theme)
	}
	if len(parsed) > n {
		parsed = parsed[:n]
	}
	topics := make([]types.Topic, len(parsed))
	for i, t := range parsed {
		topics[i] = Normalize(t, theme)
	}

	g.log.WithFields(logging.Fields{
		"theme":   theme,
		"count":   len(topics),
		"adapter": out.Adapter,
		"static":  out.Static,
	}).Info("topics generated")
	return topics
}

func clamp(n int) int {
	switch {
	case n == 0:
		return DefaultCount
	case n < MinCount:
		return MinCount
	case n > MaxCount:
		return MaxCount
	}
	return n
}

func renderPrompt(theme string, n int, profile *types.CreatorProfile) (string, error) {
	var buf bytes.Buffer
	err := topicsPromptTmpl.Execute(&buf, struct {
		Theme   string
		N       int
		Profile string
	}{theme, n, profile.Describe()})
	return buf.String(), err
}

func staticJSON(theme string) string {
	if theme == "" {
		theme = defaultTheme
	}
	b, err := json.Marshal(struct {
		Topics []types.Topic `json:"topics"`
	}{StaticTopics(theme)})
	if err != nil {
		return ""
	}
	return string(b)
}
