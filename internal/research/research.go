// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research assembles the contextual text handed to script
// generation. It tries the web-search adapter first, then asks an LLM to
// synthesize sources, and finally falls back to a deterministic stub.
package research

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/script-engine/internal/dispatch"
	"github.com/pdiddy/script-engine/internal/logging"
	"github.com/pdiddy/script-engine/internal/provider"
	"github.com/pdiddy/script-engine/internal/sources"
	"github.com/pdiddy/script-engine/pkg/types"
)

// DefaultMaxResults is used when Fetch is called with a non-positive count.
const DefaultMaxResults = 5

// MinLength is the shortest research text accepted from an adapter.
const MinLength = 100

// stubHost is the reserved documentation domain used by the stub.
const stubHost = "example.com"

var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(
	`Tu es un documentaliste. Propose {{.K}} sources plausibles et pertinentes sur le sujet suivant : "{{.Topic}}".

Pour chaque source, respecte exactement ce format :

[Source N] Titre de la source
URL: https://domaine/chemin
Résumé: deux ou trois phrases factuelles sur ce que la source apporte.

Privilégie des médias reconnus, des institutions et des publications académiques.
N'utilise aucune date postérieure à {{.Year}}. Ne mets aucun texte avant ou après la liste.
`))

// Aggregator fetches research bundles through the research chain.
type Aggregator struct {
	d   *dispatch.Dispatcher
	log *logrus.Logger
}

// New returns an aggregator running the dispatcher's research chain.
func New(d *dispatch.Dispatcher, log *logrus.Logger) *Aggregator {
	return &Aggregator{d: d, log: logging.OrDiscard(log)}
}

// Fetch returns a research bundle for topic. The topic is trimmed; an empty
// topic yields an empty stub bundle without touching any adapter.
func (a *Aggregator) Fetch(ctx context.Context, topic string, maxResults int) types.ResearchBundle {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return types.ResearchBundle{Origin: types.OriginStub}
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	out := a.d.Run(ctx, dispatch.KindResearch, dispatch.Request{Subject: topic, Limit: maxResults})
	origin := types.ResearchOrigin(out.Tag)
	if origin == "" {
		origin = types.OriginStub
	}
	a.log.WithFields(logging.Fields{
		"topic":   topic,
		"origin":  origin,
		"adapter": out.Adapter,
		"chars":   len(out.Text),
	}).Info("research fetched")

	return types.ResearchBundle{RawText: out.Text, Provider: out.Adapter, Origin: origin}
}

// Chain builds the research fallback chain: web search, then each LLM in
// order as a synthesizer, then the stub. now supplies the current year for
// date clamping and stub URLs; nil means time.Now.
func Chain(search *provider.WebSearch, llms []*provider.LLM, now func() time.Time) dispatch.Chain {
	if now == nil {
		now = time.Now
	}
	var steps []dispatch.Step
	if search != nil {
		steps = append(steps, SearchStep(search))
	}
	for _, l := range llms {
		if l != nil {
			steps = append(steps, SynthesisStep(l, now))
		}
	}
	return dispatch.Chain{
		Steps:     steps,
		Validate:  dispatch.MinLength(MinLength),
		Static:    func(req dispatch.Request) string { return Stub(req.Subject, req.Limit, now().Year()) },
		StaticTag: string(types.OriginStub),
	}
}

// SearchStep queries the web-search adapter and formats hits with a
// non-empty snippet. A search with no usable hit fails the step.
func SearchStep(ws *provider.WebSearch) dispatch.Step {
	return dispatch.Step{
		Name: ws.Name(),
		Tag:  string(types.OriginSearch),
		Run: func(ctx context.Context, req dispatch.Request) types.ProviderCallResult {
			resp, res := ws.Search(ctx, req.Subject, req.Limit)
			if !res.Success {
				return res
			}
			text := FormatResults(resp)
			if text == "" {
				res.Success = false
				res.ErrorKind = types.ErrValidation
				return res
			}
			res.Text = text
			return res
		},
	}
}

// SynthesisStep asks llm to invent plausible sources in the canonical
// format. Years later than the current one are clamped in its URLs.
func SynthesisStep(llm *provider.LLM, now func() time.Time) dispatch.Step {
	return dispatch.Step{
		Name: llm.Name(),
		Tag:  string(types.OriginLLM),
		Run: func(ctx context.Context, req dispatch.Request) types.ProviderCallResult {
			year := now().Year()
			prompt, err := renderSynthesisPrompt(req.Subject, req.Limit, year)
			if err != nil {
				return types.ProviderCallResult{ErrorKind: types.ErrBadRequest}
			}
			res := llm.Generate(ctx, prompt)
			if res.Success {
				res.Text = ClampYears(res.Text, year)
			}
			return res
		},
	}
}

func renderSynthesisPrompt(topic string, k, year int) (string, error) {
	var buf bytes.Buffer
	err := synthesisPromptTmpl.Execute(&buf, struct {
		Topic string
		K     int
		Year  int
	}{topic, k, year})
	if err != nil {
		return "", fmt.Errorf("rendering synthesis prompt: %w", err)
	}
	return buf.String(), nil
}

// FormatResults renders hits as canonical source blocks. Hits with an
// empty snippet are skipped and numbering stays contiguous. The answer,
// when present, is prepended as a synthesis paragraph. It returns "" when
// no hit has a snippet.
func FormatResults(resp provider.SearchResponse) string {
	var sb strings.Builder
	n := 0
	for _, r := range resp.Results {
		snippet := strings.TrimSpace(r.Snippet)
		if snippet == "" {
			continue
		}
		n++
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = r.URL
		}
		fmt.Fprintf(&sb, "[Source %d] %s\nURL: %s\nRésumé: %s\n\n", n, title, r.URL, snippet)
	}
	if n == 0 {
		return ""
	}
	if answer := strings.TrimSpace(resp.Answer); answer != "" {
		return "[Synthèse] " + answer + "\n\n" + sb.String()
	}
	return sb.String()
}

// Stub returns k deterministic source blocks on the reserved example
// domain.
func Stub(topic string, k, year int) string {
	if k <= 0 {
		k = DefaultMaxResults
	}
	slug := sources.Slugify(topic)
	if slug == "" {
		slug = "sujet"
	}
	var sb strings.Builder
	for i := 1; i <= k; i++ {
		fmt.Fprintf(&sb, "[Source %d] %s : repère %d\nURL: https://%s/%d/%s-%d\nRésumé: Informations générales sur %s. Contenu indicatif, à vérifier avant publication.\n\n",
			i, topic, i, stubHost, year, slug, i, topic)
	}
	return sb.String()
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ClampYears rewrites four-digit years after maxYear to maxYear inside
// URLs. Years in the prose are facts and stay as written.
func ClampYears(text string, maxYear int) string {
	return sources.MapURLs(text, func(u string) string {
		return yearRe.ReplaceAllStringFunc(u, func(m string) string {
			y, err := strconv.Atoi(m)
			if err != nil || y <= maxYear {
				return m
			}
			return strconv.Itoa(maxYear)
		})
	})
}
