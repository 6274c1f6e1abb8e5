// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package script

import (
	"bytes"
	"fmt"
	"text/template"
	"unicode/utf8"
)

// MaxPromptChars is the longest prompt sent upstream. Longer prompts are
// rebuilt in compressed form.
const MaxPromptChars = 12000

// compressedResearchChars caps the research kept in a compressed prompt.
const compressedResearchChars = 4000

// RequiredSections lists the markers the model is asked to emit, in order.
var RequiredSections = []string{
	HeadingHook,
	HeadingIntroduction,
	"PARTIE 1",
	"PARTIE 2",
	"PARTIE 3",
	"ANALYSE APPROFONDIE",
	HeadingConclusion,
}

type promptData struct {
	Topic     string
	Angle     string
	KeyPoints []string
	Author    string
	Channel   string
	Profile   string
	Research  string
	Sections  []string
}

var fullPromptTmpl = template.Must(template.New("script").Parse(
	`Tu es un scénariste professionnel de vidéos YouTube. Rédige le script complet, prêt à être lu face caméra, d'une vidéo sur le sujet : "{{.Topic}}".
{{if .Angle}}
Angle éditorial : {{.Angle}}
{{end}}{{if .KeyPoints}}
Points clés à couvrir :
{{range .KeyPoints}}- {{.}}
{{end}}{{end}}{{if .Profile}}
Profil du créateur :
{{.Profile}}{{end}}
Structure obligatoire. Chaque section commence par son marqueur, seul sur sa ligne, dans cet ordre :
{{range .Sections}}[{{.}}]
{{end}}
Consignes :
- Au moins 3000 mots au total.
- [HOOK] : une accroche forte de quelques phrases qui donne envie de rester.
- [INTRODUCTION] : présente {{.Author}} et la chaîne {{.Channel}}, puis annonce le plan.
- [PARTIE 1] à [PARTIE 3] : développe chaque partie avec des exemples concrets, des chiffres et des anecdotes.
- [ANALYSE APPROFONDIE] : confronte les points de vue, nuance, explique ce que disent les experts.
- [CONCLUSION] : résume, ouvre une perspective et invite à s'abonner à {{.Channel}}.
- Style oral, phrases courtes, adresse directe au public. Pas de didascalies ni de notes de réalisation.
- Appuie-toi sur les recherches ci-dessous et n'invente pas de sources.

Recherches :
{{.Research}}
`))

var compressedPromptTmpl = template.Must(template.New("script-compressed").Parse(
	`Scénariste YouTube. Script complet (3000 mots minimum) sur "{{.Topic}}", écrit pour {{.Author}}, chaîne {{.Channel}}.
Marqueurs obligatoires, chacun seul sur sa ligne, dans cet ordre :
{{range .Sections}}[{{.}}]
{{end}}Style oral, exemples concrets, chiffres issus des recherches.

Recherches (extrait) :
{{.Research}}
`))

// BuildPrompt renders the full script prompt for b and research. When the
// result exceeds MaxPromptChars it renders the compressed form instead,
// keeping the section list and the creator identity and trimming research
// to fit.
func BuildPrompt(b Brief, research string) (string, error) {
	data := promptData{
		Topic:     b.topic(),
		Angle:     b.Angle,
		KeyPoints: b.KeyPoints,
		Author:    b.author(),
		Channel:   b.channel(),
		Profile:   b.Profile.Describe(),
		Research:  research,
		Sections:  RequiredSections,
	}
	full, err := render(fullPromptTmpl, data)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(full) <= MaxPromptChars {
		return full, nil
	}

	data.Research = ""
	base, err := render(compressedPromptTmpl, data)
	if err != nil {
		return "", err
	}
	budget := MaxPromptChars - utf8.RuneCountInString(base)
	if budget > compressedResearchChars {
		budget = compressedResearchChars
	}
	data.Research = truncateRunes(research, budget)
	return render(compressedPromptTmpl, data)
}

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
