package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/pkg/types"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"curly quotes", "\u201CBonjour\u201D l\u2019été", `"Bonjour" l'été`},
		{"dashes", "2020\u20132024 \u2014 fin", "2020-2024 - fin"},
		{"nbsp", "10\u00A0%", "10 %"},
		{"bullet and ellipsis", "\u2022 Et puis\u2026", "- Et puis..."},
		{"ligatures", "œuvre æther Œdipe", "oeuvre aether OEdipe"},
		{"latin-1 accents kept", "àéîõü ç", "àéîõü ç"},
		{"decomposed to base", "Brașov ă", "Brasov a"},
		{"combining marks composed", "e\u0301te\u0301", "\u00E9t\u00E9"},
		{"unmappable", "Łódź 中", "?ódz ?"},
		{"plain ascii", "Hello, world!", "Hello, world!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			assert.Equal(t, tt.want, got)
			for _, r := range got {
				assert.LessOrEqual(t, r, rune(0xFF))
			}
		})
	}
}

func TestLatin1(t *testing.T) {
	got, err := Latin1("\u00E9t\u00E9 \u2014 \u0153uf")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE9, 't', 0xE9, ' ', '-', ' ', 'o', 'e', 'u', 'f'}, got)
}

func sampleDraft() types.ScriptDraft {
	return types.ScriptDraft{
		Text: "[HOOK]\nAccroche.\n\n[CONCLUSION]\nFin.",
		Sections: []types.Section{
			{Heading: "HOOK", Body: "Accroche."},
			{Heading: "CONCLUSION", Body: "Fin."},
		},
		WordCount:   2,
		ReadingTime: types.ReadingTime{Formatted: "0:00", Text: "moins d'une seconde"},
		Provider:    "anthropic",
	}
}

func sampleSources() []types.Source {
	return []types.Source{
		{URL: "https://www.lemonde.fr/a", Title: "Le Monde", Type: types.SourcePress, Reliability: types.ReliabilityGood, Date: "2024"},
		{URL: "https://www.cairn.info/2026/x", Title: "Revue", Type: types.SourceAcademic, Reliability: types.ReliabilityHigh, Simulated: true},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleDraft(), sampleSources(), Options{Title: "Les volcans"})

	assert.True(t, strings.HasPrefix(md, "# Les volcans\n\n"))
	assert.Contains(t, md, "_Durée estimée : 0:00 (moins d'une seconde), 2 mots_")
	assert.Contains(t, md, "## HOOK\n\nAccroche.\n\n## CONCLUSION\n\nFin.")
	assert.Contains(t, md, "## Sources\n\n1. [Le Monde](https://www.lemonde.fr/a) : presse, fiabilité bonne, 2024\n")
	assert.Contains(t, md, "2. [Revue](https://www.cairn.info/2026/x) : académique, fiabilité élevée (référence simulée)\n")
}

func TestMarkdown_NoSourcesDefaultTitle(t *testing.T) {
	d := sampleDraft()
	d.Sections = append([]types.Section{{Body: "Préambule"}}, d.Sections...)
	md := Markdown(d, nil, Options{})

	assert.True(t, strings.HasPrefix(md, "# Script\n"))
	assert.Contains(t, md, "\n\nPréambule\n\n## HOOK")
	assert.NotContains(t, md, "## Sources")
	assert.True(t, strings.HasSuffix(md, "Fin.\n"))
}

func TestMarkdown_Sanitized(t *testing.T) {
	d := sampleDraft()
	d.Sections[0].Body = "\u201CC\u2019est parti\u2026\u201D"
	md := Markdown(d, nil, Options{Title: "Cœur", Sanitize: true})

	assert.Contains(t, md, "# Coeur")
	assert.Contains(t, md, `"C'est parti..."`)
}

func TestHTML(t *testing.T) {
	html, err := HTML(sampleDraft(), sampleSources(), Options{Title: "Les volcans"})
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Les volcans</h1>")
	assert.Contains(t, html, "<h2>HOOK</h2>")
	assert.Contains(t, html, "<p>Accroche.</p>")
	assert.Contains(t, html, "<ol>")
	assert.Contains(t, html, `<a href="https://www.lemonde.fr/a">Le Monde</a>`)
}
