package sources

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/script-engine/pkg/types"
)

const (
	maxSynthesized = 5
	minSynthesized = 3
	minTitleLen    = 30
	maxTitleLen    = 100
	windowWords    = 8
)

// Domain is a plausible host with a fixed classification.
type Domain struct {
	Host        string
	Type        types.SourceType
	Reliability types.Reliability
}

// Domains is the table simulated sources draw their host from.
var Domains = []Domain{
	{"www.lemonde.fr", types.SourcePress, types.ReliabilityGood},
	{"www.lefigaro.fr", types.SourcePress, types.ReliabilityGood},
	{"www.liberation.fr", types.SourcePress, types.ReliabilityGood},
	{"fr.wikipedia.org", types.SourceEncyclopedia, types.ReliabilityGood},
	{"www.cairn.info", types.SourceAcademic, types.ReliabilityHigh},
	{"hal.science", types.SourceAcademic, types.ReliabilityHigh},
	{"www.nature.com", types.SourceAcademic, types.ReliabilityHigh},
	{"www.futura-sciences.com", types.SourceMagazine, types.ReliabilityMedium},
	{"www.sciencesetavenir.fr", types.SourceMagazine, types.ReliabilityGood},
	{"www.franceculture.fr", types.SourceArticle, types.ReliabilityGood},
	{"medium.com", types.SourceBlog, types.ReliabilityMedium},
}

var genericTitles = []string{
	"Analyse approfondie du sujet",
	"Dossier de référence et chiffres clés",
	"Perspectives et enjeux actuels",
}

var sentenceEndRe = regexp.MustCompile(`[.!?…]+\s+|\n+`)

// synthesize builds simulated sources from titles mined out of text.
func (e *Extractor) synthesize(text string) []types.Source {
	titles := sentenceTitles(text)
	if len(titles) < minSynthesized {
		titles = windowTitles(text)
	}
	if len(titles) < minSynthesized {
		titles = genericTitles
	}

	year := e.now().Year()
	out := make([]types.Source, 0, len(titles))
	for _, title := range titles {
		d := Domains[e.intn(len(Domains))]
		slug := Slugify(title)
		if slug == "" {
			slug = "reference"
		}
		out = append(out, types.Source{
			URL:         fmt.Sprintf("https://%s/%d/%s", d.Host, year, slug),
			Title:       title,
			Type:        d.Type,
			Reliability: d.Reliability,
			Date:        fmt.Sprintf("%d", year),
			Summary:     "Référence suggérée à partir du contenu, à vérifier.",
			Simulated:   true,
		})
	}
	return out
}

// sentenceTitles returns up to five sentences that start with an upper-case
// letter and are 30 to 100 characters long.
func sentenceTitles(text string) []string {
	var out []string
	for _, s := range sentenceEndRe.Split(text, -1) {
		s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "-•*#>"))
		s = strings.TrimRight(s, ".!?…")
		n := utf8.RuneCountInString(s)
		if n < minTitleLen || n > maxTitleLen {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(s); !unicode.IsUpper(r) {
			continue
		}
		out = append(out, s)
		if len(out) == maxSynthesized {
			break
		}
	}
	return out
}

// windowTitles cuts the text into consecutive eight-word windows.
func windowTitles(text string) []string {
	words := strings.Fields(text)
	var out []string
	for i := 0; i+windowWords <= len(words) && len(out) < maxSynthesized; i += windowWords {
		out = append(out, capitalize(strings.Join(words[i:i+windowWords], " ")))
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
