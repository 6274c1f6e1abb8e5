// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources mines URL-bearing references out of free-form research
// text and classifies them by type and reliability. When the text holds no
// usable URL it synthesizes plausible references, flagged as simulated.
package sources

import (
	"math/rand/v2"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/script-engine/pkg/types"
)

// Extractor extracts sources. The zero value is ready to use; Intn and Now
// only matter for the synthesis pass.
type Extractor struct {
	// Intn returns a random int in [0, n). Defaults to math/rand/v2.IntN.
	Intn func(n int) int
	// Now supplies the year of synthesized references. Defaults to time.Now.
	Now func() time.Time
}

// Extract runs the default extractor over text.
func Extract(text string) []types.Source {
	return (&Extractor{}).Extract(text)
}

// Extract returns the sources found in text, in order of appearance:
// structured blocks first, then inline URLs not already captured. When
// both passes yield nothing, simulated sources are synthesized from the
// text. Sources on reserved example domains are never returned as real.
func (e *Extractor) Extract(text string) []types.Source {
	if strings.TrimSpace(text) == "" {
		return []types.Source{}
	}

	seen := make(map[string]bool)
	var out []types.Source
	add := func(s types.Source) {
		key := dedupeKey(s.URL)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	for _, b := range parseBlocks(text) {
		add(newSource(b.url, b.title, b.summary))
	}
	for _, u := range inlineURLs(text) {
		add(newSource(u, "", ""))
	}

	if len(out) > 0 {
		return out
	}
	return e.synthesize(text)
}

func (e *Extractor) intn(n int) int {
	if e.Intn != nil {
		return e.Intn(n)
	}
	return rand.IntN(n)
}

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func newSource(u, title, summary string) types.Source {
	typ, rel := Classify(u)
	if title == "" {
		title = titleFromURL(u)
	}
	return types.Source{
		URL:         u,
		Title:       title,
		Type:        typ,
		Reliability: rel,
		Date:        DateFromURL(u),
		Summary:     summary,
	}
}

var (
	// Parentheses are allowed inside URLs; an unbalanced trailing ")" is
	// trimmed by cleanURL.
	urlRe = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `\]}]+`)

	separatorRe = regexp.MustCompile(`(?m)^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)
	blankRunRe  = regexp.MustCompile(`\n[ \t]*\n`)

	urlLabelRe     = regexp.MustCompile(`(?i)^(?:source|url|lien|link)\s*:\s*(.*)$`)
	bracketLabelRe = regexp.MustCompile(`(?i)^\[(?:source)?\s*\d*\]\s*:?\s*(.*)$`)
	titleLabelRe   = regexp.MustCompile(`(?i)^(?:titre|title)\s*:\s*(.+)$`)
	dashLineRe     = regexp.MustCompile(`^[-•*]\s+(.+)$`)
	summaryLabelRe = regexp.MustCompile(`(?i)^(?:résumé|resume|description|summary)\s*:\s*(.+)$`)
	pipeLineRe     = regexp.MustCompile(`^\|\s*(.+?)\s*\|?$`)

	fullDateRe = regexp.MustCompile(`(?:19|20)\d{2}-\d{2}-\d{2}`)
	yearOnlyRe = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)
)

type block struct {
	url, title, summary string
}

// splitBlocks splits text on separator lines and runs of blank lines.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []string
	for _, part := range separatorRe.Split(text, -1) {
		for _, b := range blankRunRe.Split(part, -1) {
			if b = strings.TrimSpace(b); b != "" {
				blocks = append(blocks, b)
			}
		}
	}
	return blocks
}

// parseBlocks returns the blocks that carry a usable URL under a
// recognized label. Blocks without a labelled URL are left to the inline
// pass.
func parseBlocks(text string) []block {
	var out []block
	for _, raw := range splitBlocks(text) {
		var b block
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			switch {
			case urlLabelRe.MatchString(line):
				v := urlLabelRe.FindStringSubmatch(line)[1]
				if u := firstURL(v); u != "" && b.url == "" {
					b.url = u
				} else if b.title == "" && u == "" {
					b.title = strings.TrimSpace(v)
				}
			case bracketLabelRe.MatchString(line):
				v := bracketLabelRe.FindStringSubmatch(line)[1]
				if u := firstURL(v); u != "" {
					if b.url == "" {
						b.url = u
					}
				} else if b.title == "" {
					b.title = strings.TrimSpace(v)
				}
			case titleLabelRe.MatchString(line):
				b.title = strings.TrimSpace(titleLabelRe.FindStringSubmatch(line)[1])
			case summaryLabelRe.MatchString(line):
				b.summary = strings.TrimSpace(summaryLabelRe.FindStringSubmatch(line)[1])
			case pipeLineRe.MatchString(line):
				if b.summary == "" {
					b.summary = pipeLineRe.FindStringSubmatch(line)[1]
				}
			case dashLineRe.MatchString(line):
				v := dashLineRe.FindStringSubmatch(line)[1]
				if u := firstURL(v); u != "" {
					if b.url == "" {
						b.url = u
					}
				} else if b.title == "" {
					b.title = strings.TrimSpace(v)
				}
			}
		}
		if b.url != "" {
			out = append(out, b)
		}
	}
	return out
}

// inlineURLs returns every valid, non-reserved URL in text in order.
func inlineURLs(text string) []string {
	var out []string
	for _, m := range urlRe.FindAllString(text, -1) {
		if u := cleanURL(m); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// firstURL returns the first valid, non-reserved URL in s.
func firstURL(s string) string {
	for _, m := range urlRe.FindAllString(s, -1) {
		if u := cleanURL(m); u != "" {
			return u
		}
	}
	return ""
}

const urlTrailing = ".,;:!?*_'\""

// MapURLs returns text with every URL-like span replaced by f(span). The
// rest of the text is left untouched.
func MapURLs(text string, f func(string) string) string {
	return urlRe.ReplaceAllStringFunc(text, f)
}

// cleanURL trims trailing punctuation and returns the URL, or "" when it is
// not an absolute http(s) URL or sits on a reserved example domain.
func cleanURL(raw string) string {
	u := strings.TrimRight(raw, urlTrailing)
	for strings.HasSuffix(u, ")") && strings.Count(u, "(") < strings.Count(u, ")") {
		u = strings.TrimRight(u[:len(u)-1], urlTrailing)
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if IsReservedHost(parsed.Hostname()) {
		return ""
	}
	return u
}

// IsReservedHost reports whether host belongs to a documentation domain
// reserved by RFC 2606 (example.com, example.org, example.net, *.example).
func IsReservedHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, d := range []string{"example.com", "example.org", "example.net"} {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return host == "example" || strings.HasSuffix(host, ".example")
}

func dedupeKey(u string) string {
	return strings.TrimRight(u, "/")
}

// DateFromURL returns the first YYYY-MM-DD in u, else the first plausible
// year, else "".
func DateFromURL(u string) string {
	if m := fullDateRe.FindString(u); m != "" {
		return m
	}
	if m := yearOnlyRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}

// titleFromURL humanizes the last path segment, falling back to the host.
func titleFromURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	seg := path.Base(strings.TrimRight(parsed.Path, "/"))
	seg = strings.TrimSuffix(seg, path.Ext(seg))
	if seg == "" || seg == "." || seg == "/" {
		return strings.TrimPrefix(parsed.Hostname(), "www.")
	}
	seg = strings.NewReplacer("-", " ", "_", " ", "+", " ").Replace(seg)
	if unesc, err := url.PathUnescape(seg); err == nil {
		seg = unesc
	}
	return strings.TrimSpace(seg)
}
