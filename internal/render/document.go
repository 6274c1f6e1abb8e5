// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/pdiddy/script-engine/pkg/types"
)

// Options controls document export.
type Options struct {
	// Title is the document heading. Empty means "Script".
	Title string

	// Sanitize passes the result through Sanitize.
	Sanitize bool
}

func (o Options) title() string {
	if t := strings.TrimSpace(o.Title); t != "" {
		return t
	}
	return "Script"
}

// Markdown renders a script and its sources as a Markdown document: a
// title, a reading-time line, one level-two heading per section, and a
// numbered sources appendix.
func Markdown(draft types.ScriptDraft, sources []types.Source, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.title())
	fmt.Fprintf(&b, "_Durée estimée : %s (%s), %d mots_\n\n", draft.ReadingTime.Formatted, draft.ReadingTime.Text, draft.WordCount)

	for _, s := range draft.Sections {
		if s.Heading != "" {
			fmt.Fprintf(&b, "## %s\n\n", s.Heading)
		}
		if body := strings.TrimSpace(s.Body); body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}

	if len(sources) > 0 {
		b.WriteString("## Sources\n\n")
		for i, s := range sources {
			fmt.Fprintf(&b, "%d. %s\n", i+1, sourceLine(s))
		}
	}

	out := strings.TrimRight(b.String(), "\n") + "\n"
	if opts.Sanitize {
		out = Sanitize(out)
	}
	return out
}

func sourceLine(s types.Source) string {
	title := s.Title
	if title == "" {
		title = s.URL
	}
	line := fmt.Sprintf("[%s](%s) : %s, fiabilité %s", title, s.URL, s.Type, s.Reliability)
	if s.Date != "" {
		line += ", " + s.Date
	}
	if s.Simulated {
		line += " (référence simulée)"
	}
	return line
}

// HTML renders the Markdown document to an HTML fragment.
func HTML(draft types.ScriptDraft, sources []types.Source, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(draft, sources, opts)), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}
