package script

import (
	"regexp"
	"strings"

	"github.com/pdiddy/script-engine/pkg/types"
)

// Marker headings every returned script carries.
const (
	HeadingHook         = "HOOK"
	HeadingIntroduction = "INTRODUCTION"
	HeadingConclusion   = "CONCLUSION"
)

// markerRe matches a [HEADING] at the start of a line. The heading starts
// with an upper-case letter so inline citations like [1] are not markers.
var markerRe = regexp.MustCompile(`(?m)^[ \t]*\[([A-ZÀ-Ý][^\]\n]{0,48})\][ \t]*`)

// ParseSections splits text on [HEADING] markers. Text before the first
// marker becomes a section with an empty heading. A text without markers
// yields a single unlabeled section; an empty text yields none.
func ParseSections(text string) []types.Section {
	locs := markerRe.FindAllStringSubmatchIndex(text, -1)
	var out []types.Section

	start := 0
	if len(locs) > 0 {
		start = locs[0][0]
	} else {
		start = len(text)
	}
	if pre := strings.TrimSpace(text[:start]); pre != "" {
		out = append(out, types.Section{Body: pre})
	}

	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, types.Section{
			Heading: strings.TrimSpace(text[loc[2]:loc[3]]),
			Body:    strings.TrimSpace(text[loc[1]:end]),
		})
	}
	return out
}

// RenderSections joins sections back into marked-up text.
func RenderSections(sections []types.Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if s.Heading != "" {
			b.WriteString("[" + s.Heading + "]\n")
		}
		b.WriteString(s.Body)
	}
	return b.String()
}

func headingIs(s types.Section, name string) bool {
	return strings.EqualFold(strings.TrimSpace(s.Heading), name)
}

func indexOf(sections []types.Section, name string) int {
	for i, s := range sections {
		if headingIs(s, name) {
			return i
		}
	}
	return -1
}

// EnsureMarkers guarantees text carries [HOOK], [INTRODUCTION] and
// [CONCLUSION]. Text before an existing [HOOK] is model chatter and is
// dropped; without a [HOOK], that leading text becomes the hook. Missing
// sections are filled with short lines built from b and marker headings in
// another case are rewritten upper-case. Text that already starts with
// [HOOK] and has all three markers is returned unchanged.
func EnsureMarkers(text string, b Brief) string {
	sections := ParseSections(text)
	changed := false

	for i := range sections {
		for _, name := range []string{HeadingHook, HeadingIntroduction, HeadingConclusion} {
			if headingIs(sections[i], name) && sections[i].Heading != name {
				sections[i].Heading = name
				changed = true
			}
		}
	}

	if len(sections) > 0 && sections[0].Heading == "" {
		if indexOf(sections, HeadingHook) >= 0 {
			sections = sections[1:]
		} else {
			sections[0].Heading = HeadingHook
		}
		changed = true
	}
	if indexOf(sections, HeadingHook) < 0 {
		sections = append([]types.Section{{Heading: HeadingHook, Body: hookLine(b)}}, sections...)
		changed = true
	}
	if indexOf(sections, HeadingIntroduction) < 0 {
		at := indexOf(sections, HeadingHook) + 1
		intro := types.Section{Heading: HeadingIntroduction, Body: introLine(b)}
		sections = append(sections[:at], append([]types.Section{intro}, sections[at:]...)...)
		changed = true
	}
	if indexOf(sections, HeadingConclusion) < 0 {
		sections = append(sections, types.Section{Heading: HeadingConclusion, Body: conclusionLine(b)})
		changed = true
	}

	if !changed {
		return text
	}
	return RenderSections(sections)
}
