// Package render exports scripts for people: Markdown and HTML documents
// with a sources appendix, and text sanitized for Latin-1 PDF fonts.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// substitutions maps characters a core PDF font cannot draw to ASCII.
var substitutions = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201A", "'", "\u201B", "'",
	"\u201C", `"`, "\u201D", `"`, "\u201E", `"`,
	"\u2039", "<", "\u203A", ">",
	"\u2013", "-", "\u2014", "-", "\u2015", "-", "\u2212", "-",
	"\u00A0", " ", "\u202F", " ", "\u2009", " ", "\u200B", "",
	"\u2022", "-", "\u2023", "-", "\u25CF", "-",
	"\u2026", "...",
	"\u0153", "oe", "\u0152", "OE", "\u00E6", "ae", "\u00C6", "AE",
	"\u20AC", "EUR", "\u2122", "TM",
)

// Sanitize rewrites text so every rune fits in ISO-8859-1. Known
// typographic characters go through the substitution table; other runes
// are decomposed and kept by their Latin-1 base letter, or replaced by "?".
func Sanitize(text string) string {
	text = substitutions.Replace(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r <= unicode.MaxLatin1 {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(latin1Base(r))
	}
	return b.String()
}

// latin1Base returns the first Latin-1 rune of r's canonical decomposition,
// skipping combining marks.
func latin1Base(r rune) rune {
	for _, d := range norm.NFD.String(string(r)) {
		if unicode.Is(unicode.Mn, d) {
			continue
		}
		if d <= unicode.MaxLatin1 {
			return d
		}
		break
	}
	return '?'
}

// Latin1 sanitizes text and encodes it as ISO-8859-1 bytes, ready for a
// core PDF font.
func Latin1(text string) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(Sanitize(text)))
	if err != nil {
		return nil, fmt.Errorf("encoding latin-1: %w", err)
	}
	return out, nil
}
