// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReadingTime is the narration time estimate for a script.
type ReadingTime struct {
	Minutes      int    `json:"minutes" yaml:"minutes"`
	Seconds      int    `json:"seconds" yaml:"seconds"`
	TotalSeconds int    `json:"total_seconds" yaml:"total_seconds"`
	WordCount    int    `json:"word_count" yaml:"word_count"`
	Formatted    string `json:"formatted" yaml:"formatted"`
	Text         string `json:"text" yaml:"text"`
}

// Section is one [HEADING]-delimited block of a script.
type Section struct {
	Heading string `json:"heading" yaml:"heading"`
	Body    string `json:"body" yaml:"body"`
}

// ScriptDraft is a sectioned long-form narration with its reading time.
// Sections always holds at least one entry.
type ScriptDraft struct {
	Text        string      `json:"text" yaml:"text"`
	Sections    []Section   `json:"sections" yaml:"sections"`
	WordCount   int         `json:"word_count" yaml:"word_count"`
	ReadingTime ReadingTime `json:"reading_time" yaml:"reading_time"`

	// Provider names the adapter that produced the text, or "scaffold".
	Provider string `json:"provider" yaml:"provider"`

	// Fallback is true when the deterministic scaffold was returned.
	Fallback bool `json:"fallback" yaml:"fallback"`

	// Research is the research text the script was written from, whether
	// supplied by the caller or fetched during generation.
	Research string `json:"research,omitempty" yaml:"research,omitempty"`

	// Sources are extracted from Research.
	Sources []Source `json:"sources" yaml:"sources"`
}
