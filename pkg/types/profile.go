// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"sort"
	"strings"
)

// CreatorProfile carries optional personalization for prompts. It is pure
// input: nothing in the pipeline mutates it.
type CreatorProfile struct {
	ChannelName string `json:"channel_name,omitempty" yaml:"channel_name,omitempty"`

	// AuthorName is the presenter's name as it should appear in the script.
	AuthorName string `json:"youtuber_name,omitempty" yaml:"youtuber_name,omitempty"`

	Style       string `json:"style,omitempty" yaml:"style,omitempty"`
	Tone        string `json:"tone,omitempty" yaml:"tone,omitempty"`
	Audience    string `json:"audience,omitempty" yaml:"audience,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// Custom holds free-form options forwarded verbatim to the prompt.
	Custom map[string]string `json:"custom_options,omitempty" yaml:"custom_options,omitempty"`
}

// IsZero reports whether the profile carries no guidance at all. A nil
// profile is zero.
func (p *CreatorProfile) IsZero() bool {
	if p == nil {
		return true
	}
	return p.ChannelName == "" && p.AuthorName == "" && p.Style == "" &&
		p.Tone == "" && p.Audience == "" && p.Language == "" &&
		p.ContentType == "" && len(p.Custom) == 0
}

// Author returns the author name or fallback when unset.
func (p *CreatorProfile) Author(fallback string) string {
	if p == nil || strings.TrimSpace(p.AuthorName) == "" {
		return fallback
	}
	return strings.TrimSpace(p.AuthorName)
}

// Channel returns the channel name or fallback when unset.
func (p *CreatorProfile) Channel(fallback string) string {
	if p == nil || strings.TrimSpace(p.ChannelName) == "" {
		return fallback
	}
	return strings.TrimSpace(p.ChannelName)
}

// CustomKeys returns the custom option keys in sorted order so prompts are
// deterministic.
func (p *CreatorProfile) CustomKeys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.Custom))
	for k := range p.Custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Describe renders the profile as a bulleted list for prompts, one line per
// set field, custom options last in key order. A zero profile renders "".
func (p *CreatorProfile) Describe() string {
	if p.IsZero() {
		return ""
	}
	var b strings.Builder
	line := func(label, v string) {
		if v = strings.TrimSpace(v); v != "" {
			fmt.Fprintf(&b, "- %s : %s\n", label, v)
		}
	}
	line("Chaîne", p.ChannelName)
	line("Auteur", p.AuthorName)
	line("Style", p.Style)
	line("Ton", p.Tone)
	line("Public", p.Audience)
	line("Langue", p.Language)
	line("Type de contenu", p.ContentType)
	for _, k := range p.CustomKeys() {
		line(k, p.Custom[k])
	}
	return b.String()
}
