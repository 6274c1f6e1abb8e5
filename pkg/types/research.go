// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResearchOrigin records which stage of the research chain produced a bundle.
type ResearchOrigin string

const (
	OriginSearch ResearchOrigin = "search"
	OriginLLM    ResearchOrigin = "llm"
	OriginStub   ResearchOrigin = "stub"
)

// ResearchBundle is the opaque text payload handed from research to script
// generation. RawText is non-empty whenever Origin is not OriginStub.
type ResearchBundle struct {
	RawText  string         `json:"raw_text" yaml:"raw_text"`
	Provider string         `json:"provider" yaml:"provider"`
	Origin   ResearchOrigin `json:"origin" yaml:"origin"`
}

// IsEmpty reports whether the bundle carries no text.
func (b ResearchBundle) IsEmpty() bool {
	return b.RawText == ""
}
