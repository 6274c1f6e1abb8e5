// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceType is the discriminator of a Source record. Values are the French
// labels shown to end users.
type SourceType string

const (
	SourceAcademic     SourceType = "académique"
	SourcePress        SourceType = "presse"
	SourceEncyclopedia SourceType = "encyclopédie"
	SourceArticle      SourceType = "article"
	SourceMagazine     SourceType = "magazine"
	SourceBlog         SourceType = "blog"
	SourceWeb          SourceType = "web"
	SourceUnclassified SourceType = "non-classées"
)

// Reliability grades how much a source can be trusted.
type Reliability string

const (
	ReliabilityHigh   Reliability = "élevée"
	ReliabilityGood   Reliability = "bonne"
	ReliabilityMedium Reliability = "moyenne"
)

// Source is a URL-bearing reference mined from research text. Type and
// Reliability are always set. URL is a valid absolute URL unless Simulated
// is true.
type Source struct {
	URL         string      `json:"url" yaml:"url"`
	Title       string      `json:"title" yaml:"title"`
	Type        SourceType  `json:"type" yaml:"type"`
	Reliability Reliability `json:"reliability" yaml:"reliability"`
	Date        string      `json:"date,omitempty" yaml:"date,omitempty"`
	Summary     string      `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Simulated marks records synthesized when the text held no usable URL.
	Simulated bool `json:"simulated" yaml:"simulated"`
}
