// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FactualAccuracy grades how verifiable a topic's claims are.
type FactualAccuracy string

const (
	AccuracyHigh   FactualAccuracy = "high"
	AccuracyMedium FactualAccuracy = "medium"
	AccuracyLow    FactualAccuracy = "low"
)

// Valid reports whether a is one of the known accuracy grades.
func (a FactualAccuracy) Valid() bool {
	switch a {
	case AccuracyHigh, AccuracyMedium, AccuracyLow:
		return true
	}
	return false
}

// Timeliness describes how tied a topic is to current events.
type Timeliness string

const (
	TimelinessVeryRecent Timeliness = "very_recent"
	TimelinessRecent     Timeliness = "recent"
	TimelinessEvergreen  Timeliness = "evergreen"
)

// Valid reports whether t is one of the known timeliness values.
func (t Timeliness) Valid() bool {
	switch t {
	case TimelinessVeryRecent, TimelinessRecent, TimelinessEvergreen:
		return true
	}
	return false
}

// Topic is a structured video-script idea. Every field is populated before a
// Topic leaves the topic generator; list fields are empty slices, never nil.
type Topic struct {
	// Title is the working title of the video.
	Title string `json:"title" yaml:"title"`

	// Angle is the editorial angle taken on the theme.
	Angle string `json:"angle" yaml:"angle"`

	// WhyInteresting explains the hook for the audience.
	WhyInteresting string `json:"why_interesting" yaml:"why_interesting"`

	// KeyPoints lists the beats the script should cover.
	KeyPoints []string `json:"key_points" yaml:"key_points"`

	// TargetAudience describes who the video is for.
	TargetAudience string `json:"target_audience" yaml:"target_audience"`

	// EstimatedDuration is a free-form duration such as "10-15 minutes".
	EstimatedDuration string `json:"estimated_duration" yaml:"estimated_duration"`

	// PotentialGuests lists people worth interviewing.
	PotentialGuests []string `json:"potential_guests" yaml:"potential_guests"`

	FactualAccuracy FactualAccuracy `json:"factual_accuracy" yaml:"factual_accuracy"`
	Timeliness      Timeliness      `json:"timeliness" yaml:"timeliness"`

	// Sources lists references suggested by the model (names or URLs).
	Sources []string `json:"sources" yaml:"sources"`
}
