package topic

import (
	"fmt"
	"strings"

	"github.com/pdiddy/script-engine/pkg/types"
)

// Defaults applied by Normalize to missing fields.
const (
	DefaultAngle          = "Analyse approfondie"
	DefaultAudience       = "Grand public"
	DefaultDuration       = "10-15 minutes"
	DefaultWhyInteresting = "Un sujet qui répond aux questions que se pose votre audience."
)

// DefaultKeyPoints is used when a topic arrives without key points.
var DefaultKeyPoints = []string{"Contexte", "Enjeux", "Perspectives"}

// Normalize fills every missing field of t with its fixed default so the
// topic is total. List fields are never nil. An empty title becomes a
// generic one built from theme.
func Normalize(t types.Topic, theme string) types.Topic {
	if strings.TrimSpace(t.Title) == "" {
		t.Title = fmt.Sprintf("Tout comprendre sur %s", theme)
	}
	if t.Angle == "" {
		t.Angle = DefaultAngle
	}
	if t.WhyInteresting == "" {
		t.WhyInteresting = DefaultWhyInteresting
	}
	if len(t.KeyPoints) == 0 {
		t.KeyPoints = append([]string(nil), DefaultKeyPoints...)
	}
	if t.TargetAudience == "" {
		t.TargetAudience = DefaultAudience
	}
	if t.EstimatedDuration == "" {
		t.EstimatedDuration = DefaultDuration
	}
	if t.PotentialGuests == nil {
		t.PotentialGuests = []string{}
	}
	if t.Sources == nil {
		t.Sources = []string{}
	}
	if !t.FactualAccuracy.Valid() {
		t.FactualAccuracy = types.AccuracyMedium
	}
	if !t.Timeliness.Valid() {
		t.Timeliness = types.TimelinessRecent
	}
	return t
}

// StaticTopics returns the three generic framings used when every adapter
// has failed.
func StaticTopics(theme string) []types.Topic {
	return []types.Topic{
		{
			Title:          fmt.Sprintf("Ce que personne ne vous dit sur %s", theme),
			Angle:          "Révélations et angles morts",
			WhyInteresting: fmt.Sprintf("Les idées reçues sur %s cachent souvent l'essentiel.", theme),
			KeyPoints:      []string{"Idées reçues", "Ce que disent les faits", "Ce qu'il faut retenir"},
			Timeliness:     types.TimelinessEvergreen,
		},
		{
			Title:          fmt.Sprintf("Les 5 secrets de %s", theme),
			Angle:          "Liste pratique",
			WhyInteresting: "Un format court et concret, facile à retenir et à partager.",
			KeyPoints:      []string{"Secret 1 et 2", "Secret 3 et 4", "Le secret le plus important"},
			Timeliness:     types.TimelinessEvergreen,
		},
		{
			Title:             fmt.Sprintf("J'ai testé %s pendant 30 jours", theme),
			Angle:             "Expérience personnelle",
			WhyInteresting:    "Le récit à la première personne crée de l'attachement et de la confiance.",
			KeyPoints:         []string{"Le point de départ", "Les difficultés", "Le bilan après 30 jours"},
			EstimatedDuration: "15-20 minutes",
			Timeliness:        types.TimelinessRecent,
		},
	}
}
