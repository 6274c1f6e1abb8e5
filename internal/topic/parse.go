// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/script-engine/pkg/types"
)

var (
	// ErrNoJSON means no JSON object could be decoded from the response.
	ErrNoJSON = errors.New("no JSON object in response")

	// ErrNoTopics means the object decoded but held no titled topic.
	ErrNoTopics = errors.New("no titled topic in response")
)

type envelope struct {
	Topics []map[string]any `json:"topics"`
}

// Parse decodes a model response into topics. It first parses the whole
// text strictly, then retries on the substring between the first '{' and
// the last '}'. Returned topics are not normalized.
func Parse(text string) ([]types.Topic, error) {
	topics, err := ParseStrict(text)
	if err == nil {
		return topics, nil
	}
	salvaged, serr := ParseSalvage(text)
	if serr == nil {
		return salvaged, nil
	}
	return nil, fmt.Errorf("strict: %v; salvage: %w", err, serr)
}

// ParseStrict decodes text as a single {"topics": [...]} object.
func ParseStrict(text string) ([]types.Topic, error) {
	var env envelope
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return fromEnvelope(env)
}

// ParseSalvage decodes the substring between the first '{' and the last
// '}' of text.
func ParseSalvage(text string) ([]types.Topic, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}
	return ParseStrict(text[start : end+1])
}

func fromEnvelope(env envelope) ([]types.Topic, error) {
	var out []types.Topic
	for _, raw := range env.Topics {
		t := fromMap(raw)
		if t.Title == "" {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrNoTopics
	}
	return out, nil
}

// fromMap coerces one loosely-typed topic object. Lists may arrive as a
// string, an array of strings, or an array of objects.
func fromMap(m map[string]any) types.Topic {
	return types.Topic{
		Title:             str(m["title"]),
		Angle:             str(m["angle"]),
		WhyInteresting:    str(m["why_interesting"]),
		KeyPoints:         list(m["key_points"]),
		TargetAudience:    str(m["target_audience"]),
		EstimatedDuration: duration(m["estimated_duration"]),
		PotentialGuests:   list(m["potential_guests"]),
		FactualAccuracy:   accuracy(str(m["factual_accuracy"])),
		Timeliness:        timeliness(str(m["timeliness"])),
		Sources:           list(m["sources"]),
	}
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		for _, k := range []string{"name", "title", "url", "text"} {
			if s := str(x[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

func list(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case nil:
		return nil
	}
	if s := str(v); s != "" {
		return []string{s}
	}
	return nil
}

func duration(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64) + " minutes"
	}
	return str(v)
}

func accuracy(s string) types.FactualAccuracy {
	switch strings.ToLower(s) {
	case "élevée", "elevee", "haute":
		return types.AccuracyHigh
	case "moyenne":
		return types.AccuracyMedium
	case "faible", "basse":
		return types.AccuracyLow
	}
	return types.FactualAccuracy(strings.ToLower(s))
}

func timeliness(s string) types.Timeliness {
	s = strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(s))
	switch s {
	case "très_récent", "tres_recent":
		return types.TimelinessVeryRecent
	case "récent":
		return types.TimelinessRecent
	case "intemporel":
		return types.TimelinessEvergreen
	}
	return types.Timeliness(s)
}
