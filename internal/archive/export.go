package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is a run with its payload decoded for export.
type ExportEntry struct {
	ID        string `json:"id" yaml:"id"`
	Kind      Kind   `json:"kind" yaml:"kind"`
	Subject   string `json:"subject" yaml:"subject"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Fallback  bool   `json:"fallback" yaml:"fallback"`
	Payload   any    `json:"payload" yaml:"payload"`
}

// ExportYAML writes the runs selected by opts to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts ListOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the runs selected by opts to w as an indented JSON
// array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts ListOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportEntries(ctx context.Context, opts ListOptions) ([]ExportEntry, error) {
	if opts.Limit == 0 {
		opts.Limit = -1
	}
	runs, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(runs))
	for i, r := range runs {
		var payload any
		if err := r.Decode(&payload); err != nil {
			return nil, err
		}
		entries[i] = ExportEntry{
			ID:        r.ID,
			Kind:      r.Kind,
			Subject:   r.Subject,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			Fallback:  r.Fallback,
			Payload:   payload,
		}
	}
	return entries, nil
}
