package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/internal/dispatch"
	"github.com/pdiddy/script-engine/internal/engine"
	"github.com/pdiddy/script-engine/pkg/types"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// writeOutput encodes v as JSON or YAML, or calls text for the text format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch strings.ToLower(format) {
	case formatText, "":
		return text(w)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q: use text, json or yaml", format)
	}
}

// newEngine builds the pipeline from the resolved configuration. With
// --trace, adapter attempts are echoed to stderr.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	var opts []engine.Option
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		opts = append(opts, engine.WithTrace(printTrace(os.Stderr)))
	}
	e, err := engine.New(cfg, log, opts...)
	if err != nil {
		return nil, err
	}
	for _, a := range e.Adapters() {
		if !a.Available {
			log.WithField("role", a.Role).Debug("adapter not configured")
		}
	}
	return e, nil
}

func printTrace(w io.Writer) dispatch.TraceSink {
	return func(ev dispatch.TraceEvent) {
		switch ev.Event {
		case dispatch.EventStarted:
			fmt.Fprintf(w, "→ [%s] %s\n", ev.Kind, ev.Adapter)
		case dispatch.EventSucceeded:
			fmt.Fprintf(w, "✓ [%s] %s (%d attempt(s), %d ms)\n", ev.Kind, ev.Adapter, ev.Attempts, ev.LatencyMS)
		case dispatch.EventFailed:
			fmt.Fprintf(w, "✗ [%s] %s: %s\n", ev.Kind, ev.Adapter, ev.ErrorKind)
		case dispatch.EventValidationFailed:
			fmt.Fprintf(w, "✗ [%s] %s: %s\n", ev.Kind, ev.Adapter, ev.Reason)
		}
	}
}

// profileFromFlags merges --profile (a YAML file) with the individual
// profile flags. It returns nil when nothing was given.
func profileFromFlags(cmd *cobra.Command) (*types.CreatorProfile, error) {
	var p types.CreatorProfile

	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading profile: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing profile %s: %w", path, err)
		}
	}

	for flag, dst := range map[string]*string{
		"channel":  &p.ChannelName,
		"author":   &p.AuthorName,
		"style":    &p.Style,
		"tone":     &p.Tone,
		"audience": &p.Audience,
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*dst = v
		}
	}

	if p.IsZero() {
		return nil, nil
	}
	return &p, nil
}

func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("profile", "", "creator profile YAML file")
	cmd.Flags().String("channel", "", "channel name")
	cmd.Flags().String("author", "", "presenter name")
	cmd.Flags().String("style", "", "narration style")
	cmd.Flags().String("tone", "", "tone of voice")
	cmd.Flags().String("audience", "", "target audience")
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", formatText, "output format: text, json or yaml")
	cmd.Flags().Bool("save", false, "archive the result")
	cmd.Flags().Bool("trace", false, "print adapter attempts to stderr")
}

// saveRun archives payload when --save is set and reports the run ID on
// stderr.
func saveRun(cmd *cobra.Command, kind archive.Kind, subject string, fallback bool, payload any) error {
	if save, _ := cmd.Flags().GetBool("save"); !save {
		return nil
	}
	store, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Save(context.Background(), kind, subject, fallback, payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved run %s\n", run.ID)
	if base := strings.TrimRight(cfg.FrontendBaseURL, "/"); base != "" {
		fmt.Fprintf(os.Stderr, "  %s/runs/%s\n", base, run.ID)
	}
	return nil
}

// inputText returns the positional arguments joined, the contents of
// --file, or stdin when the argument is "-".
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}
