// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/pkg/types"
)

// --- topics ---

var topicsCmd = &cobra.Command{
	Use:   "topics [theme]",
	Short: "Generate structured video ideas for a theme",
	Long: `Topics asks the configured models for video ideas on a theme and
returns them as structured records (title, angle, key points, audience,
duration). With no model available it returns curated defaults.`,
	RunE: runTopics,
}

func runTopics(cmd *cobra.Command, args []string) error {
	theme := strings.Join(args, " ")
	count, _ := cmd.Flags().GetInt("count")
	format, _ := cmd.Flags().GetString("format")

	profile, err := profileFromFlags(cmd)
	if err != nil {
		return err
	}
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}

	topics := e.GenerateTopics(context.Background(), theme, count, profile)
	if err := writeOutput(os.Stdout, format, topics, func(w io.Writer) error {
		for i, t := range topics {
			fmt.Fprintf(w, "%d. %s\n", i+1, t.Title)
			if t.Angle != "" {
				fmt.Fprintf(w, "   Angle : %s\n", t.Angle)
			}
			for _, p := range t.KeyPoints {
				fmt.Fprintf(w, "   - %s\n", p)
			}
			if t.EstimatedDuration != "" {
				fmt.Fprintf(w, "   Durée : %s\n", t.EstimatedDuration)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return saveRun(cmd, archive.KindTopics, theme, false, topics)
}

// --- research ---

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "Gather background research on a topic",
	Long: `Research queries the web-search adapter, falls back to model synthesis,
and finally to a placeholder digest marked as simulated. The origin of the
result is reported on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	format, _ := cmd.Flags().GetString("format")

	e, err := newEngine(cmd)
	if err != nil {
		return err
	}

	bundle := e.FetchResearch(context.Background(), topic, maxResults)
	fmt.Fprintf(os.Stderr, "Research from %s (%s)\n", bundle.Provider, bundle.Origin)
	if err := writeOutput(os.Stdout, format, bundle, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, bundle.RawText)
		return err
	}); err != nil {
		return err
	}
	return saveRun(cmd, archive.KindResearch, topic, bundle.Origin == types.OriginStub, bundle)
}

// --- script ---

var scriptCmd = &cobra.Command{
	Use:   "script [topic]",
	Short: "Write a sectioned narration script",
	Long: `Script writes a narration script with [HOOK], [INTRODUCTION], numbered
sections and [CONCLUSION]. Research is read from --research, or fetched
when none is given. If the primary model fails its health check, a
deterministic scaffold is returned instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScript,
}

func runScript(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	format, _ := cmd.Flags().GetString("format")

	var research string
	if path, _ := cmd.Flags().GetString("research"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading research: %w", err)
		}
		research = string(data)
	}

	profile, err := profileFromFlags(cmd)
	if err != nil {
		return err
	}
	e, err := newEngine(cmd)
	if err != nil {
		return err
	}

	draft := e.GenerateScript(context.Background(), topic, research, profile)
	if draft.Fallback {
		fmt.Fprintln(os.Stderr, "No model produced a script; returning the scaffold.")
	}
	if err := writeOutput(os.Stdout, format, draft, func(w io.Writer) error {
		fmt.Fprintln(w, draft.Text)
		fmt.Fprintf(w, "\n(%s, %d mots, %s)\n", draft.ReadingTime.Text, draft.WordCount, draft.Provider)
		if len(draft.Sources) > 0 {
			fmt.Fprintln(w, "\nSources :")
			for i, s := range draft.Sources {
				note := ""
				if s.Simulated {
					note = " (simulé)"
				}
				fmt.Fprintf(w, "%d. %s%s\n", i+1, s.URL, note)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return saveRun(cmd, archive.KindScript, topic, draft.Fallback, draft)
}

func init() {
	topicsCmd.Flags().Int("count", 5, "number of ideas (1-20)")
	addProfileFlags(topicsCmd)
	addRunFlags(topicsCmd)

	researchCmd.Flags().Int("max-results", 5, "maximum search results")
	addRunFlags(researchCmd)

	scriptCmd.Flags().String("research", "", "file with research notes (fetched when empty)")
	addProfileFlags(scriptCmd)
	addRunFlags(scriptCmd)

	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(scriptCmd)
}
