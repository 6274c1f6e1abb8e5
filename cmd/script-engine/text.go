package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/internal/readtime"
	"github.com/pdiddy/script-engine/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [text | -]",
	Short: "Extract and classify sources from free text",
	Long: `Sources finds URLs in research text (structured "Source:/Titre:/Résumé:"
blocks first, inline URLs otherwise), classifies each by domain and
attaches a reliability rating. When the text holds no URL, placeholder
entries marked as simulated are returned.`,
	RunE: runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	found := sources.Extract(text)
	if err := writeOutput(os.Stdout, format, found, func(w io.Writer) error {
		if len(found) == 0 {
			fmt.Fprintln(w, "No sources found.")
			return nil
		}
		fmt.Fprintf(w, "%-3s  %-12s  %-8s  %-50s  %s\n", "#", "Type", "Fiab.", "URL", "Titre")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for i, s := range found {
			url := s.URL
			if len(url) > 50 {
				url = url[:47] + "..."
			}
			title := s.Title
			if s.Simulated {
				title += " (simulé)"
			}
			fmt.Fprintf(w, "%-3d  %-12s  %-8s  %-50s  %s\n", i+1, s.Type, s.Reliability, url, title)
		}
		return nil
	}); err != nil {
		return err
	}
	return saveRun(cmd, archive.KindSources, firstLine(text), len(found) > 0 && found[0].Simulated, found)
}

var readtimeCmd = &cobra.Command{
	Use:   "readtime [text | -]",
	Short: "Estimate narration time of a script",
	Long: `Readtime counts words outside [SECTION] markers and estimates the
narration time at 130 words per minute.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputText(cmd, args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		rt := readtime.Estimate(text)
		return writeOutput(os.Stdout, format, rt, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s (%s), %d mots\n", rt.Formatted, rt.Text, rt.WordCount)
			return err
		})
	},
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len([]rune(text)) > 80 {
		text = string([]rune(text)[:80])
	}
	return text
}

func init() {
	sourcesCmd.Flags().String("file", "", "read text from a file")
	sourcesCmd.Flags().String("format", formatText, "output format: text, json or yaml")
	sourcesCmd.Flags().Bool("save", false, "archive the result")

	readtimeCmd.Flags().String("file", "", "read text from a file")
	readtimeCmd.Flags().String("format", formatText, "output format: text, json or yaml")

	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(readtimeCmd)
}
