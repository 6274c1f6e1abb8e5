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
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived runs (list, show, export, delete)",
	Long: `History manages the local SQLite archive of generation runs saved with
--save. Runs are stored as opaque JSON payloads keyed by a UUID; any
unambiguous ID prefix is accepted.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := listOptsFromFlags(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		store, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(context.Background(), opts)
		if err != nil {
			return err
		}
		return writeOutput(os.Stdout, format, runs, func(w io.Writer) error {
			return formatRuns(w, runs)
		})
	},
}

func formatRuns(w io.Writer, runs []archive.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs archived.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-8s  %-16s  %-8s  %s\n", "ID", "Kind", "Created", "Fallback", "Subject")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range runs {
		subject := r.Subject
		if len([]rune(subject)) > 40 {
			subject = string([]rune(subject)[:37]) + "..."
		}
		fallback := ""
		if r.Fallback {
			fallback = "yes"
		}
		fmt.Fprintf(w, "%-8s  %-8s  %-16s  %-8s  %s\n",
			r.ID[:8], r.Kind, r.CreatedAt.Local().Format("2006-01-02 15:04"), fallback, subject)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the payload of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		var payload any
		if err := run.Decode(&payload); err != nil {
			return err
		}
		if strings.ToLower(format) == formatText || format == "" {
			format = formatYAML
		}
		fmt.Fprintf(os.Stderr, "%s %s (%s) %s\n", run.Kind, run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.Subject)
		return writeOutput(os.Stdout, format, payload, nil)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived runs to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := listOptsFromFlags(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		store, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		switch format {
		case formatYAML, "":
			err = store.ExportYAML(context.Background(), w, opts)
		case formatJSON:
			err = store.ExportJSON(context.Background(), w, opts)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintln(os.Stderr, "Exported to", output)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		if err := store.Delete(context.Background(), run.ID); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Deleted", run.ID)
		return nil
	},
}

func listOptsFromFlags(cmd *cobra.Command) (archive.ListOptions, error) {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := archive.ListOptions{Kind: archive.Kind(kind), Limit: limit}
	if kind != "" && !opts.Kind.Valid() {
		return opts, fmt.Errorf("unknown kind %q: use topics, research, script or sources", kind)
	}
	return opts, nil
}

func init() {
	historyListCmd.Flags().String("kind", "", "filter by kind: topics, research, script, sources")
	historyListCmd.Flags().Int("limit", 0, "maximum runs (0 = default, negative = all)")
	historyListCmd.Flags().String("format", formatText, "output format: text, json or yaml")

	historyShowCmd.Flags().String("format", formatYAML, "output format: json or yaml")

	historyExportCmd.Flags().String("kind", "", "filter by kind for partial export")
	historyExportCmd.Flags().Int("limit", 0, "maximum runs to export (0 = all)")
	historyExportCmd.Flags().String("format", formatYAML, "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	rootCmd.AddCommand(historyCmd)
}
