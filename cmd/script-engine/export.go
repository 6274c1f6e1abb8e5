package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/internal/render"
	"github.com/pdiddy/script-engine/internal/sources"
	"github.com/pdiddy/script-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <script-run-id>",
	Short: "Render an archived script as Markdown or HTML",
	Long: `Export renders an archived script run as a document with one heading per
section and a numbered sources appendix. Sources are the ones saved with
the script (extracted from the research it was written from), those of the
research run given with --research, or failing both, those found in the
script text itself.

--sanitize rewrites typographic characters outside Latin-1 (curly quotes,
dashes, ligatures, the euro sign) so the result can be fed to renderers
limited to that character set.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	researchID, _ := cmd.Flags().GetString("research")
	output, _ := cmd.Flags().GetString("output")
	sanitize, _ := cmd.Flags().GetBool("sanitize")

	store, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	run, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if run.Kind != archive.KindScript {
		return fmt.Errorf("run %s is a %s run, not a script", run.ID, run.Kind)
	}
	var draft types.ScriptDraft
	if err := run.Decode(&draft); err != nil {
		return err
	}

	srcs := draft.Sources
	switch {
	case researchID != "":
		rr, err := store.Get(ctx, researchID)
		if err != nil {
			return fmt.Errorf("research run: %w", err)
		}
		var bundle types.ResearchBundle
		if err := rr.Decode(&bundle); err != nil {
			return err
		}
		srcs = sources.Extract(bundle.RawText)
	case len(srcs) == 0:
		srcs = sources.Extract(draft.Text)
	}

	opts := render.Options{Title: run.Subject, Sanitize: sanitize}

	var doc string
	switch format {
	case "markdown", "md", "":
		doc = render.Markdown(draft, srcs, opts)
	case "html":
		doc, err = render.HTML(draft, srcs, opts)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use markdown or html", format)
	}

	if output == "" {
		_, err = fmt.Fprint(os.Stdout, doc)
		return err
	}

	data := []byte(doc)
	if latin1, _ := cmd.Flags().GetBool("latin1"); latin1 {
		if data, err = render.Latin1(doc); err != nil {
			return err
		}
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintln(os.Stderr, "Exported to", output)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "markdown", "document format: markdown or html")
	exportCmd.Flags().String("research", "", "research run ID to take sources from")
	exportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	exportCmd.Flags().Bool("sanitize", false, "replace characters outside Latin-1")
	exportCmd.Flags().Bool("latin1", false, "encode the output file as ISO-8859-1 (implies --sanitize)")

	rootCmd.AddCommand(exportCmd)
}
