// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/academic-mcp/internal/aggregator"
)

var bibCmd = &cobra.Command{
	Use:   "bib [ids...]",
	Short: "Export BibTeX entries for papers",
	Long: `Bib exports BibTeX for the given identifiers, preferring DBLP's
hand-curated entries and synthesizing entries from metadata everywhere
else. Identifiers come from the arguments, from a YAML references file
written by search --save, or both.`,
	RunE: runBib,
}

func init() {
	bibCmd.Flags().String("from-file", "", "read identifiers from a YAML references file")
	bibCmd.Flags().String("output", "", "write entries to this .bib file instead of stdout")
	bibCmd.Flags().Bool("no-dblp", false, "skip DBLP and always synthesize from metadata")

	rootCmd.AddCommand(bibCmd)
}

func runBib(cmd *cobra.Command, args []string) error {
	ids := args
	if fromFile, _ := cmd.Flags().GetString("from-file"); fromFile != "" {
		refs, err := aggregator.ReadRefsFile(fromFile)
		if err != nil {
			return err
		}
		ids = append(ids, refs.IDs()...)
	}
	if len(ids) == 0 {
		return fmt.Errorf("provide paper identifiers or --from-file")
	}

	cfg := buildConfig()
	agg := aggregator.New(cfg, newLogger(cfg))
	defer agg.Close()

	noDBLP, _ := cmd.Flags().GetBool("no-dblp")
	batch, err := agg.GetBibTeXBatch(context.Background(), ids, !noDBLP)
	if err != nil {
		return err
	}

	out := strings.Join(batch.Entries, "\n\n")
	if out != "" {
		out += "\n"
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d entr%s to %s\n",
			len(batch.Entries), plural(len(batch.Entries), "y", "ies"), output)
	} else {
		fmt.Print(out)
	}

	if len(batch.Failed) > 0 {
		return fmt.Errorf("no BibTeX for: %s", strings.Join(batch.Failed, ", "))
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
