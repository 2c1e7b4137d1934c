// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/academic-mcp/internal/aggregator"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

var citationsCmd = &cobra.Command{
	Use:   "citations [id]",
	Short: "List papers citing a paper",
	Long: `Citations lists papers that cite the given paper, using OpenAlex's
citation index. When the index has no listing the command still reports
the paper's citation count.`,
	Args: cobra.ExactArgs(1),
	RunE: runCitations,
}

func init() {
	citationsCmd.Flags().Int("limit", 20, "maximum citing papers to return")
	citationsCmd.Flags().Int("offset", 0, "pagination offset")
	citationsCmd.Flags().Bool("json", false, "output the listing as JSON")

	rootCmd.AddCommand(citationsCmd)
}

func runCitations(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	cfg := buildConfig()
	agg := aggregator.New(cfg, newLogger(cfg))
	defer agg.Close()

	result, err := agg.GetCitations(context.Background(), args[0], limit, offset)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return aggregator.FormatJSON(result, os.Stdout)
	}

	// The table formatter works on search results; a citation listing
	// is the same shape.
	aggregator.FormatTable(&types.SearchResult{
		TotalResults:  result.CitationCount,
		ReturnedCount: len(result.CitingPapers),
		Offset:        offset,
		HasMore:       result.HasMore,
		Papers:        result.CitingPapers,
		Query:         "citations of " + result.PaperID,
		Source:        types.SourceOpenAlex,
	}, os.Stdout)
	return nil
}
