// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/academic-mcp/internal/aggregator"
	"github.com/pdiddy/academic-mcp/internal/sources"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search academic databases for papers",
	Long: `Search queries OpenAlex (with DBLP and Semantic Scholar fallback) for
papers matching the given text. Use --source to query one backend
directly. Results print as a table by default; --format json and
--format csl emit machine-readable output, and --save writes the result
list to a YAML references file for later use with bib --from-file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("source", "", "query a single backend (openalex, dblp, semantic_scholar, arxiv, crossref)")
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
	searchCmd.Flags().Int("offset", 0, "pagination offset")
	searchCmd.Flags().String("sort", "relevance", "sort order: relevance, publication_date, or citation_count")
	searchCmd.Flags().Int("year-from", 0, "only papers published in or after this year")
	searchCmd.Flags().Int("year-to", 0, "only papers published in or before this year")
	searchCmd.Flags().String("venue", "", "filter by journal or conference name")
	searchCmd.Flags().String("format", "table", "output format: table, json, or csl")
	searchCmd.Flags().String("save", "", "write the results to a YAML references file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	sourceFlag, _ := cmd.Flags().GetString("source")
	source, err := parseSource(sourceFlag)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "json", "csl":
	default:
		return fmt.Errorf("unknown format %q (valid: table, json, csl)", format)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	sortOrder, _ := cmd.Flags().GetString("sort")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	venue, _ := cmd.Flags().GetString("venue")

	cfg := buildConfig()
	agg := aggregator.New(cfg, newLogger(cfg))
	defer agg.Close()

	query := strings.Join(args, " ")
	result, err := agg.Search(context.Background(), source, sources.Query{
		Text:     query,
		Limit:    limit,
		Offset:   offset,
		Sort:     sortOrder,
		YearFrom: yearFrom,
		YearTo:   yearTo,
		Venue:    venue,
	})
	if err != nil {
		return err
	}

	switch format {
	case "json":
		if err := aggregator.FormatJSON(result, os.Stdout); err != nil {
			return err
		}
	case "csl":
		if err := aggregator.FormatCSL(result.Papers, os.Stdout); err != nil {
			return err
		}
	default:
		aggregator.FormatTable(result, os.Stdout)
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := aggregator.WriteRefsFile(save, query, result.Papers); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d reference(s) to %s\n", len(result.Papers), save)
	}
	return nil
}
