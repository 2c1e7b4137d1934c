// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/academic-mcp/internal/aggregator"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

var paperCmd = &cobra.Command{
	Use:   "paper [id]",
	Short: "Look up one paper by identifier",
	Long: `Paper resolves an identifier (DOI, arXiv ID, OpenAlex work ID, DBLP
key, or Semantic Scholar hash) and prints the paper's metadata. The
backend is chosen from the identifier's shape, with fallbacks when the
preferred backend has no record.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaper,
}

func init() {
	paperCmd.Flags().Bool("json", false, "output the paper as JSON")

	rootCmd.AddCommand(paperCmd)
}

func runPaper(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	agg := aggregator.New(cfg, newLogger(cfg))
	defer agg.Close()

	paper, err := agg.GetPaper(context.Background(), args[0])
	if err != nil {
		return err
	}
	if paper == nil {
		return fmt.Errorf("paper not found: %s", args[0])
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return aggregator.FormatJSON(paper, os.Stdout)
	}
	printPaper(paper)
	return nil
}

func printPaper(p *types.Paper) {
	fmt.Printf("Title:     %s\n", p.Title)
	if len(p.Authors) > 0 {
		names := make([]string, len(p.Authors))
		for i, a := range p.Authors {
			names[i] = a.Name
		}
		fmt.Printf("Authors:   %s\n", strings.Join(names, ", "))
	}
	if p.Year != 0 {
		fmt.Printf("Year:      %d\n", p.Year)
	}
	if p.Venue != "" {
		fmt.Printf("Venue:     %s\n", p.Venue)
	}
	fmt.Printf("Citations: %d\n", p.CitationCount)
	if p.DOI != "" {
		fmt.Printf("DOI:       %s\n", p.DOI)
	}
	if p.ArxivID != "" {
		fmt.Printf("arXiv:     %s\n", p.ArxivID)
	}
	if p.URL != "" {
		fmt.Printf("URL:       %s\n", p.URL)
	}
	if p.PDFURL != "" {
		fmt.Printf("PDF:       %s\n", p.PDFURL)
	}
	fmt.Printf("Source:    %s\n", p.Source)
	fmt.Printf("ID:        %s\n", p.ID)
	if p.Abstract != "" {
		fmt.Printf("\n%s\n", p.Abstract)
	}
}
