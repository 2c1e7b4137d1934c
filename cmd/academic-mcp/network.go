// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/academic-mcp/internal/aggregator"
)

var networkCmd = &cobra.Command{
	Use:   "network [id]",
	Short: "Build a citation network around a paper",
	Long: `Network assembles a one-hop citation graph around the given paper:
papers citing it, papers it cites, or both. Output is JSON with nodes
and edges, suitable for graph visualization tools.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetwork,
}

func init() {
	networkCmd.Flags().Int("max-nodes", 50, "maximum nodes in the graph (10-200)")
	networkCmd.Flags().String("direction", aggregator.DirectionBoth, "direction: citing, cited, or both")

	rootCmd.AddCommand(networkCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	maxNodes, _ := cmd.Flags().GetInt("max-nodes")
	direction, _ := cmd.Flags().GetString("direction")
	switch direction {
	case aggregator.DirectionCiting, aggregator.DirectionCited, aggregator.DirectionBoth:
	default:
		return fmt.Errorf("unknown direction %q (valid: citing, cited, both)", direction)
	}
	if maxNodes < 10 || maxNodes > 200 {
		return fmt.Errorf("max-nodes must be between 10 and 200")
	}

	cfg := buildConfig()
	agg := aggregator.New(cfg, newLogger(cfg))
	defer agg.Close()

	network, err := agg.GetCitationNetwork(context.Background(), args[0], maxNodes, direction)
	if err != nil {
		return err
	}
	return aggregator.FormatJSON(network, os.Stdout)
}
