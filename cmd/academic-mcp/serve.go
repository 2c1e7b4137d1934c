// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/academic-mcp/internal/aggregator"
	"github.com/pdiddy/academic-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server",
	Long: `Serve runs the academic-mcp tool server. By default it speaks the MCP
protocol over stdin/stdout, which is how MCP clients launch it. With
--http the server instead listens on the given address using the
streamable HTTP transport.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("http", "", "listen address for streamable HTTP (e.g. :8080); default is stdio")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	log := newLogger(cfg)

	agg := aggregator.New(cfg, log)
	defer agg.Close()

	srv := server.New(agg, version, log)

	if addr, _ := cmd.Flags().GetString("http"); addr != "" {
		log.Info("serving MCP over HTTP", "addr", addr, "version", version)
		return srv.ServeHTTP(addr)
	}
	log.Info("serving MCP over stdio", "version", version)
	return srv.ServeStdio()
}
