// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the academic-mcp CLI. The serve
// command runs the MCP tool server; the remaining commands expose the
// aggregator for direct use from the terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/academic-mcp/internal/httputil"
	"github.com/pdiddy/academic-mcp/internal/secrets"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the academic-mcp CLI.
var rootCmd = &cobra.Command{
	Use:   "academic-mcp",
	Short: "Academic paper metadata aggregation and MCP tool server",
	Long: `academic-mcp aggregates paper metadata from OpenAlex, DBLP, Semantic
Scholar, arXiv, and CrossRef into one model, with cached lookups, BibTeX
export, citation listings, and citation networks.

The serve command runs the MCP tool server over stdio (or HTTP with
--http). The other commands run the same operations directly: search,
paper, bib, citations, and network.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./academic-mcp.yaml or ~/.config/academic-mcp/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "log at debug level")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("academic-mcp")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "academic-mcp"))
		}
	}

	viper.SetEnvPrefix("ACADEMIC_MCP")
	viper.AutomaticEnv()

	// The Semantic Scholar key is conventionally set without the
	// prefix, so bind both spellings.
	viper.BindEnv("semantic_scholar_api_key",
		"ACADEMIC_MCP_SEMANTIC_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the backend configuration. Defaults are
// overridden by the config file and environment; secret files fill
// whatever is still empty.
func buildConfig() types.Config {
	cfg := types.NewDefaultConfig()

	if v := viper.GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v := viper.GetDuration("connect_timeout"); v > 0 {
		cfg.ConnectTimeout = v
	}
	if v := viper.GetString("user_agent"); v != "" {
		cfg.UserAgent = v
	}
	if v := viper.GetString("email"); v != "" {
		cfg.Email = v
	}
	if v := viper.GetString("semantic_scholar_api_key"); v != "" {
		cfg.SemanticScholarAPIKey = v
	}
	if v := viper.GetDuration("arxiv_delay"); v > 0 {
		cfg.ArxivDelay = v
	}
	if viper.IsSet("breaker.enabled") {
		cfg.Breaker.Enabled = viper.GetBool("breaker.enabled")
	}
	if v := viper.GetUint32("breaker.max_failures"); v > 0 {
		cfg.Breaker.MaxFailures = v
	}
	if v := viper.GetDuration("breaker.cooldown"); v > 0 {
		cfg.Breaker.Cooldown = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}

	secrets.Apply(&cfg, loadedSecrets)

	if cfg.UserAgent == "" {
		cfg.UserAgent = httputil.UserAgent(version, cfg.Email)
	}
	return cfg
}

// newLogger builds the stderr logger for the service path. The debug
// flag wins over the configured level.
func newLogger(cfg types.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if debug, _ := rootCmd.PersistentFlags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parseSource validates a --source flag value.
func parseSource(s string) (types.PaperSource, error) {
	if s == "" {
		return "", nil
	}
	src := types.PaperSource(s)
	if !src.Valid() {
		return "", fmt.Errorf("unknown source %q (valid: openalex, dblp, semantic_scholar, arxiv, crossref)", s)
	}
	return src, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
