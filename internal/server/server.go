// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the aggregator as an MCP tool server. Eight
// tools cover search, paper lookup, BibTeX export, citations, author
// search, recommendations, citation networks, and cache statistics.
// Tool inputs are validated before any network call; backend failures
// come back as tool errors with a user-readable message.
package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/sources"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// Service is the aggregation surface the tool handlers call into.
// *aggregator.Aggregator satisfies it.
type Service interface {
	Search(ctx context.Context, source types.PaperSource, q sources.Query) (*types.SearchResult, error)
	GetPaper(ctx context.Context, id string) (*types.Paper, error)
	GetBibTeX(ctx context.Context, id string, useDBLP bool) (string, error)
	GetBibTeXBatch(ctx context.Context, ids []string, useDBLP bool) (*types.BibTeXBatch, error)
	GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error)
	SearchByAuthor(ctx context.Context, source types.PaperSource, name string, limit, offset int) (*types.SearchResult, error)
	GetRelatedPapers(ctx context.Context, id string, limit int) (*types.RelatedPapersResult, error)
	GetCitationNetwork(ctx context.Context, id string, maxNodes int, direction string) (*types.CitationNetwork, error)
	CacheStats() map[string]cache.Stats
}

// instructions primes MCP clients on how the tools compose.
const instructions = `Academic paper metadata aggregation across OpenAlex, DBLP, Semantic
Scholar, arXiv, and CrossRef. Use academic_search_papers to find papers,
academic_get_paper_details for full metadata on one paper, and
academic_get_bibtex to export citations. Paper IDs returned by any tool
can be passed to any other tool: DOIs, arXiv IDs, OpenAlex work IDs,
DBLP keys, and Semantic Scholar hashes are all accepted.`

// Server binds the tool definitions to a Service behind an MCP server.
type Server struct {
	service Service
	mcp     *server.MCPServer
	log     *slog.Logger
}

// New builds the MCP server and registers the academic tools.
func New(svc Service, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{service: svc, log: log}
	s.mcp = server.NewMCPServer(
		"academic-mcp",
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchPapersTool(), s.handleSearchPapers)
	s.mcp.AddTool(paperDetailsTool(), s.handlePaperDetails)
	s.mcp.AddTool(bibtexTool(), s.handleBibTeX)
	s.mcp.AddTool(citationsTool(), s.handleCitations)
	s.mcp.AddTool(searchAuthorTool(), s.handleSearchAuthor)
	s.mcp.AddTool(relatedPapersTool(), s.handleRelatedPapers)
	s.mcp.AddTool(citationNetworkTool(), s.handleCitationNetwork)
	s.mcp.AddTool(cacheStatsTool(), s.handleCacheStats)
}

// requestLog returns the logger for one tool invocation. Every log
// line of the invocation carries the tool name and a request id.
func (s *Server) requestLog(tool string) *slog.Logger {
	return s.log.With("tool", tool, "request_id", uuid.NewString())
}

// ServeStdio serves the MCP protocol over stdin and stdout until the
// client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ServeHTTP serves the streamable HTTP transport on addr.
func (s *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcp).Start(addr)
}

// readOnlyAnnotation builds the annotation set shared by every tool:
// all of them read remote databases and mutate nothing. openWorld is
// false only for tools that never leave the process.
func readOnlyAnnotation(title string, openWorld bool) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		Title:           title,
		ReadOnlyHint:    mcp.ToBoolPtr(true),
		DestructiveHint: mcp.ToBoolPtr(false),
		IdempotentHint:  mcp.ToBoolPtr(true),
		OpenWorldHint:   mcp.ToBoolPtr(openWorld),
	}
}
