// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/sources"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// stubService implements Service with overridable hooks. Nil hooks
// return empty results.
type stubService struct {
	search    func(ctx context.Context, source types.PaperSource, q sources.Query) (*types.SearchResult, error)
	getPaper  func(ctx context.Context, id string) (*types.Paper, error)
	bibtex    func(ctx context.Context, id string, useDBLP bool) (string, error)
	batch     func(ctx context.Context, ids []string, useDBLP bool) (*types.BibTeXBatch, error)
	citations func(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error)
	byAuthor  func(ctx context.Context, source types.PaperSource, name string, limit, offset int) (*types.SearchResult, error)
	related   func(ctx context.Context, id string, limit int) (*types.RelatedPapersResult, error)
	network   func(ctx context.Context, id string, maxNodes int, direction string) (*types.CitationNetwork, error)
	stats     func() map[string]cache.Stats
}

func (s *stubService) Search(ctx context.Context, source types.PaperSource, q sources.Query) (*types.SearchResult, error) {
	if s.search == nil {
		return &types.SearchResult{Papers: []types.Paper{}}, nil
	}
	return s.search(ctx, source, q)
}

func (s *stubService) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	if s.getPaper == nil {
		return nil, nil
	}
	return s.getPaper(ctx, id)
}

func (s *stubService) GetBibTeX(ctx context.Context, id string, useDBLP bool) (string, error) {
	if s.bibtex == nil {
		return "", nil
	}
	return s.bibtex(ctx, id, useDBLP)
}

func (s *stubService) GetBibTeXBatch(ctx context.Context, ids []string, useDBLP bool) (*types.BibTeXBatch, error) {
	if s.batch == nil {
		return &types.BibTeXBatch{Entries: []string{}}, nil
	}
	return s.batch(ctx, ids, useDBLP)
}

func (s *stubService) GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error) {
	if s.citations == nil {
		return &types.CitationResult{PaperID: id, CitingPapers: []types.Paper{}}, nil
	}
	return s.citations(ctx, id, limit, offset)
}

func (s *stubService) SearchByAuthor(ctx context.Context, source types.PaperSource, name string, limit, offset int) (*types.SearchResult, error) {
	if s.byAuthor == nil {
		return &types.SearchResult{Papers: []types.Paper{}}, nil
	}
	return s.byAuthor(ctx, source, name, limit, offset)
}

func (s *stubService) GetRelatedPapers(ctx context.Context, id string, limit int) (*types.RelatedPapersResult, error) {
	if s.related == nil {
		return &types.RelatedPapersResult{PaperID: id, RelatedPapers: []types.Paper{}}, nil
	}
	return s.related(ctx, id, limit)
}

func (s *stubService) GetCitationNetwork(ctx context.Context, id string, maxNodes int, direction string) (*types.CitationNetwork, error) {
	if s.network == nil {
		return &types.CitationNetwork{CenterPaperID: id, Depth: 1}, nil
	}
	return s.network(ctx, id, maxNodes, direction)
}

func (s *stubService) CacheStats() map[string]cache.Stats {
	if s.stats == nil {
		return map[string]cache.Stats{}
	}
	return s.stats()
}

func newTestServer(svc Service) *Server {
	return New(svc, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// callReq builds a tool call request with the given arguments.
func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the single text content of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content should be text")
	return tc.Text
}

func testPaper(id, title string) types.Paper {
	return types.Paper{
		ID:            id,
		Title:         title,
		Authors:       []types.Author{{Name: "Grace Hopper"}},
		Year:          2021,
		Venue:         "Communications of the ACM",
		CitationCount: 12,
		DOI:           "10.1000/" + id,
		Source:        types.SourceOpenAlex,
	}
}
