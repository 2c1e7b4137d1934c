// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pdiddy/academic-mcp/internal/sources"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

func (s *Server) handleSearchPapers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.requestLog("academic_search_papers")

	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := types.SearchPapersInput{
		Query:          query,
		Title:          req.GetString("title", ""),
		Author:         req.GetString("author", ""),
		DOI:            req.GetString("doi", ""),
		YearFrom:       req.GetInt("year_from", 0),
		YearTo:         req.GetInt("year_to", 0),
		Venue:          req.GetString("venue", ""),
		Sort:           req.GetString("sort", sources.SortRelevance),
		Limit:          req.GetInt("limit", 10),
		Offset:         req.GetInt("offset", 0),
		ResponseFormat: req.GetString("response_format", formatMarkdown),
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// A DOI is an exact identifier, so it short-circuits to a lookup.
	if in.DOI != "" {
		paper, err := s.service.GetPaper(ctx, in.DOI)
		if err != nil {
			log.Error("doi lookup failed", "doi", in.DOI, "error", err)
			return apiError(err), nil
		}
		if paper == nil {
			return mcp.NewToolResultText("No paper found for DOI: " + in.DOI), nil
		}
		log.Info("doi lookup served", "doi", in.DOI, "source", paper.Source)
		if in.ResponseFormat == formatJSON {
			return jsonResult(paper), nil
		}
		return mcp.NewToolResultText(paperMarkdown(paper, 0)), nil
	}

	// Title and author filters fold into the query string. DBLP
	// interprets the prefix syntax natively; the other backends treat
	// the prefixes as extra keywords.
	effective := in.Query
	if in.Title != "" {
		effective = strings.TrimSpace("title:" + in.Title + " " + effective)
	}
	if in.Author != "" {
		effective = strings.TrimSpace("author:" + in.Author + " " + effective)
	}

	result, err := s.service.Search(ctx, "", sources.Query{
		Text:     effective,
		Limit:    in.Limit,
		Offset:   in.Offset,
		Sort:     in.Sort,
		YearFrom: in.YearFrom,
		YearTo:   in.YearTo,
		Venue:    in.Venue,
	})
	if err != nil {
		log.Error("search failed", "query", effective, "error", err)
		return apiError(err), nil
	}
	log.Info("search served", "query", effective,
		"total", result.TotalResults, "returned", result.ReturnedCount, "source", result.Source)

	if in.ResponseFormat == formatJSON {
		return jsonResult(result), nil
	}
	return mcp.NewToolResultText(searchMarkdown(in, result)), nil
}

func (s *Server) handlePaperDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.requestLog("academic_get_paper_details")

	paperID, err := req.RequireString("paper_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := types.PaperDetailsInput{
		PaperID:        paperID,
		ResponseFormat: req.GetString("response_format", formatMarkdown),
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paper, err := s.service.GetPaper(ctx, in.PaperID)
	if err != nil {
		log.Error("paper lookup failed", "paper_id", in.PaperID, "error", err)
		return apiError(err), nil
	}
	if paper == nil {
		return mcp.NewToolResultText("Paper not found: " + in.PaperID), nil
	}
	log.Info("paper details served", "paper_id", in.PaperID, "source", paper.Source)

	if in.ResponseFormat == formatJSON {
		return jsonResult(paper), nil
	}
	return mcp.NewToolResultText(paperDetailMarkdown(paper)), nil
}

func (s *Server) handleBibTeX(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.requestLog("academic_get_bibtex")

	paperIDs, err := req.RequireString("paper_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := types.BibTeXInput{
		PaperIDs: types.SplitIDList(paperIDs),
		UseDBLP:  req.GetBool("use_dblp", true),
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(in.PaperIDs) == 1 {
		entry, err := s.service.GetBibTeX(ctx, in.PaperIDs[0], in.UseDBLP)
		if err != nil {
			log.Error("bibtex export failed", "paper_id", in.PaperIDs[0], "error", err)
			return apiError(err), nil
		}
		if entry == "" {
			return mcp.NewToolResultText("Could not generate BibTeX for: " + in.PaperIDs[0]), nil
		}
		log.Info("bibtex served", "paper_id", in.PaperIDs[0])
		return mcp.NewToolResultText("```bibtex\n" + entry + "\n```"), nil
	}

	batch, err := s.service.GetBibTeXBatch(ctx, in.PaperIDs, in.UseDBLP)
	if err != nil {
		log.Error("bibtex batch failed", "ids", len(in.PaperIDs), "error", err)
		return apiError(err), nil
	}
	log.Info("bibtex batch served",
		"requested", len(in.PaperIDs), "generated", len(batch.Entries), "failed", len(batch.Failed))
	return mcp.NewToolResultText(bibtexBatchMarkdown(batch)), nil
}

func (s *Server) handleCitations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.requestLog("academic_get_citations")

	paperID, err := req.RequireString("paper_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := types.CitationsInput{
		PaperID:        paperID,
		Limit:          req.GetInt("limit", 20),
		Offset:         req.GetInt("offset", 0),
		ResponseFormat: req.GetString("response_format", formatMarkdown),
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.GetCitations(ctx, in.PaperID, in.Limit, in.Offset)
	if err != nil {
		log.Error("citation listing failed", "paper_id", in.PaperID, "error", err)
		return apiError(err), nil
	}
	log.Info("citations served", "paper_id", in.PaperID,
		"total", result.CitationCount, "returned", len(result.CitingPapers))

	if in.ResponseFormat == formatJSON {
		return jsonResult(result), nil
	}
	return mcp.NewToolResultText(citationsMarkdown(in, result)), nil
}

func (s *Server) handleSearchAuthor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.requestLog("academic_search_author")

	name, err := req.RequireString("author_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := types.SearchAuthorInput{
		AuthorName:     name,
		Limit:          req.GetInt("limit", 20),
		Offset:         req.GetInt("offset", 0),
		YearFrom:       req.GetInt("year_from", 0),
		YearTo:         req.GetInt("year_to", 0),
		ResponseFormat: req.GetString("response_format", formatMarkdown),
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.SearchByAuthor(ctx, "", in.AuthorName, in.Limit, in.Offset)
	if err != nil {
		log.Error("author search failed", "author", in.AuthorName, "error", err)
		return apiError(err), nil
	}
	if in.YearFrom != 0 || in.YearTo != 0 {
		result = filterByYear(result, in.YearFrom, in.YearTo)
	}
	log.Info("author search served", "author", in.AuthorName,
		"total", result.TotalResults, "returned", result.ReturnedCount)

	if in.ResponseFormat == formatJSON {
		return jsonResult(result), nil
	}
	return mcp.NewToolResultText(authorMarkdown(in, result)), nil
}

func (s *Server) handleRelatedPapers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.requestLog("academic_get_related_papers")

	paperID, err := req.RequireString("paper_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := types.RelatedPapersInput{
		PaperID:        paperID,
		Limit:          req.GetInt("limit", 10),
		ResponseFormat: req.GetString("response_format", formatMarkdown),
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.GetRelatedPapers(ctx, in.PaperID, in.Limit)
	if err != nil {
		log.Error("recommendation lookup failed", "paper_id", in.PaperID, "error", err)
		return apiError(err), nil
	}
	log.Info("related papers served", "paper_id", in.PaperID, "returned", len(result.RelatedPapers))

	if in.ResponseFormat == formatJSON {
		return jsonResult(result), nil
	}
	return mcp.NewToolResultText(relatedMarkdown(in, result)), nil
}

func (s *Server) handleCitationNetwork(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := s.requestLog("academic_get_citation_network")

	paperID, err := req.RequireString("paper_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := types.CitationNetworkInput{
		PaperID:   paperID,
		Depth:     req.GetInt("depth", 1),
		MaxNodes:  req.GetInt("max_nodes", 50),
		Direction: req.GetString("direction", "both"),
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	network, err := s.service.GetCitationNetwork(ctx, in.PaperID, in.MaxNodes, in.Direction)
	if err != nil {
		log.Error("citation network failed", "paper_id", in.PaperID, "error", err)
		return apiError(err), nil
	}
	log.Info("citation network served", "paper_id", in.PaperID,
		"nodes", network.NodeCount(), "edges", network.EdgeCount())

	// Network output is always JSON; the counts ride along for
	// visualization tooling.
	return jsonResult(networkEnvelope{
		CenterPaperID: network.CenterPaperID,
		Depth:         network.Depth,
		NodeCount:     network.NodeCount(),
		EdgeCount:     network.EdgeCount(),
		Truncated:     network.Truncated,
		Nodes:         network.Nodes,
		Edges:         network.Edges,
	}), nil
}

func (s *Server) handleCacheStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.requestLog("academic_cache_stats").Info("cache stats served")
	return jsonResult(s.service.CacheStats()), nil
}

// networkEnvelope is the wire shape of a citation network response.
type networkEnvelope struct {
	CenterPaperID string              `json:"center_paper_id"`
	Depth         int                 `json:"depth"`
	NodeCount     int                 `json:"node_count"`
	EdgeCount     int                 `json:"edge_count"`
	Truncated     bool                `json:"truncated,omitempty"`
	Nodes         []types.NetworkNode `json:"nodes"`
	Edges         []types.NetworkEdge `json:"edges"`
}

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("could not encode response as JSON: " + err.Error())
	}
	return mcp.NewToolResultText(string(b))
}

// filterByYear narrows papers to the year window. Papers without a
// known year pass the filter. The result is a fresh value so cached
// search results are never mutated.
func filterByYear(r *types.SearchResult, from, to int) *types.SearchResult {
	papers := make([]types.Paper, 0, len(r.Papers))
	for _, p := range r.Papers {
		if from != 0 && p.Year != 0 && p.Year < from {
			continue
		}
		if to != 0 && p.Year != 0 && p.Year > to {
			continue
		}
		papers = append(papers, p)
	}
	filtered := *r
	filtered.Papers = papers
	filtered.ReturnedCount = len(papers)
	return &filtered
}
