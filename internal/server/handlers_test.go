// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/httputil"
	"github.com/pdiddy/academic-mcp/internal/sources"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// --- academic_search_papers ---

func TestSearchPapersMarkdown(t *testing.T) {
	var gotQuery sources.Query
	svc := &stubService{
		search: func(_ context.Context, source types.PaperSource, q sources.Query) (*types.SearchResult, error) {
			assert.Equal(t, types.PaperSource(""), source)
			gotQuery = q
			return &types.SearchResult{
				TotalResults:  42,
				ReturnedCount: 2,
				HasMore:       true,
				Papers:        []types.Paper{testPaper("W1", "Deep Learning"), testPaper("W2", "Attention Mechanisms")},
				Query:         q.Text,
				Source:        types.SourceOpenAlex,
			}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleSearchPapers(context.Background(), callReq(map[string]any{
		"query": "deep learning",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "# Search Results for: deep learning")
	assert.Contains(t, text, "Found **42** papers (showing 2)")
	assert.Contains(t, text, "Source: openalex")
	assert.NotContains(t, text, "Sorted by:")
	assert.Contains(t, text, "1. **Deep Learning**")
	assert.Contains(t, text, "2. **Attention Mechanisms**")
	assert.Contains(t, text, "*ID*: `W1`")
	assert.Contains(t, text, "Use `offset=10` to see next page.")

	assert.Equal(t, "deep learning", gotQuery.Text)
	assert.Equal(t, 10, gotQuery.Limit)
	assert.Equal(t, sources.SortRelevance, gotQuery.Sort)
}

func TestSearchPapersSortNote(t *testing.T) {
	svc := &stubService{
		search: func(_ context.Context, _ types.PaperSource, q sources.Query) (*types.SearchResult, error) {
			return &types.SearchResult{Papers: []types.Paper{}, Source: types.SourceOpenAlex}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleSearchPapers(context.Background(), callReq(map[string]any{
		"query": "llm",
		"sort":  "publication_date",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "Sorted by: publication_date")
}

func TestSearchPapersJSON(t *testing.T) {
	svc := &stubService{
		search: func(_ context.Context, _ types.PaperSource, q sources.Query) (*types.SearchResult, error) {
			return &types.SearchResult{
				TotalResults:  1,
				ReturnedCount: 1,
				Papers:        []types.Paper{testPaper("W1", "Deep Learning")},
				Query:         q.Text,
				Source:        types.SourceOpenAlex,
			}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleSearchPapers(context.Background(), callReq(map[string]any{
		"query":           "deep learning",
		"response_format": "json",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var decoded types.SearchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, 1, decoded.TotalResults)
	require.Len(t, decoded.Papers, 1)
	assert.Equal(t, "Deep Learning", decoded.Papers[0].Title)
}

func TestSearchPapersPrefixFolding(t *testing.T) {
	var gotText string
	svc := &stubService{
		search: func(_ context.Context, _ types.PaperSource, q sources.Query) (*types.SearchResult, error) {
			gotText = q.Text
			return &types.SearchResult{Papers: []types.Paper{}, Source: types.SourceOpenAlex}, nil
		},
	}
	s := newTestServer(svc)

	_, err := s.handleSearchPapers(context.Background(), callReq(map[string]any{
		"query":  "attention",
		"title":  "all you need",
		"author": "Vaswani",
	}))
	require.NoError(t, err)
	assert.Equal(t, "author:Vaswani title:all you need attention", gotText)
}

func TestSearchPapersDOIShortCircuit(t *testing.T) {
	var gotID string
	svc := &stubService{
		search: func(_ context.Context, _ types.PaperSource, _ sources.Query) (*types.SearchResult, error) {
			t.Error("search should not run for a DOI lookup")
			return nil, nil
		},
		getPaper: func(_ context.Context, id string) (*types.Paper, error) {
			gotID = id
			p := testPaper("W1", "Deep Learning")
			return &p, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleSearchPapers(context.Background(), callReq(map[string]any{
		"query": "anything",
		"doi":   "10.1038/nature14539",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "10.1038/nature14539", gotID)

	text := resultText(t, res)
	assert.Contains(t, text, "**Deep Learning**")
	assert.NotContains(t, text, "1. **", "single paper should not be numbered")
}

func TestSearchPapersDOINotFound(t *testing.T) {
	s := newTestServer(&stubService{})

	res, err := s.handleSearchPapers(context.Background(), callReq(map[string]any{
		"query": "anything",
		"doi":   "10.9999/missing",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "No paper found for DOI: 10.9999/missing", resultText(t, res))
}

func TestSearchPapersValidation(t *testing.T) {
	s := newTestServer(&stubService{})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "missing query",
			args: map[string]any{},
			want: "query",
		},
		{
			name: "blank query",
			args: map[string]any{"query": "   "},
			want: "query",
		},
		{
			name: "inverted year range",
			args: map[string]any{"query": "ml", "year_from": 2024, "year_to": 2020},
			want: "year_from",
		},
		{
			name: "bad sort value",
			args: map[string]any{"query": "ml", "sort": "alphabetical"},
			want: "sort",
		},
		{
			name: "limit above ceiling",
			args: map[string]any{"query": "ml", "limit": 500},
			want: "limit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleSearchPapers(context.Background(), callReq(tt.args))
			require.NoError(t, err)
			require.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestSearchPapersAPIError(t *testing.T) {
	svc := &stubService{
		search: func(_ context.Context, _ types.PaperSource, _ sources.Query) (*types.SearchResult, error) {
			return nil, &httputil.StatusError{StatusCode: 429, URL: "https://api.openalex.org/works"}
		},
	}
	s := newTestServer(svc)

	res, err := s.handleSearchPapers(context.Background(), callReq(map[string]any{"query": "ml"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Equal(t, "Rate limit exceeded. Please wait before making more requests.", resultText(t, res))
}

// --- academic_get_paper_details ---

func TestPaperDetailsMarkdown(t *testing.T) {
	paper := types.Paper{
		ID:    "W1",
		Title: "Deep Learning",
		Authors: []types.Author{
			{Name: "Yann LeCun", Affiliation: "Facebook AI Research"},
			{Name: "Yoshua Bengio"},
		},
		Abstract:      "Deep learning allows computational models to learn representations.",
		Year:          2015,
		Venue:         "Nature",
		Volume:        "521",
		Issue:         "7553",
		Pages:         "436-444",
		DOI:           "10.1038/nature14539",
		URL:           "https://www.nature.com/articles/nature14539",
		PDFURL:        "https://www.nature.com/articles/nature14539.pdf",
		CitationCount: 50000,
		Source:        types.SourceOpenAlex,
	}
	svc := &stubService{
		getPaper: func(_ context.Context, id string) (*types.Paper, error) {
			assert.Equal(t, "W1", id)
			return &paper, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handlePaperDetails(context.Background(), callReq(map[string]any{"paper_id": "W1"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "# Deep Learning")
	assert.Contains(t, text, "## Authors")
	assert.Contains(t, text, "- Yann LeCun (Facebook AI Research)")
	assert.Contains(t, text, "- Yoshua Bengio\n")
	assert.Contains(t, text, "## Publication Info")
	assert.Contains(t, text, "- **Year**: 2015")
	assert.Contains(t, text, "- **Volume**: 521")
	assert.Contains(t, text, "- **Pages**: 436-444")
	assert.Contains(t, text, "- **Citations**: 50000")
	assert.Contains(t, text, "## Identifiers")
	assert.Contains(t, text, "- **DOI**: [10.1038/nature14539](https://doi.org/10.1038/nature14539)")
	assert.Contains(t, text, "- **ID**: `W1`")
	assert.Contains(t, text, "- **PDF**: https://www.nature.com/articles/nature14539.pdf")
	assert.Contains(t, text, "## Abstract")
	assert.Contains(t, text, "computational models")
}

func TestPaperDetailsNotFound(t *testing.T) {
	s := newTestServer(&stubService{})

	res, err := s.handlePaperDetails(context.Background(), callReq(map[string]any{"paper_id": "W404"}))
	require.NoError(t, err)
	require.False(t, res.IsError, "a miss is content, not a protocol error")
	assert.Equal(t, "Paper not found: W404", resultText(t, res))
}

func TestPaperDetailsJSON(t *testing.T) {
	svc := &stubService{
		getPaper: func(_ context.Context, id string) (*types.Paper, error) {
			p := testPaper(id, "Deep Learning")
			return &p, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handlePaperDetails(context.Background(), callReq(map[string]any{
		"paper_id":        "W1",
		"response_format": "json",
	}))
	require.NoError(t, err)

	var decoded types.Paper
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, "W1", decoded.ID)
	assert.Equal(t, "Deep Learning", decoded.Title)
}

func TestPaperDetailsAPIError(t *testing.T) {
	svc := &stubService{
		getPaper: func(_ context.Context, _ string) (*types.Paper, error) {
			return nil, &httputil.StatusError{StatusCode: 404, URL: "https://api.openalex.org/works/W1"}
		},
	}
	s := newTestServer(svc)

	res, err := s.handlePaperDetails(context.Background(), callReq(map[string]any{"paper_id": "W1"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Equal(t, "Resource not found. Please check the ID is correct.", resultText(t, res))
}

// --- academic_get_bibtex ---

func TestBibTeXSingle(t *testing.T) {
	var gotUseDBLP bool
	svc := &stubService{
		bibtex: func(_ context.Context, id string, useDBLP bool) (string, error) {
			assert.Equal(t, "conf/nips/VaswaniSPUJGKP17", id)
			gotUseDBLP = useDBLP
			return "@inproceedings{DBLP:conf/nips/VaswaniSPUJGKP17,\n  title = {Attention is All you Need}\n}", nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleBibTeX(context.Background(), callReq(map[string]any{
		"paper_ids": "conf/nips/VaswaniSPUJGKP17",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.True(t, gotUseDBLP, "use_dblp should default to true")

	text := resultText(t, res)
	assert.True(t, len(text) > 0)
	assert.Equal(t, "```bibtex\n@inproceedings{DBLP:conf/nips/VaswaniSPUJGKP17,\n  title = {Attention is All you Need}\n}\n```", text)
}

func TestBibTeXSingleUnresolvable(t *testing.T) {
	s := newTestServer(&stubService{})

	res, err := s.handleBibTeX(context.Background(), callReq(map[string]any{"paper_ids": "W9"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "Could not generate BibTeX for: W9", resultText(t, res))
}

func TestBibTeXBatch(t *testing.T) {
	svc := &stubService{
		batch: func(_ context.Context, ids []string, useDBLP bool) (*types.BibTeXBatch, error) {
			assert.Equal(t, []string{"W1", "W2", "W3"}, ids)
			assert.False(t, useDBLP)
			return &types.BibTeXBatch{
				Entries: []string{"@article{a,\n}", "@article{c,\n}"},
				Failed:  []string{"W2"},
			}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleBibTeX(context.Background(), callReq(map[string]any{
		"paper_ids": "W1, W2, W3",
		"use_dblp":  false,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "```bibtex\n@article{a,\n}\n\n@article{c,\n}\n```")
	assert.Contains(t, text, "*Failed to generate BibTeX for: W2*")
	assert.Contains(t, text, "*Generated 2 BibTeX entries*")
}

func TestBibTeXEmptyIDList(t *testing.T) {
	s := newTestServer(&stubService{})

	res, err := s.handleBibTeX(context.Background(), callReq(map[string]any{"paper_ids": " , ,"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "paper_ids")
}

// --- academic_get_citations ---

func TestCitationsMarkdown(t *testing.T) {
	svc := &stubService{
		citations: func(_ context.Context, id string, limit, offset int) (*types.CitationResult, error) {
			assert.Equal(t, 20, limit)
			return &types.CitationResult{
				PaperID:       id,
				CitationCount: 100,
				CitingPapers:  []types.Paper{testPaper("W2", "A Citing Paper")},
				HasMore:       true,
			}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleCitations(context.Background(), callReq(map[string]any{"paper_id": "W1"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "# Citations for: W1")
	assert.Contains(t, text, "**Total Citations**: 100")
	assert.Contains(t, text, "**Showing**: 1 citing papers")
	assert.Contains(t, text, "## Citing Papers")
	assert.Contains(t, text, "1. **A Citing Paper**")
	assert.Contains(t, text, "Use `offset=20` for next page.")
}

func TestCitationsEmpty(t *testing.T) {
	s := newTestServer(&stubService{})

	res, err := s.handleCitations(context.Background(), callReq(map[string]any{"paper_id": "W1"}))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "*No citing papers found or citation data unavailable.*")
	assert.NotContains(t, text, "## Citing Papers")
}

// --- academic_search_author ---

func TestSearchAuthorMarkdown(t *testing.T) {
	svc := &stubService{
		byAuthor: func(_ context.Context, source types.PaperSource, name string, limit, offset int) (*types.SearchResult, error) {
			assert.Equal(t, types.PaperSource(""), source)
			assert.Equal(t, "Grace Hopper", name)
			assert.Equal(t, 20, limit)
			return &types.SearchResult{
				TotalResults:  7,
				ReturnedCount: 1,
				Papers:        []types.Paper{testPaper("W1", "Compilers")},
				Source:        types.SourceOpenAlex,
			}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleSearchAuthor(context.Background(), callReq(map[string]any{
		"author_name": "Grace Hopper",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "# Papers by: Grace Hopper")
	assert.Contains(t, text, "Found **7** papers (showing 1)")
	assert.Contains(t, text, "1. **Compilers**")
}

func TestSearchAuthorYearFilter(t *testing.T) {
	old := testPaper("W1", "Old Paper")
	old.Year = 2018
	recent := testPaper("W2", "Recent Paper")
	recent.Year = 2022
	undated := testPaper("W3", "Undated Paper")
	undated.Year = 0

	cached := &types.SearchResult{
		TotalResults:  3,
		ReturnedCount: 3,
		Papers:        []types.Paper{old, recent, undated},
		Source:        types.SourceOpenAlex,
	}
	svc := &stubService{
		byAuthor: func(_ context.Context, _ types.PaperSource, _ string, _, _ int) (*types.SearchResult, error) {
			return cached, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleSearchAuthor(context.Background(), callReq(map[string]any{
		"author_name": "Grace Hopper",
		"year_from":   2020,
	}))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.NotContains(t, text, "Old Paper")
	assert.Contains(t, text, "Recent Paper")
	assert.Contains(t, text, "Undated Paper", "papers without a year pass the filter")
	assert.Contains(t, text, "Found **3** papers (showing 2)")

	// The cached result must not be mutated by filtering.
	assert.Len(t, cached.Papers, 3)
}

func TestSearchAuthorValidation(t *testing.T) {
	s := newTestServer(&stubService{})

	res, err := s.handleSearchAuthor(context.Background(), callReq(map[string]any{
		"author_name": "X",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "author_name")
}

// --- academic_get_related_papers ---

func TestRelatedPapersMarkdown(t *testing.T) {
	svc := &stubService{
		related: func(_ context.Context, id string, limit int) (*types.RelatedPapersResult, error) {
			assert.Equal(t, 10, limit)
			return &types.RelatedPapersResult{
				PaperID:              id,
				RelatedPapers:        []types.Paper{testPaper("W2", "A Related Paper")},
				RecommendationSource: "semantic_scholar",
			}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleRelatedPapers(context.Background(), callReq(map[string]any{"paper_id": "W1"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "# Related Papers for: W1")
	assert.Contains(t, text, "Source: semantic_scholar")
	assert.Contains(t, text, "Found **1** related papers")
	assert.Contains(t, text, "1. **A Related Paper**")
}

func TestRelatedPapersEmpty(t *testing.T) {
	s := newTestServer(&stubService{})

	res, err := s.handleRelatedPapers(context.Background(), callReq(map[string]any{"paper_id": "W1"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "*No related papers found. Try a different paper ID.*")
}

// --- academic_get_citation_network ---

func TestCitationNetworkJSON(t *testing.T) {
	svc := &stubService{
		network: func(_ context.Context, id string, maxNodes int, direction string) (*types.CitationNetwork, error) {
			assert.Equal(t, 50, maxNodes)
			assert.Equal(t, "both", direction)
			return &types.CitationNetwork{
				CenterPaperID: id,
				Depth:         1,
				Nodes: []types.NetworkNode{
					{PaperID: "W1", Title: "Center", Year: 2015, CitationCount: 10},
					{PaperID: "W2", Title: "Citer", Year: 2020, CitationCount: 1},
				},
				Edges: []types.NetworkEdge{{Source: "W2", Target: "W1"}},
			}, nil
		},
	}
	s := newTestServer(svc)

	res, err := s.handleCitationNetwork(context.Background(), callReq(map[string]any{"paper_id": "W1"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var decoded struct {
		CenterPaperID string              `json:"center_paper_id"`
		Depth         int                 `json:"depth"`
		NodeCount     int                 `json:"node_count"`
		EdgeCount     int                 `json:"edge_count"`
		Nodes         []types.NetworkNode `json:"nodes"`
		Edges         []types.NetworkEdge `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, "W1", decoded.CenterPaperID)
	assert.Equal(t, 1, decoded.Depth)
	assert.Equal(t, 2, decoded.NodeCount)
	assert.Equal(t, 1, decoded.EdgeCount)
	require.Len(t, decoded.Edges, 1)
	assert.Equal(t, "W2", decoded.Edges[0].Source)
}

func TestCitationNetworkValidation(t *testing.T) {
	s := newTestServer(&stubService{})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "unsupported depth",
			args: map[string]any{"paper_id": "W1", "depth": 2},
			want: "depth",
		},
		{
			name: "max_nodes below floor",
			args: map[string]any{"paper_id": "W1", "max_nodes": 5},
			want: "max_nodes",
		},
		{
			name: "unknown direction",
			args: map[string]any{"paper_id": "W1", "direction": "sideways"},
			want: "direction",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleCitationNetwork(context.Background(), callReq(tt.args))
			require.NoError(t, err)
			require.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestCitationNetworkCenterMissing(t *testing.T) {
	svc := &stubService{
		network: func(_ context.Context, id string, _ int, _ string) (*types.CitationNetwork, error) {
			return nil, assert.AnError
		},
	}
	s := newTestServer(svc)

	res, err := s.handleCitationNetwork(context.Background(), callReq(map[string]any{"paper_id": "W404"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Unexpected error:")
}

// --- academic_cache_stats ---

func TestCacheStats(t *testing.T) {
	svc := &stubService{
		stats: func() map[string]cache.Stats {
			return map[string]cache.Stats{
				"search": {Size: 2, MaxSize: 500, TTLSeconds: 600, Hits: 10, Misses: 5, HitRate: "66.7%"},
				"paper":  {MaxSize: 2000, TTLSeconds: 3600, HitRate: "0.0%"},
				"bibtex": {MaxSize: 1000, TTLSeconds: 86400, HitRate: "0.0%"},
			}
		},
	}
	s := newTestServer(svc)

	res, err := s.handleCacheStats(context.Background(), callReq(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var decoded map[string]cache.Stats
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	require.Contains(t, decoded, "search")
	require.Contains(t, decoded, "paper")
	require.Contains(t, decoded, "bibtex")
	assert.Equal(t, uint64(10), decoded["search"].Hits)
	assert.Equal(t, "66.7%", decoded["search"].HitRate)
}
