// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/academic-mcp/internal/bibtex"
	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/httputil"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// Semantic Scholar API roots. Declared as vars so tests can
// substitute an httptest server.
var (
	semanticBase    = "https://api.semanticscholar.org/graph/v1"
	semanticRecBase = "https://api.semanticscholar.org/recommendations/v1"
)

// semanticMaxPage is the largest page the graph API serves.
const semanticMaxPage = 100

// semanticFields is the field list requested with every paper
// payload.
const semanticFields = "paperId,title,abstract,year,venue,authors,citationCount,externalIds,url,publicationDate,journal"

// SemanticScholar queries api.semanticscholar.org. Without an API key
// the service allows roughly 100 requests per 5 minutes; a key raises
// that substantially.
type SemanticScholar struct {
	client *lazyClient
	caches *cache.Tiers
	header http.Header
	log    *slog.Logger
}

// NewSemanticScholar builds the Semantic Scholar backend. The API key
// is optional.
func NewSemanticScholar(cfg types.Config, tiers *cache.Tiers, log *slog.Logger) *SemanticScholar {
	header := baseHeader(cfg.UserAgent)
	if cfg.SemanticScholarAPIKey != "" {
		header.Set("x-api-key", cfg.SemanticScholarAPIKey)
	}
	return &SemanticScholar{
		client: newLazyClient("semantic_scholar", cfg),
		caches: tiers,
		header: header,
		log:    logger(log).With("source", "semantic_scholar"),
	}
}

// Source identifies the backend.
func (s *SemanticScholar) Source() types.PaperSource { return types.SourceSemanticScholar }

// Search queries the paper search endpoint. Venue filtering is not
// supported server-side and is applied to the returned page.
func (s *SemanticScholar) Search(ctx context.Context, q Query) (*types.SearchResult, error) {
	key := cache.SearchKey(types.SourceSemanticScholar, q.Text, q.Limit, q.Offset, q.named())
	if v, ok := s.caches.Search.Get(key); ok {
		return v.(*types.SearchResult), nil
	}

	params := url.Values{
		"query":  {q.Text},
		"limit":  {strconv.Itoa(clampLimit(q.Limit, semanticMaxPage))},
		"offset": {strconv.Itoa(q.Offset)},
		"fields": {semanticFields},
	}
	switch q.Sort {
	case "", SortRelevance:
	case SortPublicationDate:
		params.Set("sort", "publicationDate:desc")
	case SortCitationCount:
		params.Set("sort", "citationCount:desc")
	default:
		s.log.Debug("unsupported sort, using relevance", "sort", q.Sort)
	}
	if q.YearFrom != 0 || q.YearTo != 0 {
		params.Set("year", semanticYearRange(q.YearFrom, q.YearTo))
	}

	var resp semanticSearchResponse
	if err := httputil.GetJSON(ctx, s.client.get(), semanticBase+"/paper/search?"+params.Encode(), s.header, &resp); err != nil {
		return nil, fmt.Errorf("searching semantic scholar: %w", err)
	}

	papers := make([]types.Paper, 0, len(resp.Data))
	for i := range resp.Data {
		p := parseSemanticPaper(&resp.Data[i])
		if p == nil {
			s.log.Warn("skipping paper without id")
			continue
		}
		if q.Venue != "" && p.Venue != "" && !strings.Contains(strings.ToLower(p.Venue), strings.ToLower(q.Venue)) {
			continue
		}
		papers = append(papers, *p)
	}

	total := resp.Total
	if total == 0 {
		total = len(papers)
	}
	result := &types.SearchResult{
		TotalResults:  total,
		ReturnedCount: len(papers),
		Offset:        q.Offset,
		HasMore:       resp.Next != nil,
		Papers:        papers,
		Query:         q.Text,
		Source:        types.SourceSemanticScholar,
	}
	s.caches.Search.Set(key, result)
	return result, nil
}

// GetPaper fetches one paper. Accepts S2 paper IDs, DOIs, and arXiv
// IDs in several spellings.
func (s *SemanticScholar) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	key := cache.PaperKey(types.SourceSemanticScholar, id)
	if v, ok := s.caches.Paper.Get(key); ok {
		return v.(*types.Paper), nil
	}

	params := url.Values{"fields": {semanticFields}}
	u := semanticBase + "/paper/" + semanticLookupID(id) + "?" + params.Encode()

	var data semanticPaper
	if err := httputil.GetJSON(ctx, s.client.get(), u, s.header, &data); err != nil {
		if httputil.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching semantic scholar paper: %w", err)
	}
	p := parseSemanticPaper(&data)
	if p == nil {
		return nil, nil
	}
	s.caches.Paper.Set(key, p)
	return p, nil
}

// SearchByAuthor resolves the author via the author search endpoint
// and lists that author's papers. When no author matches, it degrades
// to a paper search with an author: prefix. The papers endpoint
// reports no grand total, so the total reflects the returned page.
func (s *SemanticScholar) SearchByAuthor(ctx context.Context, name string, limit, offset int) (*types.SearchResult, error) {
	params := url.Values{
		"query":  {name},
		"limit":  {"5"},
		"fields": {"authorId,name,paperCount"},
	}

	var authors semanticAuthorSearchResponse
	if err := httputil.GetJSON(ctx, s.client.get(), semanticBase+"/author/search?"+params.Encode(), s.header, &authors); err != nil {
		return nil, fmt.Errorf("searching semantic scholar authors: %w", err)
	}
	if len(authors.Data) == 0 {
		return s.Search(ctx, Query{Text: "author:" + name, Limit: limit, Offset: offset})
	}

	paperParams := url.Values{
		"fields": {semanticFields},
		"limit":  {strconv.Itoa(clampLimit(limit, semanticMaxPage))},
		"offset": {strconv.Itoa(offset)},
	}
	u := semanticBase + "/author/" + authors.Data[0].AuthorID + "/papers?" + paperParams.Encode()

	var resp semanticSearchResponse
	if err := httputil.GetJSON(ctx, s.client.get(), u, s.header, &resp); err != nil {
		return nil, fmt.Errorf("fetching semantic scholar author papers: %w", err)
	}

	papers := make([]types.Paper, 0, len(resp.Data))
	for i := range resp.Data {
		if p := parseSemanticPaper(&resp.Data[i]); p != nil {
			papers = append(papers, *p)
		}
	}

	return &types.SearchResult{
		TotalResults:  len(papers),
		ReturnedCount: len(papers),
		Offset:        offset,
		HasMore:       len(papers) == limit,
		Papers:        papers,
		Query:         "author:" + name,
		Source:        types.SourceSemanticScholar,
	}, nil
}

// GetCitations lists papers citing id. The target is resolved first;
// a failing citation fetch degrades to an empty result carrying the
// target's citation count.
func (s *SemanticScholar) GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error) {
	paper, err := s.GetPaper(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving cited paper: %w", err)
	}
	if paper == nil {
		return &types.CitationResult{PaperID: id, CitingPapers: []types.Paper{}}, nil
	}

	params := url.Values{
		"fields": {semanticFields},
		"limit":  {strconv.Itoa(clampLimit(limit, semanticMaxPage))},
		"offset": {strconv.Itoa(offset)},
	}
	u := semanticBase + "/paper/" + paper.ID + "/citations?" + params.Encode()

	var resp semanticCitationsResponse
	if err := httputil.GetJSON(ctx, s.client.get(), u, s.header, &resp); err != nil {
		s.log.Warn("citation fetch failed", "paper_id", id, "err", err)
		return &types.CitationResult{
			PaperID:       id,
			CitationCount: paper.CitationCount,
			CitingPapers:  []types.Paper{},
		}, nil
	}

	papers := make([]types.Paper, 0, len(resp.Data))
	for i := range resp.Data {
		if p := parseSemanticPaper(&resp.Data[i].CitingPaper); p != nil {
			papers = append(papers, *p)
		}
	}

	total := resp.Total
	if total == 0 {
		total = paper.CitationCount
	}
	return &types.CitationResult{
		PaperID:       id,
		CitationCount: total,
		CitingPapers:  papers,
		HasMore:       resp.Next != nil,
	}, nil
}

// GetBibTeX synthesizes an entry from the paper's metadata; Semantic
// Scholar serves no native BibTeX.
func (s *SemanticScholar) GetBibTeX(ctx context.Context, id string) (string, error) {
	key := cache.BibTeXKey("semantic:" + id)
	if v, ok := s.caches.BibTeX.Get(key); ok {
		return v.(string), nil
	}

	paper, err := s.GetPaper(ctx, id)
	if err != nil {
		return "", err
	}
	if paper == nil {
		return "", nil
	}
	bib := bibtex.Generate(paper, "")
	s.caches.BibTeX.Set(key, bib)
	return bib, nil
}

// GetRelated returns AI recommendations for the given paper. Failures
// degrade to an empty result so a missing recommendation never fails
// the caller.
func (s *SemanticScholar) GetRelated(ctx context.Context, id string, limit int) (*types.RelatedPapersResult, error) {
	empty := &types.RelatedPapersResult{
		PaperID:              id,
		RelatedPapers:        []types.Paper{},
		RecommendationSource: "semantic_scholar",
	}

	paper, err := s.GetPaper(ctx, id)
	if err != nil || paper == nil {
		if err != nil {
			s.log.Warn("recommendation target lookup failed", "paper_id", id, "err", err)
		}
		return empty, nil
	}

	params := url.Values{
		"fields": {semanticFields},
		"limit":  {strconv.Itoa(clampLimit(limit, semanticMaxPage))},
	}
	u := semanticRecBase + "/papers/forpaper/" + paper.ID + "?" + params.Encode()

	var resp semanticRecommendationsResponse
	if err := httputil.GetJSON(ctx, s.client.get(), u, s.header, &resp); err != nil {
		s.log.Warn("recommendation fetch failed", "paper_id", id, "err", err)
		return empty, nil
	}

	papers := make([]types.Paper, 0, len(resp.RecommendedPapers))
	for i := range resp.RecommendedPapers {
		if p := parseSemanticPaper(&resp.RecommendedPapers[i]); p != nil {
			papers = append(papers, *p)
		}
	}
	return &types.RelatedPapersResult{
		PaperID:              id,
		RelatedPapers:        papers,
		RecommendationSource: "semantic_scholar",
	}, nil
}

// Close drops idle connections.
func (s *SemanticScholar) Close() { s.client.close() }

// semanticLookupID routes an identifier to the paper endpoint's
// prefixed forms. arXiv DOIs are unwrapped to plain arXiv IDs.
func semanticLookupID(id string) string {
	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(id, "10."):
		if i := strings.Index(lower, "arxiv."); i >= 0 {
			return "ARXIV:" + id[i+len("arxiv."):]
		}
		return "DOI:" + id
	case strings.HasPrefix(lower, "arxiv:"):
		return "ARXIV:" + id[len("arxiv:"):]
	case strings.Contains(id, "."):
		return "ARXIV:" + id
	default:
		return id
	}
}

// semanticYearRange renders the year parameter, leaving open ends
// empty.
func semanticYearRange(from, to int) string {
	f, t := "", ""
	if from != 0 {
		f = strconv.Itoa(from)
	}
	if to != 0 {
		t = strconv.Itoa(to)
	}
	return f + "-" + t
}

// parseSemanticPaper normalizes one paper record, or returns nil for
// records without an id.
func parseSemanticPaper(data *semanticPaper) *types.Paper {
	if data.PaperID == "" {
		return nil
	}

	title := data.Title
	if title == "" {
		title = "Untitled"
	}
	venue := data.Venue
	if venue == "" {
		venue = data.Journal.Name
	}

	p := &types.Paper{
		ID:            data.PaperID,
		Title:         title,
		Abstract:      data.Abstract,
		Year:          types.ClampYear(data.Year),
		PublishedDate: data.PublicationDate,
		Venue:         venue,
		Volume:        data.Journal.Volume,
		DOI:           data.ExternalIDs.DOI,
		ArxivID:       data.ExternalIDs.ArXiv,
		URL:           data.URL,
		CitationCount: data.CitationCount,
		Source:        types.SourceSemanticScholar,
	}
	for _, a := range data.Authors {
		if a.Name == "" {
			continue
		}
		author := types.NewAuthor(a.Name)
		author.AuthorID = a.AuthorID
		p.Authors = append(p.Authors, author)
	}
	return p
}

// Semantic Scholar API JSON structures.
type semanticSearchResponse struct {
	Total int             `json:"total"`
	Next  *int            `json:"next"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	Year            int                 `json:"year"`
	Venue           string              `json:"venue"`
	Authors         []semanticAuthor    `json:"authors"`
	CitationCount   int                 `json:"citationCount"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
	URL             string              `json:"url"`
	PublicationDate string              `json:"publicationDate"`
	Journal         semanticJournal     `json:"journal"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticJournal struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
}

type semanticAuthorSearchResponse struct {
	Data []semanticAuthorRecord `json:"data"`
}

type semanticAuthorRecord struct {
	AuthorID   string `json:"authorId"`
	Name       string `json:"name"`
	PaperCount int    `json:"paperCount"`
}

type semanticCitationsResponse struct {
	Total int                `json:"total"`
	Next  *int               `json:"next"`
	Data  []semanticCitation `json:"data"`
}

type semanticCitation struct {
	CitingPaper semanticPaper `json:"citingPaper"`
}

type semanticRecommendationsResponse struct {
	RecommendedPapers []semanticPaper `json:"recommendedPapers"`
}
