// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/httputil"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// openAlexBase is the OpenAlex API root. Declared as a var so tests
// can substitute an httptest server.
var openAlexBase = "https://api.openalex.org"

// openAlexPageSize is the fixed page requested from OpenAlex. Offsets
// are honored by requesting the containing page and slicing, never by
// inflating the page size.
const openAlexPageSize = 200

// OpenAlex queries api.openalex.org, the catch-all backend for paper
// lookups.
type OpenAlex struct {
	client *lazyClient
	caches *cache.Tiers
	email  string
	header http.Header
	log    *slog.Logger
}

// NewOpenAlex builds the OpenAlex backend. A non-empty cfg.Email
// activates the polite pool.
func NewOpenAlex(cfg types.Config, tiers *cache.Tiers, log *slog.Logger) *OpenAlex {
	return &OpenAlex{
		client: newLazyClient("openalex", cfg),
		caches: tiers,
		email:  cfg.Email,
		header: baseHeader(cfg.UserAgent),
		log:    logger(log).With("source", "openalex"),
	}
}

// Source identifies the backend.
func (o *OpenAlex) Source() types.PaperSource { return types.SourceOpenAlex }

// Search queries the works endpoint.
func (o *OpenAlex) Search(ctx context.Context, q Query) (*types.SearchResult, error) {
	key := cache.SearchKey(types.SourceOpenAlex, q.Text, q.Limit, q.Offset, q.named())
	if v, ok := o.caches.Search.Get(key); ok {
		return v.(*types.SearchResult), nil
	}

	params := url.Values{
		"search":   {q.Text},
		"per_page": {strconv.Itoa(openAlexPageSize)},
		"page":     {strconv.Itoa(1 + q.Offset/openAlexPageSize)},
		"sort":     {o.sortOrder(q.Sort)},
	}
	if f := openAlexFilter(q); f != "" {
		params.Set("filter", f)
	}
	o.politeParams(params)

	var resp openAlexListResponse
	if err := httputil.GetJSON(ctx, o.client.get(), openAlexBase+"/works?"+params.Encode(), o.header, &resp); err != nil {
		return nil, fmt.Errorf("searching openalex: %w", err)
	}

	papers := o.parseWorks(resp.Results)
	papers = slicePage(papers, q.Offset%openAlexPageSize, q.Limit)

	result := &types.SearchResult{
		TotalResults:  resp.Meta.Count,
		ReturnedCount: len(papers),
		Offset:        q.Offset,
		HasMore:       q.Offset+len(papers) < resp.Meta.Count,
		Papers:        papers,
		Query:         q.Text,
		Source:        types.SourceOpenAlex,
	}
	o.caches.Search.Set(key, result)
	return result, nil
}

// GetPaper fetches one work. Accepts OpenAlex work IDs, DOIs in any
// spelling, and falls back to handing the raw id to the works
// endpoint.
func (o *OpenAlex) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	key := cache.PaperKey(types.SourceOpenAlex, id)
	if v, ok := o.caches.Paper.Get(key); ok {
		return v.(*types.Paper), nil
	}

	w, err := o.fetchWork(ctx, id)
	if err != nil {
		if httputil.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	p := parseOpenAlexWork(w)
	if p == nil {
		return nil, nil
	}
	o.caches.Paper.Set(key, p)
	return p, nil
}

// SearchByAuthor filters works by author name, newest first.
func (o *OpenAlex) SearchByAuthor(ctx context.Context, name string, limit, offset int) (*types.SearchResult, error) {
	key := cache.SearchKey(types.SourceOpenAlex, "author:"+name, limit, offset, nil)
	if v, ok := o.caches.Search.Get(key); ok {
		return v.(*types.SearchResult), nil
	}

	params := url.Values{
		"filter":   {"raw_author_name.search:" + url.QueryEscape(name)},
		"sort":     {"publication_year:desc"},
		"per_page": {strconv.Itoa(openAlexPageSize)},
		"page":     {strconv.Itoa(1 + offset/openAlexPageSize)},
	}
	o.politeParams(params)

	var resp openAlexListResponse
	if err := httputil.GetJSON(ctx, o.client.get(), openAlexBase+"/works?"+params.Encode(), o.header, &resp); err != nil {
		return nil, fmt.Errorf("searching openalex by author: %w", err)
	}

	papers := o.parseWorks(resp.Results)
	papers = slicePage(papers, offset%openAlexPageSize, limit)

	result := &types.SearchResult{
		TotalResults:  resp.Meta.Count,
		ReturnedCount: len(papers),
		Offset:        offset,
		HasMore:       offset+len(papers) < resp.Meta.Count,
		Papers:        papers,
		Query:         name,
		Source:        types.SourceOpenAlex,
	}
	o.caches.Search.Set(key, result)
	return result, nil
}

// GetCitations lists works citing id via the cites filter. The target
// paper is resolved first to obtain its OpenAlex ID; a failing
// citation fetch degrades to an empty result carrying the target's
// citation count.
func (o *OpenAlex) GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error) {
	key := cache.SearchKey(types.SourceOpenAlex, "citations:"+id, limit, offset, nil)
	if v, ok := o.caches.Search.Get(key); ok {
		return v.(*types.CitationResult), nil
	}

	target, err := o.GetPaper(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving cited paper: %w", err)
	}
	if target == nil {
		return &types.CitationResult{PaperID: id, CitingPapers: []types.Paper{}}, nil
	}

	params := url.Values{
		"filter":   {"cites:" + target.ID},
		"per_page": {strconv.Itoa(openAlexPageSize)},
		"page":     {strconv.Itoa(1 + offset/openAlexPageSize)},
	}
	o.politeParams(params)

	var resp openAlexListResponse
	if err := httputil.GetJSON(ctx, o.client.get(), openAlexBase+"/works?"+params.Encode(), o.header, &resp); err != nil {
		o.log.Warn("citation fetch failed", "paper_id", id, "err", err)
		return &types.CitationResult{
			PaperID:       id,
			CitationCount: target.CitationCount,
			CitingPapers:  []types.Paper{},
		}, nil
	}

	papers := o.parseWorks(resp.Results)
	papers = slicePage(papers, offset%openAlexPageSize, limit)

	result := &types.CitationResult{
		PaperID:       id,
		CitationCount: resp.Meta.Count,
		CitingPapers:  papers,
		HasMore:       offset+len(papers) < resp.Meta.Count,
	}
	o.caches.Search.Set(key, result)
	return result, nil
}

// GetBibTeX is unsupported; OpenAlex serves no native BibTeX.
func (o *OpenAlex) GetBibTeX(ctx context.Context, id string) (string, error) {
	return "", nil
}

// ReferencedWorks returns the OpenAlex IDs the work cites, for
// citation-network assembly.
func (o *OpenAlex) ReferencedWorks(ctx context.Context, id string) ([]string, error) {
	w, err := o.fetchWork(ctx, id)
	if err != nil {
		if httputil.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	refs := make([]string, 0, len(w.ReferencedWorks))
	for _, r := range w.ReferencedWorks {
		refs = append(refs, strings.TrimPrefix(r, "https://openalex.org/"))
	}
	return refs, nil
}

// Close drops idle connections.
func (o *OpenAlex) Close() { o.client.close() }

func (o *OpenAlex) fetchWork(ctx context.Context, id string) (*openAlexWork, error) {
	u := openAlexBase + openAlexWorkPath(id)
	params := url.Values{}
	o.politeParams(params)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var w openAlexWork
	if err := httputil.GetJSON(ctx, o.client.get(), u, o.header, &w); err != nil {
		return nil, fmt.Errorf("fetching openalex work: %w", err)
	}
	return &w, nil
}

func (o *OpenAlex) politeParams(params url.Values) {
	if o.email != "" {
		params.Set("mailto", o.email)
	}
}

func (o *OpenAlex) parseWorks(works []openAlexWork) []types.Paper {
	papers := make([]types.Paper, 0, len(works))
	for i := range works {
		p := parseOpenAlexWork(&works[i])
		if p == nil {
			o.log.Warn("skipping work without id")
			continue
		}
		papers = append(papers, *p)
	}
	return papers
}

func (o *OpenAlex) sortOrder(s string) string {
	switch s {
	case "", SortRelevance:
		return "relevance_score:desc"
	case SortPublicationDate:
		return "publication_date:desc"
	case SortCitationCount:
		return "cited_by_count:desc"
	default:
		o.log.Debug("unsupported sort, using relevance", "sort", s)
		return "relevance_score:desc"
	}
}

// openAlexWorkPath routes an identifier to the works endpoint. DOIs
// in any spelling go through the doi: form.
func openAlexWorkPath(id string) string {
	if strings.HasPrefix(id, "10.") || strings.Contains(id, "doi.org") {
		return "/works/doi:" + types.NormalizeDOI(id)
	}
	return "/works/" + id
}

// openAlexFilter renders the filter parameter. A single year bound
// uses the exclusive forms >F-1 / <T+1.
func openAlexFilter(q Query) string {
	var filters []string
	switch {
	case q.YearFrom != 0 && q.YearTo != 0:
		filters = append(filters, fmt.Sprintf("publication_year:%d-%d", q.YearFrom, q.YearTo))
	case q.YearFrom != 0:
		filters = append(filters, fmt.Sprintf("publication_year:>%d", q.YearFrom-1))
	case q.YearTo != 0:
		filters = append(filters, fmt.Sprintf("publication_year:<%d", q.YearTo+1))
	}
	if q.Venue != "" {
		filters = append(filters, "primary_location.source.display_name.search:"+url.QueryEscape(q.Venue))
	}
	return strings.Join(filters, ",")
}

// parseOpenAlexWork normalizes one work record, or returns nil for
// records without an id.
func parseOpenAlexWork(w *openAlexWork) *types.Paper {
	if w.ID == "" {
		return nil
	}
	id := strings.TrimPrefix(w.ID, "https://openalex.org/")

	title := w.Title
	if title == "" {
		title = w.DisplayName
	}
	if title == "" {
		title = "Untitled"
	}

	p := &types.Paper{
		ID:            id,
		Title:         title,
		Abstract:      reconstructAbstract(w.AbstractInvertedIndex),
		Year:          types.ClampYear(w.PublicationYear),
		PublishedDate: w.PublicationDate,
		Venue:         w.PrimaryLocation.Source.DisplayName,
		Volume:        w.Biblio.Volume,
		Issue:         w.Biblio.Issue,
		CitationCount: w.CitedByCount,
		Source:        types.SourceOpenAlex,
	}

	for _, as := range w.Authorships {
		if as.Author.DisplayName == "" {
			continue
		}
		a := types.NewAuthor(as.Author.DisplayName)
		a.ORCID = as.Author.ORCID
		a.AuthorID = strings.TrimPrefix(as.Author.ID, "https://openalex.org/")
		if len(as.Institutions) > 0 {
			a.Affiliation = as.Institutions[0].DisplayName
		}
		p.Authors = append(p.Authors, a)
	}

	if w.DOI != "" {
		p.DOI = types.NormalizeDOI(w.DOI)
	}
	if w.Biblio.FirstPage != "" && w.Biblio.LastPage != "" {
		p.Pages = w.Biblio.FirstPage + "-" + w.Biblio.LastPage
	}
	if w.PrimaryLocation.LandingPageURL != "" {
		p.URL = w.PrimaryLocation.LandingPageURL
	} else {
		p.URL = "https://openalex.org/" + id
	}
	p.PDFURL = openAlexPDFURL(w)
	return p
}

// openAlexPDFURL prefers the primary location's open-access PDF, then
// scans the remaining locations.
func openAlexPDFURL(w *openAlexWork) string {
	if w.PrimaryLocation.IsOA && w.PrimaryLocation.PDFURL != "" {
		return w.PrimaryLocation.PDFURL
	}
	for _, loc := range w.Locations {
		if loc.IsOA && loc.PDFURL != "" {
			return loc.PDFURL
		}
	}
	return ""
}

// reconstructAbstract converts the abstract inverted index back to
// plain text. The index maps each word to the positions where it
// appears.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range index {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexListResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count int `json:"count"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DisplayName           string               `json:"display_name"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	PublicationDate       string               `json:"publication_date"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	Locations             []openAlexLocation   `json:"locations"`
	Biblio                openAlexBiblio       `json:"biblio"`
	ReferencedWorks       []string             `json:"referenced_works"`
}

type openAlexAuthorship struct {
	Author       openAlexAuthor        `json:"author"`
	Institutions []openAlexInstitution `json:"institutions"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}

type openAlexInstitution struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	IsOA           bool                `json:"is_oa"`
	PDFURL         string              `json:"pdf_url"`
	LandingPageURL string              `json:"landing_page_url"`
	Source         openAlexVenueSource `json:"source"`
}

type openAlexVenueSource struct {
	DisplayName string `json:"display_name"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}
