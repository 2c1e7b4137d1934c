// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
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

// crossRefBase is the CrossRef API root. Declared as a var so tests
// can substitute an httptest server.
var crossRefBase = "https://api.crossref.org"

// crossRefMaxRows is the largest page CrossRef serves per request.
const crossRefMaxRows = 1000

// CrossRef queries api.crossref.org, the DOI registration authority.
// A contact email routes requests through the polite pool.
type CrossRef struct {
	client *lazyClient
	caches *cache.Tiers
	email  string
	header http.Header
	log    *slog.Logger
}

// NewCrossRef builds the CrossRef backend.
func NewCrossRef(cfg types.Config, tiers *cache.Tiers, log *slog.Logger) *CrossRef {
	return &CrossRef{
		client: newLazyClient("crossref", cfg),
		caches: tiers,
		email:  cfg.Email,
		header: baseHeader(cfg.UserAgent),
		log:    logger(log).With("source", "crossref"),
	}
}

// Source identifies the backend.
func (c *CrossRef) Source() types.PaperSource { return types.SourceCrossRef }

// Search queries the works endpoint. Venue filtering is applied to
// the returned page; CrossRef's container-title filter matches too
// loosely to be useful.
func (c *CrossRef) Search(ctx context.Context, q Query) (*types.SearchResult, error) {
	key := cache.SearchKey(types.SourceCrossRef, q.Text, q.Limit, q.Offset, q.named())
	if v, ok := c.caches.Search.Get(key); ok {
		return v.(*types.SearchResult), nil
	}

	params := url.Values{
		"query":  {q.Text},
		"rows":   {strconv.Itoa(clampLimit(q.Limit, crossRefMaxRows))},
		"offset": {strconv.Itoa(q.Offset)},
	}
	var filters []string
	if q.YearFrom != 0 {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d", q.YearFrom))
	}
	if q.YearTo != 0 {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d", q.YearTo))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	switch q.Sort {
	case "":
	case SortRelevance:
		params.Set("sort", "relevance")
	case SortPublicationDate:
		params.Set("sort", "published")
	case SortCitationCount:
		params.Set("sort", "is-referenced-by-count")
	default:
		c.log.Debug("unsupported sort, using relevance", "sort", q.Sort)
	}
	c.politeParams(params)

	var resp crossRefListResponse
	if err := httputil.GetJSON(ctx, c.client.get(), crossRefBase+"/works?"+params.Encode(), c.header, &resp); err != nil {
		return nil, fmt.Errorf("searching crossref: %w", err)
	}

	papers := make([]types.Paper, 0, len(resp.Message.Items))
	for i := range resp.Message.Items {
		p := parseCrossRefWork(&resp.Message.Items[i])
		if p == nil {
			c.log.Warn("skipping work without doi")
			continue
		}
		if q.Venue != "" && p.Venue != "" && !strings.Contains(strings.ToLower(p.Venue), strings.ToLower(q.Venue)) {
			continue
		}
		papers = append(papers, *p)
	}

	total := resp.Message.TotalResults
	if total == 0 {
		total = len(papers)
	}
	result := &types.SearchResult{
		TotalResults:  total,
		ReturnedCount: len(papers),
		Offset:        q.Offset,
		HasMore:       q.Offset+len(papers) < total,
		Papers:        papers,
		Query:         q.Text,
		Source:        types.SourceCrossRef,
	}
	c.caches.Search.Set(key, result)
	return result, nil
}

// GetPaper resolves a DOI to its authoritative metadata.
func (c *CrossRef) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	doi := types.NormalizeDOI(id)
	key := cache.PaperKey(types.SourceCrossRef, doi)
	if v, ok := c.caches.Paper.Get(key); ok {
		return v.(*types.Paper), nil
	}

	params := url.Values{}
	c.politeParams(params)
	u := crossRefBase + "/works/" + doi
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var resp crossRefWorkResponse
	if err := httputil.GetJSON(ctx, c.client.get(), u, c.header, &resp); err != nil {
		if httputil.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving doi: %w", err)
	}
	p := parseCrossRefWork(&resp.Message)
	if p == nil {
		return nil, nil
	}
	c.caches.Paper.Set(key, p)
	return p, nil
}

// ResolveDOI is GetPaper under its registry name.
func (c *CrossRef) ResolveDOI(ctx context.Context, doi string) (*types.Paper, error) {
	return c.GetPaper(ctx, doi)
}

// SearchByAuthor uses the query.author parameter, which matches on
// author names only.
func (c *CrossRef) SearchByAuthor(ctx context.Context, name string, limit, offset int) (*types.SearchResult, error) {
	key := cache.SearchKey(types.SourceCrossRef, "author:"+name, limit, offset, nil)
	if v, ok := c.caches.Search.Get(key); ok {
		return v.(*types.SearchResult), nil
	}

	params := url.Values{
		"query.author": {name},
		"rows":         {strconv.Itoa(clampLimit(limit, crossRefMaxRows))},
		"offset":       {strconv.Itoa(offset)},
	}
	c.politeParams(params)

	var resp crossRefListResponse
	if err := httputil.GetJSON(ctx, c.client.get(), crossRefBase+"/works?"+params.Encode(), c.header, &resp); err != nil {
		return nil, fmt.Errorf("searching crossref by author: %w", err)
	}

	papers := make([]types.Paper, 0, len(resp.Message.Items))
	for i := range resp.Message.Items {
		if p := parseCrossRefWork(&resp.Message.Items[i]); p != nil {
			papers = append(papers, *p)
		}
	}

	total := resp.Message.TotalResults
	if total == 0 {
		total = len(papers)
	}
	result := &types.SearchResult{
		TotalResults:  total,
		ReturnedCount: len(papers),
		Offset:        offset,
		HasMore:       offset+len(papers) < total,
		Papers:        papers,
		Query:         "author:" + name,
		Source:        types.SourceCrossRef,
	}
	c.caches.Search.Set(key, result)
	return result, nil
}

// GetCitations returns an empty result. CrossRef reports only the
// aggregate is-referenced-by-count, not the citing works.
func (c *CrossRef) GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error) {
	return &types.CitationResult{PaperID: id, CitingPapers: []types.Paper{}}, nil
}

// GetBibTeX synthesizes an entry from the resolved metadata.
func (c *CrossRef) GetBibTeX(ctx context.Context, id string) (string, error) {
	key := cache.BibTeXKey("crossref:" + id)
	if v, ok := c.caches.BibTeX.Get(key); ok {
		return v.(string), nil
	}

	paper, err := c.GetPaper(ctx, id)
	if err != nil {
		return "", err
	}
	if paper == nil {
		return "", nil
	}
	bib := bibtex.Generate(paper, "")
	c.caches.BibTeX.Set(key, bib)
	return bib, nil
}

// Close drops idle connections.
func (c *CrossRef) Close() { c.client.close() }

func (c *CrossRef) politeParams(params url.Values) {
	if c.email != "" {
		params.Set("mailto", c.email)
	}
}

// parseCrossRefWork normalizes one work record, or returns nil for
// records without a DOI.
func parseCrossRefWork(w *crossRefWork) *types.Paper {
	if w.DOI == "" {
		return nil
	}

	title := "Untitled"
	if len(w.Title) > 0 && w.Title[0] != "" {
		title = w.Title[0]
	}

	p := &types.Paper{
		ID:            w.DOI,
		Title:         title,
		Abstract:      w.Abstract,
		Volume:        w.Volume,
		Issue:         w.Issue,
		Pages:         w.Page,
		DOI:           w.DOI,
		CitationCount: w.IsReferencedByCount,
		Source:        types.SourceCrossRef,
	}

	if len(w.ContainerTitle) > 0 {
		p.Venue = w.ContainerTitle[0]
	}
	p.Year = types.ClampYear(crossRefYear(w))
	if w.URL != "" {
		p.URL = w.URL
	} else {
		p.URL = "https://doi.org/" + w.DOI
	}

	for _, a := range w.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given + " " + a.Family))
		if name == "" {
			continue
		}
		author := types.NewAuthor(name)
		author.ORCID = a.ORCID
		if len(a.Affiliation) > 0 {
			author.Affiliation = a.Affiliation[0].Name
		}
		p.Authors = append(p.Authors, author)
	}
	return p
}

// crossRefYear picks the year from the first populated date field, in
// print, online, created order.
func crossRefYear(w *crossRefWork) int {
	for _, d := range []crossRefDate{w.PublishedPrint, w.PublishedOnline, w.Created} {
		if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
			return d.DateParts[0][0]
		}
	}
	return 0
}

// CrossRef API JSON structures.
type crossRefListResponse struct {
	Message crossRefListMessage `json:"message"`
}

type crossRefListMessage struct {
	TotalResults int            `json:"total-results"`
	Items        []crossRefWork `json:"items"`
}

type crossRefWorkResponse struct {
	Message crossRefWork `json:"message"`
}

type crossRefWork struct {
	DOI                 string            `json:"DOI"`
	Title               []string          `json:"title"`
	Abstract            string            `json:"abstract"`
	Author              []crossRefAuthor  `json:"author"`
	ContainerTitle      []string          `json:"container-title"`
	Volume              string            `json:"volume"`
	Issue               string            `json:"issue"`
	Page                string            `json:"page"`
	URL                 string            `json:"URL"`
	IsReferencedByCount int               `json:"is-referenced-by-count"`
	PublishedPrint      crossRefDate      `json:"published-print"`
	PublishedOnline     crossRefDate      `json:"published-online"`
	Created             crossRefDate      `json:"created"`
}

type crossRefAuthor struct {
	Given       string                `json:"given"`
	Family      string                `json:"family"`
	ORCID       string                `json:"ORCID"`
	Affiliation []crossRefAffiliation `json:"affiliation"`
}

// crossRefAffiliation accepts both the {"name": ...} object form and
// the bare-string form.
type crossRefAffiliation struct {
	Name string `json:"name"`
}

func (a *crossRefAffiliation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	a.Name = obj.Name
	return nil
}

type crossRefDate struct {
	DateParts [][]int `json:"date-parts"`
}
