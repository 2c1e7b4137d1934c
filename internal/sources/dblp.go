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

	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/httputil"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// dblpBase is the DBLP API root. Declared as a var so tests can
// substitute an httptest server.
var dblpBase = "https://dblp.org"

// dblpMaxPage is the largest page DBLP serves per request.
const dblpMaxPage = 1000

// DBLP queries dblp.org, the computer science bibliography. Its
// distinguishing feature is native BibTeX export.
type DBLP struct {
	client *lazyClient
	caches *cache.Tiers
	header http.Header
	log    *slog.Logger
}

// NewDBLP builds the DBLP backend.
func NewDBLP(cfg types.Config, tiers *cache.Tiers, log *slog.Logger) *DBLP {
	return &DBLP{
		client: newLazyClient("dblp", cfg),
		caches: tiers,
		header: baseHeader(cfg.UserAgent),
		log:    logger(log).With("source", "dblp"),
	}
}

// Source identifies the backend.
func (d *DBLP) Source() types.PaperSource { return types.SourceDBLP }

// Search queries the publication search API. Year and venue filters
// become year:F:T and venue:V clauses appended to the query text;
// DBLP serves relevance order only, other sorts are ignored.
func (d *DBLP) Search(ctx context.Context, q Query) (*types.SearchResult, error) {
	key := cache.SearchKey(types.SourceDBLP, q.Text, q.Limit, q.Offset, q.named())
	if v, ok := d.caches.Search.Get(key); ok {
		return v.(*types.SearchResult), nil
	}

	if q.Sort != "" && q.Sort != SortRelevance {
		d.log.Debug("unsupported sort, using relevance", "sort", q.Sort)
	}

	params := url.Values{
		"q":      {dblpQuery(q)},
		"format": {"json"},
		"h":      {strconv.Itoa(clampLimit(q.Limit, dblpMaxPage))},
		"f":      {strconv.Itoa(q.Offset)},
	}

	var resp dblpSearchResponse
	if err := httputil.GetJSON(ctx, d.client.get(), dblpBase+"/search/publ/api?"+params.Encode(), d.header, &resp); err != nil {
		return nil, fmt.Errorf("searching dblp: %w", err)
	}

	papers := make([]types.Paper, 0, len(resp.Result.Hits.Hit))
	for i := range resp.Result.Hits.Hit {
		p := parseDBLPHit(&resp.Result.Hits.Hit[i])
		if p == nil {
			d.log.Warn("skipping hit without key")
			continue
		}
		papers = append(papers, *p)
	}

	total, _ := strconv.Atoi(resp.Result.Hits.Total)
	result := &types.SearchResult{
		TotalResults:  total,
		ReturnedCount: len(papers),
		Offset:        q.Offset,
		HasMore:       q.Offset+len(papers) < total,
		Papers:        papers,
		Query:         q.Text,
		Source:        types.SourceDBLP,
	}
	d.caches.Search.Set(key, result)
	return result, nil
}

// GetPaper looks up a paper by DBLP key. DBLP has no direct metadata
// lookup, so the key is fed through search; only key-shaped ids (with
// a slash) accept the fuzzy first hit.
func (d *DBLP) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	key := cache.PaperKey(types.SourceDBLP, id)
	if v, ok := d.caches.Paper.Get(key); ok {
		return v.(*types.Paper), nil
	}

	result, err := d.Search(ctx, Query{Text: id, Limit: 5})
	if err != nil {
		return nil, fmt.Errorf("looking up dblp paper: %w", err)
	}
	if len(result.Papers) == 0 || !strings.Contains(id, "/") {
		return nil, nil
	}

	p := result.Papers[0]
	d.caches.Paper.Set(key, &p)
	return &p, nil
}

// SearchByAuthor uses DBLP's author:name query syntax.
func (d *DBLP) SearchByAuthor(ctx context.Context, name string, limit, offset int) (*types.SearchResult, error) {
	return d.Search(ctx, Query{Text: "author:" + name, Limit: limit, Offset: offset})
}

// GetCitations returns an empty result; DBLP has no citation index.
func (d *DBLP) GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error) {
	return &types.CitationResult{PaperID: id, CitingPapers: []types.Paper{}}, nil
}

// GetBibTeX exports a native BibTeX entry. Key-shaped ids are fetched
// from /rec/{key}.bib directly; anything else is searched first and
// the top hit exported. Unavailable entries return "".
func (d *DBLP) GetBibTeX(ctx context.Context, id string) (string, error) {
	key := cache.BibTeXKey("dblp:" + id)
	if v, ok := d.caches.BibTeX.Get(key); ok {
		return v.(string), nil
	}

	if strings.Contains(id, "/") {
		bib, err := d.fetchBibTeX(ctx, id)
		if err != nil {
			d.log.Debug("direct bibtex fetch failed", "paper_id", id, "err", err)
		} else if bib != "" {
			d.caches.BibTeX.Set(key, bib)
			return bib, nil
		}
	}

	result, err := d.Search(ctx, Query{Text: id, Limit: 1})
	if err != nil {
		d.log.Warn("bibtex search failed", "paper_id", id, "err", err)
		return "", nil
	}
	if len(result.Papers) == 0 || result.Papers[0].ID == "" {
		return "", nil
	}
	bib, err := d.fetchBibTeX(ctx, result.Papers[0].ID)
	if err != nil {
		d.log.Warn("bibtex export failed", "paper_id", id, "err", err)
		return "", nil
	}
	if bib != "" {
		d.caches.BibTeX.Set(key, bib)
	}
	return bib, nil
}

// Close drops idle connections.
func (d *DBLP) Close() { d.client.close() }

func (d *DBLP) fetchBibTeX(ctx context.Context, key string) (string, error) {
	text, err := httputil.GetText(ctx, d.client.get(), dblpBase+"/rec/"+key+".bib", d.header)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "@") || strings.Contains(text, "author =") {
		return text, nil
	}
	return "", nil
}

// dblpQuery renders the query text with filter clauses. Open year
// bounds use the * wildcard.
func dblpQuery(q Query) string {
	text := q.Text
	if q.YearFrom != 0 || q.YearTo != 0 {
		from, to := "*", "*"
		if q.YearFrom != 0 {
			from = strconv.Itoa(q.YearFrom)
		}
		if q.YearTo != 0 {
			to = strconv.Itoa(q.YearTo)
		}
		text += " year:" + from + ":" + to
	}
	if q.Venue != "" {
		text += " venue:" + q.Venue
	}
	return text
}

// parseDBLPHit normalizes one search hit, or returns nil for hits
// without a usable key.
func parseDBLPHit(h *dblpHit) *types.Paper {
	key := h.Info.Key
	if key == "" {
		key = h.ID
	}
	key = strings.TrimSuffix(strings.TrimPrefix(key, "https://dblp.org/rec/"), ".html")
	if key == "" {
		return nil
	}

	title := h.Info.Title
	if title == "" {
		title = "Untitled"
	}

	p := &types.Paper{
		ID:        key,
		Title:     title,
		Venue:     h.Info.Venue.First(),
		Volume:    h.Info.Volume,
		Pages:     h.Info.Pages,
		Source:    types.SourceDBLP,
		BibTeXKey: dblpBibTeXKey(key),
	}

	if year, err := strconv.Atoi(h.Info.Year); err == nil {
		p.Year = types.ClampYear(year)
	}
	if doi := h.Info.DOI.First(); strings.HasPrefix(doi, "10.") {
		p.DOI = types.NormalizeDOI(doi)
	}
	if h.Info.URL != "" {
		p.URL = h.Info.URL
	} else {
		p.URL = h.Info.EE
	}

	for _, a := range h.Info.Authors.Author {
		if a.Name == "" {
			continue
		}
		author := types.NewAuthor(a.Name)
		author.AuthorID = a.PID
		p.Authors = append(p.Authors, author)
	}
	return p
}

// dblpBibTeXKey derives the citation key DBLP itself uses: DBLP:
// followed by the last segment of the record key.
func dblpBibTeXKey(key string) string {
	if key == "" {
		return ""
	}
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return "DBLP:" + key[i+1:]
	}
	return "DBLP:" + key
}

// DBLP API JSON structures. The search API collapses single-element
// lists to bare objects, so hit and author lists carry forgiving
// decoders.
type dblpSearchResponse struct {
	Result dblpResult `json:"result"`
}

type dblpResult struct {
	Hits dblpHits `json:"hits"`
}

type dblpHits struct {
	Total string      `json:"@total"`
	Hit   dblpHitList `json:"hit"`
}

type dblpHit struct {
	ID   string   `json:"@id"`
	Info dblpInfo `json:"info"`
}

type dblpInfo struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Year    string      `json:"year"`
	Venue   dblpValue   `json:"venue"`
	Volume  string      `json:"volume"`
	Pages   string      `json:"pages"`
	DOI     dblpValue   `json:"doi"`
	URL     string      `json:"url"`
	EE      string      `json:"ee"`
	Authors dblpAuthors `json:"authors"`
}

type dblpAuthors struct {
	Author dblpAuthorList `json:"author"`
}

type dblpHitList []dblpHit

func (l *dblpHitList) UnmarshalJSON(b []byte) error {
	var many []dblpHit
	if err := json.Unmarshal(b, &many); err == nil {
		*l = many
		return nil
	}
	var one dblpHit
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*l = dblpHitList{one}
	return nil
}

type dblpAuthorList []dblpAuthor

func (l *dblpAuthorList) UnmarshalJSON(b []byte) error {
	var many []dblpAuthor
	if err := json.Unmarshal(b, &many); err == nil {
		*l = many
		return nil
	}
	var one dblpAuthor
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*l = dblpAuthorList{one}
	return nil
}

// dblpAuthor accepts both the bare-string and the annotated-object
// author forms.
type dblpAuthor struct {
	Name string
	PID  string
}

func (a *dblpAuthor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.Name = s
		return nil
	}
	var obj struct {
		Text    string `json:"text"`
		AltText string `json:"@text"`
		PID     string `json:"@pid"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	a.Name = obj.Text
	if a.Name == "" {
		a.Name = obj.AltText
	}
	a.PID = obj.PID
	return nil
}

// dblpValue accepts a bare string or a list of strings, keeping the
// first element.
type dblpValue []string

func (v *dblpValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = dblpValue{s}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*v = many
	return nil
}

// First returns the first element or "".
func (v dblpValue) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
