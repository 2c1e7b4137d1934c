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
	"sync"
	"time"

	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/httputil"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// arxivBase is the arXiv Atom API endpoint. Declared as a var so
// tests can substitute an httptest server.
var arxivBase = "https://export.arxiv.org/api/query"

// Arxiv queries the arXiv preprint repository. arXiv asks clients to
// space requests by a few seconds, so every request passes through a
// politeness gate that serializes this backend without slowing the
// others.
type Arxiv struct {
	client *lazyClient
	caches *cache.Tiers
	gate   *politeGate
	header http.Header
	log    *slog.Logger
}

// NewArxiv builds the arXiv backend.
func NewArxiv(cfg types.Config, tiers *cache.Tiers, log *slog.Logger) *Arxiv {
	return &Arxiv{
		client: newLazyClient("arxiv", cfg),
		caches: tiers,
		gate:   newPoliteGate(cfg.ArxivDelay),
		header: baseHeader(cfg.UserAgent),
		log:    logger(log).With("source", "arxiv"),
	}
}

// Source identifies the backend.
func (a *Arxiv) Source() types.PaperSource { return types.SourceArxiv }

// Search queries the Atom API. Query text may use arXiv field
// prefixes (ti:, au:, abs:, cat:, all:). Offsets are honored by
// over-fetching and slicing; year bounds are applied client-side
// because the API has no year filter.
func (a *Arxiv) Search(ctx context.Context, q Query) (*types.SearchResult, error) {
	key := cache.SearchKey(types.SourceArxiv, q.Text, q.Limit, q.Offset, q.named())
	if v, ok := a.caches.Search.Get(key); ok {
		return v.(*types.SearchResult), nil
	}

	limit := clampLimit(q.Limit, arxivMaxPage)
	params := url.Values{
		"search_query": {q.Text},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit + q.Offset)},
		"sortBy":       {a.sortOrder(q.Sort)},
		"sortOrder":    {"descending"},
	}

	feed, err := a.fetchFeed(ctx, params)
	if err != nil {
		return nil, err
	}

	entries := feed.Entries
	if q.Offset < len(entries) {
		entries = entries[q.Offset:]
	} else {
		entries = nil
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	papers := make([]types.Paper, 0, len(entries))
	for i := range entries {
		p := parseArxivEntry(&entries[i])
		if p == nil {
			a.log.Warn("skipping entry without arxiv id")
			continue
		}
		if q.YearFrom != 0 && p.Year != 0 && p.Year < q.YearFrom {
			continue
		}
		if q.YearTo != 0 && p.Year != 0 && p.Year > q.YearTo {
			continue
		}
		papers = append(papers, *p)
	}

	result := &types.SearchResult{
		TotalResults:  len(papers),
		ReturnedCount: len(papers),
		Offset:        q.Offset,
		// The Atom API reports no grand total; a full page implies
		// more.
		HasMore: len(entries) == limit,
		Papers:  papers,
		Query:   q.Text,
		Source:  types.SourceArxiv,
	}
	a.caches.Search.Set(key, result)
	return result, nil
}

// GetPaper fetches one preprint by arXiv ID, tolerating arxiv:
// prefixes, abs URLs, and version suffixes.
func (a *Arxiv) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	arxivID := normalizeArxivID(id)
	key := cache.PaperKey(types.SourceArxiv, arxivID)
	if v, ok := a.caches.Paper.Get(key); ok {
		return v.(*types.Paper), nil
	}

	params := url.Values{
		"id_list":     {arxivID},
		"max_results": {"1"},
	}
	feed, err := a.fetchFeed(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}

	// Unknown IDs come back as an error entry without an /abs/ URL,
	// which parses to nil.
	p := parseArxivEntry(&feed.Entries[0])
	if p == nil {
		return nil, nil
	}
	a.caches.Paper.Set(key, p)
	return p, nil
}

// SearchByAuthor uses the au: field prefix with the name quoted.
func (a *Arxiv) SearchByAuthor(ctx context.Context, name string, limit, offset int) (*types.SearchResult, error) {
	return a.Search(ctx, Query{Text: `au:"` + name + `"`, Limit: limit, Offset: offset})
}

// SearchByCategory lists papers in an arXiv category (cs.AI, cs.LG,
// stat.ML, ...), optionally narrowed by a query.
func (a *Arxiv) SearchByCategory(ctx context.Context, category, query string, limit int) (*types.SearchResult, error) {
	text := "cat:" + category
	if query != "" {
		text += " AND " + query
	}
	return a.Search(ctx, Query{Text: text, Limit: limit})
}

// GetCitations returns an empty result; arXiv has no citation index.
func (a *Arxiv) GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error) {
	return &types.CitationResult{PaperID: id, CitingPapers: []types.Paper{}}, nil
}

// GetBibTeX is unsupported; arXiv serves no native BibTeX.
func (a *Arxiv) GetBibTeX(ctx context.Context, id string) (string, error) {
	return "", nil
}

// Close drops idle connections.
func (a *Arxiv) Close() { a.client.close() }

// arxivMaxPage is the largest page requested from the Atom API.
const arxivMaxPage = 1000

func (a *Arxiv) fetchFeed(ctx context.Context, params url.Values) (*arxivFeed, error) {
	if err := a.gate.wait(ctx); err != nil {
		return nil, err
	}
	var feed arxivFeed
	if err := httputil.GetXML(ctx, a.client.get(), arxivBase+"?"+params.Encode(), a.header, &feed); err != nil {
		return nil, fmt.Errorf("querying arxiv: %w", err)
	}
	return &feed, nil
}

func (a *Arxiv) sortOrder(s string) string {
	switch s {
	case "", SortRelevance:
		return "relevance"
	case SortPublicationDate:
		return "submittedDate"
	default:
		a.log.Debug("unsupported sort, using relevance", "sort", s)
		return "relevance"
	}
}

// politeGate spaces requests by a fixed delay. Each caller reserves
// the next slot under the lock and then sleeps outside it, so
// waiters queue up behind one another while other backends proceed
// untouched.
type politeGate struct {
	mu    sync.Mutex
	delay time.Duration
	next  time.Time
}

func newPoliteGate(delay time.Duration) *politeGate {
	return &politeGate{delay: delay}
}

func (g *politeGate) wait(ctx context.Context) error {
	if g.delay <= 0 {
		return nil
	}

	g.mu.Lock()
	now := time.Now()
	if !g.next.After(now) {
		g.next = now.Add(g.delay)
		g.mu.Unlock()
		return nil
	}
	wait := g.next.Sub(now)
	g.next = g.next.Add(g.delay)
	g.mu.Unlock()

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// normalizeArxivID strips the arxiv: prefix, abs URLs, and version
// suffixes down to the bare ID.
func normalizeArxivID(id string) string {
	if len(id) >= 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = id[6:]
	}
	if i := strings.Index(id, "/abs/"); i >= 0 {
		id = id[i+len("/abs/"):]
	}
	return stripArxivVersion(id)
}

// stripArxivVersion removes a trailing vN revision marker.
func stripArxivVersion(id string) string {
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			return id[:vIdx]
		}
	}
	return id
}

// parseArxivEntry normalizes one Atom entry, or returns nil for
// entries without an /abs/ ID (such as the API's error entries).
func parseArxivEntry(entry *arxivEntry) *types.Paper {
	arxivID := extractArxivID(entry.ID)
	if arxivID == "" {
		return nil
	}

	p := &types.Paper{
		ID:       "arxiv:" + arxivID,
		Title:    strings.TrimSpace(strings.ReplaceAll(entry.Title, "\n", " ")),
		Abstract: strings.TrimSpace(strings.ReplaceAll(entry.Summary, "\n", " ")),
		Venue:    "arXiv preprint arXiv:" + arxivID,
		DOI:      entry.DOI,
		ArxivID:  arxivID,
		URL:      entry.ID,
		Source:   types.SourceArxiv,
	}

	for _, au := range entry.Authors {
		if name := strings.TrimSpace(au.Name); name != "" {
			p.Authors = append(p.Authors, types.NewAuthor(name))
		}
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.Year = types.ClampYear(t.Year())
		p.PublishedDate = t.Format("2006-01-02")
	}
	for _, l := range entry.Links {
		if l.Title == "pdf" {
			p.PDFURL = l.Href
			break
		}
	}
	return p
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" becomes "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return stripArxivVersion(idURL[idx+len(prefix):])
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	DOI       string        `xml:"doi"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
}
