// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources implements the backend clients that normalize
// external bibliographic APIs into the shared paper model. Every
// backend satisfies Adapter; the aggregator composes them.
package sources

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/pdiddy/academic-mcp/internal/httputil"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// Adapter is the contract every backend client satisfies.
//
// Lookup operations report "record does not exist" as an empty result
// with a nil error; errors are reserved for transport, auth,
// rate-limit, and server failures. Adapters never retry.
type Adapter interface {
	// Source identifies the backend.
	Source() types.PaperSource

	// Search runs one paged query.
	Search(ctx context.Context, q Query) (*types.SearchResult, error)

	// GetPaper fetches one paper by identifier. A missing paper
	// returns (nil, nil).
	GetPaper(ctx context.Context, id string) (*types.Paper, error)

	// SearchByAuthor lists papers written by the named author.
	SearchByAuthor(ctx context.Context, name string, limit, offset int) (*types.SearchResult, error)

	// GetCitations lists papers citing id. Backends without citation
	// listings return an empty result.
	GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error)

	// GetBibTeX returns the backend's native BibTeX entry for id, or
	// "" when the backend serves none.
	GetBibTeX(ctx context.Context, id string) (string, error)

	// Close drops the adapter's idle connections. The adapter remains
	// usable; the next call reopens its pool.
	Close()
}

// Query holds the search parameters common to every backend.
type Query struct {
	Text     string
	Limit    int
	Offset   int
	Sort     string
	YearFrom int
	YearTo   int
	Venue    string
}

// Sort parameter values.
const (
	SortRelevance       = "relevance"
	SortPublicationDate = "publication_date"
	SortCitationCount   = "citation_count"
)

// named renders the query's optional arguments for cache keys. Every
// argument is always present so identical calls agree on the key.
func (q Query) named() map[string]string {
	return map[string]string{
		"sort":      q.Sort,
		"year_from": strconv.Itoa(q.YearFrom),
		"year_to":   strconv.Itoa(q.YearTo),
		"venue":     q.Venue,
	}
}

// clampLimit applies the default page size and the backend's ceiling.
func clampLimit(limit, ceiling int) int {
	if limit <= 0 {
		return 10
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

// slicePage cuts the requested window out of an over-fetched page.
func slicePage(papers []types.Paper, start, limit int) []types.Paper {
	if start >= len(papers) {
		return []types.Paper{}
	}
	papers = papers[start:]
	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}
	return papers
}

// lazyClient builds a backend's HTTP client on first use. Close drops
// idle connections and clears the client so the next call rebuilds
// it.
type lazyClient struct {
	name string
	cfg  types.Config

	mu sync.Mutex
	c  *http.Client
}

func newLazyClient(name string, cfg types.Config) *lazyClient {
	return &lazyClient{name: name, cfg: cfg}
}

func (l *lazyClient) get() *http.Client {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.c == nil {
		l.c = httputil.NewClient(l.name, l.cfg)
	}
	return l.c
}

func (l *lazyClient) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.c != nil {
		l.c.CloseIdleConnections()
		l.c = nil
	}
}

// baseHeader builds the header set sent on every request.
func baseHeader(userAgent string) http.Header {
	h := http.Header{}
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	return h
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
