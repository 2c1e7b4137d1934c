// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregator routes paper lookups across the five bibliographic
// backends. It detects which backend an identifier belongs to, walks
// fallback chains when the preferred backend fails, fans batch BibTeX
// exports out concurrently, and assembles citation networks.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pdiddy/academic-mcp/internal/bibtex"
	"github.com/pdiddy/academic-mcp/internal/cache"
	"github.com/pdiddy/academic-mcp/internal/sources"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// citationBackend is the slice of the OpenAlex adapter the aggregator
// needs beyond the common contract: the raw reference list feeding the
// cited side of citation networks.
type citationBackend interface {
	sources.Adapter
	ReferencedWorks(ctx context.Context, id string) ([]string, error)
}

// recommendationBackend is the slice of the Semantic Scholar adapter
// serving related-paper lookups.
type recommendationBackend interface {
	sources.Adapter
	GetRelated(ctx context.Context, id string, limit int) (*types.RelatedPapersResult, error)
}

// Aggregator owns the five backend adapters and the cache tiers and
// presents the unified lookup surface the tool façade calls into.
type Aggregator struct {
	openAlex citationBackend
	dblp     sources.Adapter
	semantic recommendationBackend
	arxiv    sources.Adapter
	crossRef sources.Adapter

	bySource map[types.PaperSource]sources.Adapter
	caches   *cache.Tiers
	log      *slog.Logger
}

// New constructs an aggregator with freshly built adapters and cache
// tiers. The same tiers back every adapter, so a paper fetched through
// one chain is a cache hit on the next.
func New(cfg types.Config, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	tiers := cache.NewTiers()
	a := &Aggregator{
		openAlex: sources.NewOpenAlex(cfg, tiers, log),
		dblp:     sources.NewDBLP(cfg, tiers, log),
		semantic: sources.NewSemanticScholar(cfg, tiers, log),
		arxiv:    sources.NewArxiv(cfg, tiers, log),
		crossRef: sources.NewCrossRef(cfg, tiers, log),
		caches:   tiers,
		log:      log,
	}
	a.bySource = map[types.PaperSource]sources.Adapter{
		types.SourceOpenAlex:        a.openAlex,
		types.SourceDBLP:            a.dblp,
		types.SourceSemanticScholar: a.semantic,
		types.SourceArxiv:           a.arxiv,
		types.SourceCrossRef:        a.crossRef,
	}
	return a
}

// adapter returns the adapter registered for source.
func (a *Aggregator) adapter(source types.PaperSource) (sources.Adapter, error) {
	ad, ok := a.bySource[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}
	return ad, nil
}

// Search runs a paper search. An explicit source dispatches to that
// backend alone and its errors surface. With no source the query walks
// OpenAlex, then DBLP, then Semantic Scholar, returning the first
// answer; the last error surfaces only when every backend fails.
func (a *Aggregator) Search(ctx context.Context, source types.PaperSource, q sources.Query) (*types.SearchResult, error) {
	if source != "" {
		ad, err := a.adapter(source)
		if err != nil {
			return nil, err
		}
		return ad.Search(ctx, q)
	}

	var lastErr error
	for _, ad := range []sources.Adapter{a.openAlex, a.dblp, a.semantic} {
		result, err := ad.Search(ctx, q)
		if err != nil {
			lastErr = err
			a.log.Warn("search failed, trying next backend",
				"source", ad.Source(), "query", q.Text, "error", err)
			continue
		}
		return result, nil
	}
	return nil, lastErr
}

// GetPaper resolves an identifier to a paper, trying the backends in
// the order DetectSource implies. Backend errors are logged and the
// chain continues; a miss everywhere returns (nil, nil).
func (a *Aggregator) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	for _, src := range lookupOrder(DetectSource(id)) {
		paper, err := a.bySource[src].GetPaper(ctx, id)
		if err != nil {
			a.log.Debug("paper lookup failed, trying next backend",
				"source", src, "paper_id", id, "error", err)
			continue
		}
		if paper != nil {
			return paper, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

// GetBibTeX returns a BibTeX entry for the identifier. When useDBLP is
// set DBLP's hand-curated entry is preferred; otherwise (or when DBLP
// has nothing) the paper is resolved and an entry synthesized from its
// metadata. Returns ("", nil) when the identifier resolves nowhere.
func (a *Aggregator) GetBibTeX(ctx context.Context, id string, useDBLP bool) (string, error) {
	key := cache.BibTeXKey(id)
	if cached, ok := a.caches.BibTeX.Get(key); ok {
		return cached.(string), nil
	}

	if useDBLP {
		entry, err := a.dblp.GetBibTeX(ctx, id)
		if err != nil {
			a.log.Debug("dblp bibtex lookup failed", "paper_id", id, "error", err)
		} else if entry != "" {
			a.caches.BibTeX.Set(key, entry)
			return entry, nil
		}
	}

	paper, err := a.GetPaper(ctx, id)
	if err != nil {
		return "", err
	}
	if paper == nil {
		return "", nil
	}
	entry := bibtex.Generate(paper, "")
	if entry != "" {
		a.caches.BibTeX.Set(key, entry)
	}
	return entry, nil
}

// GetBibTeXBatch exports BibTeX for every identifier concurrently.
// Successful entries keep the request order; identifiers that resolve
// nowhere or fail are listed in Failed. A cancelled context returns
// the context error instead of a partial batch.
func (a *Aggregator) GetBibTeXBatch(ctx context.Context, ids []string, useDBLP bool) (*types.BibTeXBatch, error) {
	entries := make([]string, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := a.GetBibTeX(ctx, id, useDBLP)
			if err != nil {
				a.log.Warn("bibtex export failed", "paper_id", id, "error", err)
				return
			}
			entries[i] = entry
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &types.BibTeXBatch{Entries: []string{}}
	for i, entry := range entries {
		if entry == "" {
			batch.Failed = append(batch.Failed, ids[i])
			continue
		}
		batch.Entries = append(batch.Entries, entry)
	}
	return batch, nil
}

// GetCitations lists papers citing the identifier. OpenAlex is the
// only backend with a usable citation index; when it fails outright
// the result degrades to an empty listing that still carries the
// paper's citation count when the paper itself is resolvable.
func (a *Aggregator) GetCitations(ctx context.Context, id string, limit, offset int) (*types.CitationResult, error) {
	result, err := a.openAlex.GetCitations(ctx, id, limit, offset)
	if err == nil {
		return result, nil
	}
	a.log.Warn("citation lookup failed", "paper_id", id, "error", err)

	count := 0
	if paper, perr := a.GetPaper(ctx, id); perr == nil && paper != nil {
		count = paper.CitationCount
	}
	return &types.CitationResult{
		PaperID:       id,
		CitationCount: count,
		CitingPapers:  []types.Paper{},
	}, nil
}

// SearchByAuthor lists papers by author name. An explicit source
// dispatches directly; the default chain is OpenAlex with a Semantic
// Scholar fallback.
func (a *Aggregator) SearchByAuthor(ctx context.Context, source types.PaperSource, name string, limit, offset int) (*types.SearchResult, error) {
	if source != "" {
		ad, err := a.adapter(source)
		if err != nil {
			return nil, err
		}
		return ad.SearchByAuthor(ctx, name, limit, offset)
	}

	result, err := a.openAlex.SearchByAuthor(ctx, name, limit, offset)
	if err == nil {
		return result, nil
	}
	a.log.Warn("author search failed, trying semantic scholar",
		"author", name, "error", err)
	return a.semantic.SearchByAuthor(ctx, name, limit, offset)
}

// GetRelatedPapers returns recommendations for the identifier from the
// Semantic Scholar recommendation engine, the only backend offering
// one.
func (a *Aggregator) GetRelatedPapers(ctx context.Context, id string, limit int) (*types.RelatedPapersResult, error) {
	return a.semantic.GetRelated(ctx, id, limit)
}

// CacheStats reports the per-tier cache statistics.
func (a *Aggregator) CacheStats() map[string]cache.Stats {
	return a.caches.Stats()
}

// Close shuts the adapters' connection pools down in parallel and
// waits for all of them.
func (a *Aggregator) Close() {
	var wg sync.WaitGroup
	for _, ad := range a.bySource {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ad.Close()
		}()
	}
	wg.Wait()
}
