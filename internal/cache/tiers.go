// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import "time"

// Tier capacities and lifetimes. Search results go stale quickly,
// paper metadata is fairly stable, and BibTeX entries almost never
// change.
const (
	SearchMaxEntries = 500
	SearchTTL        = 10 * time.Minute

	PaperMaxEntries = 2000
	PaperTTL        = time.Hour

	BibTeXMaxEntries = 1000
	BibTeXTTL        = 24 * time.Hour
)

// Tiers bundles the three caches the aggregator and its backends
// share. One Tiers instance exists per aggregator.
type Tiers struct {
	Search *Cache
	Paper  *Cache
	BibTeX *Cache
}

// NewTiers builds the three tiers at their standard capacities.
func NewTiers() *Tiers {
	return &Tiers{
		Search: New(SearchMaxEntries, SearchTTL),
		Paper:  New(PaperMaxEntries, PaperTTL),
		BibTeX: New(BibTeXMaxEntries, BibTeXTTL),
	}
}

// Clear empties all three tiers.
func (t *Tiers) Clear() {
	t.Search.Clear()
	t.Paper.Clear()
	t.BibTeX.Clear()
}

// Stats reports per-tier statistics keyed by tier name.
func (t *Tiers) Stats() map[string]Stats {
	return map[string]Stats{
		"search": t.Search.Stats(),
		"paper":  t.Paper.Stats(),
		"bibtex": t.BibTeX.Stats(),
	}
}
