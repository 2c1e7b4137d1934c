// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

// Key derives a cache key from a prefix, positional arguments, and
// named arguments. Positional order is significant; named arguments
// are folded in as "k=v" in lexicographic key order so that call
// sites cannot produce different keys for the same request. The
// joined string is hashed so keys stay fixed-width.
func Key(prefix string, args []string, named map[string]string) string {
	parts := make([]string, 0, 1+len(args)+len(named))
	parts = append(parts, prefix)
	parts = append(parts, args...)
	if len(named) > 0 {
		keys := make([]string, 0, len(named))
		for k := range named {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+named[k])
		}
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// SearchKey derives the key for a search-tier entry. The query is
// lowercased and trimmed so trivially different spellings share an
// entry.
func SearchKey(source types.PaperSource, query string, limit, offset int, named map[string]string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	args := []string{query, strconv.Itoa(limit), strconv.Itoa(offset)}
	return Key("search:"+string(source), args, named)
}

// PaperKey derives the key for a paper-tier entry.
func PaperKey(source types.PaperSource, paperID string) string {
	return Key("paper:"+string(source), []string{paperID}, nil)
}

// BibTeXKey derives the key for a bibtex-tier entry. The prefix
// carries no source: BibTeX entries are cached across backends.
func BibTeXKey(paperID string) string {
	return Key("bibtex", []string{paperID}, nil)
}
