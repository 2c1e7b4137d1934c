// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

var (
	dashRuns   = regexp.MustCompile(`[-–—]+`)
	keyPattern = regexp.MustCompile(`@\w+\{([^,]+),`)
)

// maxAbstractLen bounds the abstract field; longer abstracts are cut
// at 997 characters plus an ellipsis.
const maxAbstractLen = 1000

// Generate renders one BibTeX entry for paper. A non-empty customKey
// wins over the paper's own key, which wins over key generation.
// Fields appear in a fixed order and absent fields emit no line.
func Generate(paper *types.Paper, customKey string) string {
	key := customKey
	if key == "" {
		key = paper.BibTeXKey
	}
	if key == "" {
		key = Key(paper.Authors, paper.Year, paper.Title)
	}
	entryType := EntryType(paper.Venue, paper.ArxivID, paper.Volume, paper.Pages)

	lines := []string{fmt.Sprintf("@%s{%s,", entryType, key)}
	add := func(field, value string) {
		lines = append(lines, fmt.Sprintf("  %s = {%s},", field, value))
	}

	if author := FormatAuthors(paper.Authors); author != "" {
		add("author", author)
	}
	if paper.Title != "" {
		add("title", Escape(paper.Title))
	}
	if paper.Venue != "" {
		switch entryType {
		case "article":
			add("journal", Escape(paper.Venue))
		case "inproceedings":
			add("booktitle", Escape(paper.Venue))
		}
	}
	if paper.Year > 0 {
		add("year", strconv.Itoa(paper.Year))
	}
	if paper.Volume != "" {
		add("volume", paper.Volume)
	}
	if paper.Issue != "" {
		add("number", paper.Issue)
	}
	if paper.Pages != "" {
		add("pages", normalizePages(paper.Pages))
	}
	if paper.DOI != "" {
		add("doi", paper.DOI)
	}
	if paper.ArxivID != "" {
		add("eprint", paper.ArxivID)
		add("archiveprefix", "arXiv")
	}
	if paper.URL != "" {
		add("url", paper.URL)
	}
	if paper.Abstract != "" {
		add("abstract", Escape(truncateAbstract(paper.Abstract)))
	}

	last := len(lines) - 1
	lines[last] = strings.TrimSuffix(lines[last], ",")
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

// GenerateBatch renders entries for several papers, deduplicating
// colliding keys by suffixing a, b, c in order of appearance.
func GenerateBatch(papers []*types.Paper) []string {
	entries := make([]string, 0, len(papers))
	seen := make(map[string]int)
	for _, p := range papers {
		key := p.BibTeXKey
		if key == "" {
			key = Key(p.Authors, p.Year, p.Title)
		}
		n := seen[key]
		seen[key] = n + 1
		if n > 0 {
			key += string(rune('a' + n - 1))
		}
		entries = append(entries, Generate(p, key))
	}
	return entries
}

// ParseKey extracts the citation key from a rendered entry, or ""
// when none is found.
func ParseKey(entry string) string {
	m := keyPattern.FindStringSubmatch(entry)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// normalizePages rewrites any run of hyphens or dashes as the BibTeX
// page range separator "--".
func normalizePages(pages string) string {
	return dashRuns.ReplaceAllString(pages, "--")
}

func truncateAbstract(s string) string {
	runes := []rune(s)
	if len(runes) <= maxAbstractLen {
		return s
	}
	return string(runes[:maxAbstractLen-3]) + "..."
}
