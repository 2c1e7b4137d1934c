// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/academic-mcp/internal/sources"
	"github.com/pdiddy/academic-mcp/pkg/types"
)

// Tool output formats.
const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// maxAbstract bounds abstract length in list renderings.
const maxAbstract = 300

// paperMarkdown renders one paper as a compact markdown block. An
// index above zero prefixes the title with a list number.
func paperMarkdown(p *types.Paper, index int) string {
	prefix := ""
	if index > 0 {
		prefix = strconv.Itoa(index) + ". "
	}
	lines := []string{prefix + "**" + p.Title + "**"}

	if len(p.Authors) > 0 {
		names := make([]string, 0, 5)
		for _, a := range p.Authors[:min(len(p.Authors), 5)] {
			names = append(names, a.Name)
		}
		authors := strings.Join(names, ", ")
		if len(p.Authors) > 5 {
			authors += fmt.Sprintf(" et al. (%d authors)", len(p.Authors))
		}
		lines = append(lines, "   *Authors*: "+authors)
	}
	if p.Year != 0 {
		lines = append(lines, fmt.Sprintf("   *Year*: %d", p.Year))
	}
	if p.Venue != "" {
		lines = append(lines, "   *Venue*: "+p.Venue)
	}
	if p.CitationCount != 0 {
		lines = append(lines, fmt.Sprintf("   *Citations*: %d", p.CitationCount))
	}
	if p.DOI != "" {
		lines = append(lines, "   *DOI*: "+p.DOI)
	} else if p.ArxivID != "" {
		lines = append(lines, "   *arXiv*: "+p.ArxivID)
	}
	if p.Abstract != "" {
		lines = append(lines, "   *Abstract*: "+clipText(p.Abstract, maxAbstract))
	}
	lines = append(lines, "   *ID*: `"+p.ID+"`")

	return strings.Join(lines, "\n")
}

// paperDetailMarkdown renders the full single-paper view with author,
// publication, identifier, and abstract sections.
func paperDetailMarkdown(p *types.Paper) string {
	lines := []string{"# " + p.Title, ""}

	if len(p.Authors) > 0 {
		lines = append(lines, "## Authors")
		for _, a := range p.Authors {
			entry := "- " + a.Name
			if a.Affiliation != "" {
				entry += " (" + a.Affiliation + ")"
			}
			lines = append(lines, entry)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Publication Info")
	if p.Year != 0 {
		lines = append(lines, fmt.Sprintf("- **Year**: %d", p.Year))
	}
	if p.Venue != "" {
		lines = append(lines, "- **Venue**: "+p.Venue)
	}
	if p.Volume != "" {
		lines = append(lines, "- **Volume**: "+p.Volume)
	}
	if p.Issue != "" {
		lines = append(lines, "- **Issue**: "+p.Issue)
	}
	if p.Pages != "" {
		lines = append(lines, "- **Pages**: "+p.Pages)
	}
	lines = append(lines, fmt.Sprintf("- **Citations**: %d", p.CitationCount), "")

	lines = append(lines, "## Identifiers")
	if p.DOI != "" {
		lines = append(lines, fmt.Sprintf("- **DOI**: [%s](https://doi.org/%s)", p.DOI, p.DOI))
	}
	if p.ArxivID != "" {
		lines = append(lines, fmt.Sprintf("- **arXiv**: [%s](https://arxiv.org/abs/%s)", p.ArxivID, p.ArxivID))
	}
	lines = append(lines, "- **ID**: `"+p.ID+"`")
	if p.URL != "" {
		lines = append(lines, "- **URL**: "+p.URL)
	}
	if p.PDFURL != "" {
		lines = append(lines, "- **PDF**: "+p.PDFURL)
	}
	lines = append(lines, "")

	if p.Abstract != "" {
		lines = append(lines, "## Abstract", p.Abstract, "")
	}

	return strings.Join(lines, "\n")
}

func searchMarkdown(in types.SearchPapersInput, r *types.SearchResult) string {
	lines := []string{"# Search Results for: " + in.Query, ""}
	lines = append(lines, fmt.Sprintf("Found **%d** papers (showing %d)", r.TotalResults, r.ReturnedCount))
	lines = append(lines, "Source: "+string(r.Source))
	if in.Sort != "" && in.Sort != sources.SortRelevance {
		lines = append(lines, "Sorted by: "+in.Sort)
	}
	lines = append(lines, "")

	for i := range r.Papers {
		lines = append(lines, paperMarkdown(&r.Papers[i], in.Offset+i+1), "")
	}

	if r.HasMore {
		lines = append(lines, fmt.Sprintf(
			"*More results available. Use `offset=%d` to see next page.*", in.Offset+in.Limit))
	}
	return strings.Join(lines, "\n")
}

func citationsMarkdown(in types.CitationsInput, r *types.CitationResult) string {
	lines := []string{"# Citations for: " + in.PaperID, ""}
	lines = append(lines, fmt.Sprintf("**Total Citations**: %d", r.CitationCount))
	lines = append(lines, fmt.Sprintf("**Showing**: %d citing papers", len(r.CitingPapers)))
	lines = append(lines, "")

	if len(r.CitingPapers) > 0 {
		lines = append(lines, "## Citing Papers")
		for i := range r.CitingPapers {
			lines = append(lines, paperMarkdown(&r.CitingPapers[i], in.Offset+i+1), "")
		}
	} else {
		lines = append(lines, "*No citing papers found or citation data unavailable.*")
	}

	if r.HasMore {
		lines = append(lines, fmt.Sprintf(
			"*More citations available. Use `offset=%d` for next page.*", in.Offset+in.Limit))
	}
	return strings.Join(lines, "\n")
}

func authorMarkdown(in types.SearchAuthorInput, r *types.SearchResult) string {
	lines := []string{"# Papers by: " + in.AuthorName, ""}
	lines = append(lines, fmt.Sprintf("Found **%d** papers (showing %d)", r.TotalResults, r.ReturnedCount))
	lines = append(lines, "")

	for i := range r.Papers {
		lines = append(lines, paperMarkdown(&r.Papers[i], in.Offset+i+1), "")
	}

	if r.HasMore {
		lines = append(lines, fmt.Sprintf(
			"*More papers available. Use `offset=%d` for next page.*", in.Offset+in.Limit))
	}
	return strings.Join(lines, "\n")
}

func relatedMarkdown(in types.RelatedPapersInput, r *types.RelatedPapersResult) string {
	lines := []string{"# Related Papers for: " + in.PaperID, ""}
	lines = append(lines, "Source: "+r.RecommendationSource)
	lines = append(lines, fmt.Sprintf("Found **%d** related papers", len(r.RelatedPapers)))
	lines = append(lines, "")

	if len(r.RelatedPapers) == 0 {
		lines = append(lines, "*No related papers found. Try a different paper ID.*")
		return strings.Join(lines, "\n")
	}
	for i := range r.RelatedPapers {
		lines = append(lines, paperMarkdown(&r.RelatedPapers[i], i+1), "")
	}
	return strings.Join(lines, "\n")
}

func bibtexBatchMarkdown(b *types.BibTeXBatch) string {
	var lines []string
	if len(b.Entries) > 0 {
		lines = append(lines, "```bibtex", strings.Join(b.Entries, "\n\n"), "```")
	}
	if len(b.Failed) > 0 {
		lines = append(lines, fmt.Sprintf(
			"\n*Failed to generate BibTeX for: %s*", strings.Join(b.Failed, ", ")))
	}
	lines = append(lines, fmt.Sprintf("\n*Generated %d BibTeX entries*", len(b.Entries)))
	return strings.Join(lines, "\n")
}

// clipText cuts s at max bytes, backing up to a rune boundary so the
// cut never splits a multi-byte character.
func clipText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
