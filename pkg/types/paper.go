// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// PaperSource identifies the backend that produced a record.
type PaperSource string

const (
	SourceOpenAlex        PaperSource = "openalex"
	SourceDBLP            PaperSource = "dblp"
	SourceSemanticScholar PaperSource = "semantic_scholar"
	SourceArxiv           PaperSource = "arxiv"
	SourceCrossRef        PaperSource = "crossref"
)

// AllSources lists every backend in fallback-priority order for
// default-source paper lookups.
var AllSources = []PaperSource{
	SourceOpenAlex,
	SourceDBLP,
	SourceSemanticScholar,
	SourceArxiv,
	SourceCrossRef,
}

// Valid reports whether s is a member of the source enum.
func (s PaperSource) Valid() bool {
	switch s {
	case SourceOpenAlex, SourceDBLP, SourceSemanticScholar, SourceArxiv, SourceCrossRef:
		return true
	}
	return false
}

// Author holds one contributor of a paper.
type Author struct {
	// Name is the author's display name, whitespace-trimmed.
	Name string `json:"name" yaml:"name"`

	// ORCID is the author's ORCID identifier, when the backend reports one.
	ORCID string `json:"orcid,omitempty" yaml:"orcid,omitempty"`

	// Affiliation is the author's first listed institution.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`

	// AuthorID is the backend-scoped author identifier.
	AuthorID string `json:"author_id,omitempty" yaml:"author_id,omitempty"`
}

// NewAuthor builds an Author with the name trimmed.
func NewAuthor(name string) Author {
	return Author{Name: strings.TrimSpace(name)}
}

// Paper is the canonical bibliographic record every backend normalizes into.
type Paper struct {
	// ID is the backend-scoped identifier (OpenAlex work ID, DBLP key,
	// S2 paper ID, "arxiv:NNNN.NNNNN", or a DOI for CrossRef).
	ID string `json:"id" yaml:"id"`

	// Title is the paper title; never empty ("Untitled" when the
	// backend omits it).
	Title string `json:"title" yaml:"title"`

	// Authors lists contributors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Abstract is the full abstract when available.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Year is the publication year, 1900..2100; zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// PublishedDate is the ISO publication date (YYYY-MM-DD) when known.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// Venue is the journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Volume, Issue, and Pages carry journal placement when reported.
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// DOI is stored bare: scheme, authority, and "doi:" prefix are
	// stripped on ingress.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier without version suffix.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// URL is the paper's landing page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL is a direct open-access PDF link when one exists.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// CitationCount is the number of citing works known to the backend.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// Source identifies the backend that produced this record.
	Source PaperSource `json:"source" yaml:"source"`

	// BibTeXKey is a pre-computed citation key, when the backend
	// supplies one (DBLP does).
	BibTeXKey string `json:"bibtex_key,omitempty" yaml:"bibtex_key,omitempty"`
}

// NormalizeDOI strips the resolver prefixes from a DOI so that
// "https://doi.org/D", "http://doi.org/D", "doi:D", and "D" all
// normalize to "D". Matching is case-insensitive; the DOI body is
// preserved as given.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			return doi[len(prefix):]
		}
	}
	return doi
}

// ClampYear returns y when it falls in the valid publication range,
// zero otherwise.
func ClampYear(y int) int {
	if y < 1900 || y > 2100 {
		return 0
	}
	return y
}
