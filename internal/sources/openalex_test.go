// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/academic-mcp/internal/cache"
)

// --- reconstructAbstract ---

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil map", nil, ""},
		{"empty map", map[string][]int{}, ""},
		{"single word", map[string][]int{"hello": {0}}, "hello"},
		{
			name: "ordered by position",
			index: map[string][]int{
				"dominant":     {1},
				"The":          {0},
				"models":       {4},
				"sequence":     {2},
				"transduction": {3},
			},
			want: "The dominant sequence transduction models",
		},
		{
			name: "repeated word",
			index: map[string][]int{
				"the": {0, 4},
				"cat": {1},
				"sat": {2},
				"on":  {3},
				"mat": {5},
			},
			want: "the cat sat on the mat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconstructAbstract(tt.index); got != tt.want {
				t.Errorf("reconstructAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- openAlexWorkPath ---

func TestOpenAlexWorkPath(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"W2741809807", "/works/W2741809807"},
		{"10.48550/arXiv.1706.03762", "/works/doi:10.48550/arXiv.1706.03762"},
		{"https://doi.org/10.1038/nature14539", "/works/doi:10.1038/nature14539"},
		{"something-else", "/works/something-else"},
	}
	for _, tt := range tests {
		if got := openAlexWorkPath(tt.id); got != tt.want {
			t.Errorf("openAlexWorkPath(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// --- openAlexFilter ---

func TestOpenAlexFilter(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"no filters", Query{}, ""},
		{"year range", Query{YearFrom: 2020, YearTo: 2024}, "publication_year:2020-2024"},
		{"only from", Query{YearFrom: 2020}, "publication_year:>2019"},
		{"only to", Query{YearTo: 2024}, "publication_year:<2025"},
		{"venue only", Query{Venue: "NeurIPS"}, "primary_location.source.display_name.search:NeurIPS"},
		{
			name: "years and venue",
			q:    Query{YearFrom: 2020, YearTo: 2024, Venue: "Nature Machine Intelligence"},
			want: "publication_year:2020-2024,primary_location.source.display_name.search:Nature+Machine+Intelligence",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := openAlexFilter(tt.q); got != tt.want {
				t.Errorf("openAlexFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Mock OpenAlex server ---

const sampleOpenAlexWork = `{
  "id": "https://openalex.org/W2741809807",
  "title": "Attention Is All You Need",
  "display_name": "Attention Is All You Need",
  "doi": "https://doi.org/10.48550/arXiv.1706.03762",
  "publication_year": 2017,
  "publication_date": "2017-06-12",
  "cited_by_count": 100000,
  "authorships": [
    {
      "author": {"id": "https://openalex.org/A123", "display_name": "Ashish Vaswani", "orcid": null},
      "institutions": [{"display_name": "Google Brain"}]
    },
    {
      "author": {"id": "https://openalex.org/A456", "display_name": "Noam Shazeer", "orcid": null},
      "institutions": []
    }
  ],
  "primary_location": {
    "source": {"display_name": "Advances in Neural Information Processing Systems"},
    "is_oa": true,
    "pdf_url": "https://arxiv.org/pdf/1706.03762.pdf",
    "landing_page_url": "https://arxiv.org/abs/1706.03762"
  },
  "abstract_inverted_index": {
    "The": [0], "dominant": [1], "sequence": [2], "transduction": [3], "models": [4]
  },
  "biblio": {"volume": "30", "issue": null, "first_page": "5998", "last_page": "6008"},
  "referenced_works": ["https://openalex.org/W100", "https://openalex.org/W200"]
}`

var sampleOpenAlexList = `{"meta": {"count": 1}, "results": [` + sampleOpenAlexWork + `]}`

func newTestOpenAlex(handler http.Handler) (*OpenAlex, *httptest.Server, func()) {
	ts := httptest.NewServer(handler)
	old := openAlexBase
	openAlexBase = ts.URL
	restore := func() {
		openAlexBase = old
		ts.Close()
	}
	return NewOpenAlex(testConfig(), cache.NewTiers(), testLogger()), ts, restore
}

// --- Search ---

func TestOpenAlexSearch(t *testing.T) {
	var calls atomic.Int32
	var gotQuery, gotPerPage, gotMailto string
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotQuery = r.URL.Query().Get("search")
		gotPerPage = r.URL.Query().Get("per_page")
		gotMailto = r.URL.Query().Get("mailto")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleOpenAlexList)
	}))
	defer done()

	result, err := o.Search(context.Background(), Query{Text: "attention", Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "attention" || gotPerPage != "200" || gotMailto != "test@example.com" {
		t.Errorf("request params = (%q, %q, %q)", gotQuery, gotPerPage, gotMailto)
	}
	if result.TotalResults != 1 || result.HasMore || len(result.Papers) != 1 {
		t.Fatalf("result = total %d, has_more %v, %d papers", result.TotalResults, result.HasMore, len(result.Papers))
	}

	p := result.Papers[0]
	if p.ID != "W2741809807" {
		t.Errorf("ID = %q, want bare work id", p.ID)
	}
	if p.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Year != 2017 || p.PublishedDate != "2017-06-12" {
		t.Errorf("Year/Date = %d/%q", p.Year, p.PublishedDate)
	}
	if p.DOI != "10.48550/arXiv.1706.03762" {
		t.Errorf("DOI = %q, want prefix stripped", p.DOI)
	}
	if p.Venue != "Advances in Neural Information Processing Systems" {
		t.Errorf("Venue = %q", p.Venue)
	}
	if p.Volume != "30" || p.Pages != "5998-6008" {
		t.Errorf("Volume/Pages = %q/%q", p.Volume, p.Pages)
	}
	if p.Abstract != "The dominant sequence transduction models" {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	if p.PDFURL != "https://arxiv.org/pdf/1706.03762.pdf" {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}
	if p.CitationCount != 100000 {
		t.Errorf("CitationCount = %d", p.CitationCount)
	}
	if len(p.Authors) != 2 {
		t.Fatalf("Authors = %v", p.Authors)
	}
	if p.Authors[0].Name != "Ashish Vaswani" || p.Authors[0].Affiliation != "Google Brain" {
		t.Errorf("Authors[0] = %+v", p.Authors[0])
	}
	if p.Authors[0].AuthorID != "A123" {
		t.Errorf("Authors[0].AuthorID = %q, want bare id", p.Authors[0].AuthorID)
	}

	// Identical query served from cache.
	if _, err := o.Search(context.Background(), Query{Text: "attention", Limit: 10}); err != nil {
		t.Fatalf("cached Search: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestOpenAlexSearchOffsetSlicing(t *testing.T) {
	var works []string
	for i := 1; i <= 6; i++ {
		works = append(works, fmt.Sprintf(`{"id": "https://openalex.org/W%d", "title": "Paper %d"}`, i, i))
	}
	body := fmt.Sprintf(`{"meta": {"count": 6}, "results": [%s]}`, strings.Join(works, ","))

	var gotPage string
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		fmt.Fprint(w, body)
	}))
	defer done()

	result, err := o.Search(context.Background(), Query{Text: "x", Limit: 2, Offset: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPage != "1" {
		t.Errorf("page = %q, want 1 for offset within first page", gotPage)
	}
	if len(result.Papers) != 2 || result.Papers[0].ID != "W4" || result.Papers[1].ID != "W5" {
		t.Errorf("papers = %v, want [W4 W5]", ids(result.Papers))
	}
	if !result.HasMore {
		t.Error("HasMore = false, want true with 6 total")
	}

	// Offsets past the first page request the containing page.
	if _, err := o.Search(context.Background(), Query{Text: "x", Limit: 2, Offset: 401}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPage != "3" {
		t.Errorf("page = %q, want 3 for offset 401", gotPage)
	}
}

func TestOpenAlexSearchSortParam(t *testing.T) {
	var gotSort string
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSort = r.URL.Query().Get("sort")
		fmt.Fprint(w, `{"meta": {"count": 0}, "results": []}`)
	}))
	defer done()

	tests := []struct {
		sort string
		want string
	}{
		{"", "relevance_score:desc"},
		{SortRelevance, "relevance_score:desc"},
		{SortPublicationDate, "publication_date:desc"},
		{SortCitationCount, "cited_by_count:desc"},
		{"bogus", "relevance_score:desc"},
	}
	for _, tt := range tests {
		if _, err := o.Search(context.Background(), Query{Text: "q", Sort: tt.sort}); err != nil {
			t.Fatalf("Search(sort=%q): %v", tt.sort, err)
		}
		if gotSort != tt.want {
			t.Errorf("sort %q sent as %q, want %q", tt.sort, gotSort, tt.want)
		}
	}
}

// --- GetPaper ---

func TestOpenAlexGetPaper(t *testing.T) {
	var calls atomic.Int32
	var gotPath string
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotPath = r.URL.Path
		fmt.Fprint(w, sampleOpenAlexWork)
	}))
	defer done()

	p, err := o.GetPaper(context.Background(), "https://doi.org/10.48550/arXiv.1706.03762")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if gotPath != "/works/doi:10.48550/arXiv.1706.03762" {
		t.Errorf("path = %q", gotPath)
	}
	if p == nil || p.ID != "W2741809807" {
		t.Fatalf("paper = %+v", p)
	}

	// Second lookup of the same id hits the paper cache.
	if _, err := o.GetPaper(context.Background(), "https://doi.org/10.48550/arXiv.1706.03762"); err != nil {
		t.Fatalf("cached GetPaper: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestOpenAlexGetPaperNotFound(t *testing.T) {
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
	}))
	defer done()

	p, err := o.GetPaper(context.Background(), "W0")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if p != nil {
		t.Errorf("paper = %+v, want nil for 404", p)
	}
}

// --- SearchByAuthor ---

func TestOpenAlexSearchByAuthor(t *testing.T) {
	var gotFilter, gotSort string
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		gotSort = r.URL.Query().Get("sort")
		fmt.Fprint(w, sampleOpenAlexList)
	}))
	defer done()

	result, err := o.SearchByAuthor(context.Background(), "Ashish Vaswani", 10, 0)
	if err != nil {
		t.Fatalf("SearchByAuthor: %v", err)
	}
	if gotFilter != "raw_author_name.search:Ashish+Vaswani" {
		t.Errorf("filter = %q", gotFilter)
	}
	if gotSort != "publication_year:desc" {
		t.Errorf("sort = %q", gotSort)
	}
	if len(result.Papers) != 1 || result.Query != "Ashish Vaswani" {
		t.Errorf("result = %d papers, query %q", len(result.Papers), result.Query)
	}
}

// --- GetCitations ---

func TestOpenAlexGetCitations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/works/W2741809807", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleOpenAlexWork)
	})
	var gotFilter string
	mux.HandleFunc("/works", func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		fmt.Fprint(w, `{"meta": {"count": 2}, "results": [
			{"id": "https://openalex.org/W300", "title": "Citing One"},
			{"id": "https://openalex.org/W400", "title": "Citing Two"}
		]}`)
	})
	o, _, done := newTestOpenAlex(mux)
	defer done()

	result, err := o.GetCitations(context.Background(), "W2741809807", 10, 0)
	if err != nil {
		t.Fatalf("GetCitations: %v", err)
	}
	if gotFilter != "cites:W2741809807" {
		t.Errorf("filter = %q", gotFilter)
	}
	if result.CitationCount != 2 || len(result.CitingPapers) != 2 {
		t.Errorf("result = total %d, %d citations", result.CitationCount, len(result.CitingPapers))
	}
	if result.CitingPapers[0].ID != "W300" {
		t.Errorf("CitingPapers[0].ID = %q", result.CitingPapers[0].ID)
	}
}

func TestOpenAlexGetCitationsFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/works/W2741809807", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleOpenAlexWork)
	})
	mux.HandleFunc("/works", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	o, _, done := newTestOpenAlex(mux)
	defer done()

	result, err := o.GetCitations(context.Background(), "W2741809807", 10, 0)
	if err != nil {
		t.Fatalf("GetCitations: %v", err)
	}
	if len(result.CitingPapers) != 0 {
		t.Errorf("citations = %v, want empty on fetch failure", result.CitingPapers)
	}
	if result.CitationCount != 100000 {
		t.Errorf("CitationCount = %d, want the target's citation count", result.CitationCount)
	}
}

func TestOpenAlexGetCitationsUnknownPaper(t *testing.T) {
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer done()

	result, err := o.GetCitations(context.Background(), "W0", 10, 0)
	if err != nil {
		t.Fatalf("GetCitations: %v", err)
	}
	if result.CitationCount != 0 || len(result.CitingPapers) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

// --- ReferencedWorks ---

func TestOpenAlexReferencedWorks(t *testing.T) {
	o, _, done := newTestOpenAlex(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleOpenAlexWork)
	}))
	defer done()

	refs, err := o.ReferencedWorks(context.Background(), "W2741809807")
	if err != nil {
		t.Fatalf("ReferencedWorks: %v", err)
	}
	if len(refs) != 2 || refs[0] != "W100" || refs[1] != "W200" {
		t.Errorf("refs = %v, want [W100 W200]", refs)
	}
}

// --- GetBibTeX ---

func TestOpenAlexGetBibTeXUnsupported(t *testing.T) {
	o := NewOpenAlex(testConfig(), cache.NewTiers(), testLogger())
	bib, err := o.GetBibTeX(context.Background(), "W1")
	if err != nil || bib != "" {
		t.Errorf("GetBibTeX = (%q, %v), want empty", bib, err)
	}
}
