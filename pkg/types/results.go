package types

// SearchResult is a page of papers returned by a search operation.
type SearchResult struct {
	// TotalResults is the backend-reported number of matches, which
	// may exceed len(Papers). Backends that cannot report a total
	// return the page length instead.
	TotalResults int `json:"total_results" yaml:"total_results"`

	// ReturnedCount is the number of papers in this page, always
	// equal to len(Papers).
	ReturnedCount int `json:"returned_count" yaml:"returned_count"`

	// Offset is the number of records skipped before this page.
	Offset int `json:"offset" yaml:"offset"`

	// HasMore reports whether another page likely exists.
	HasMore bool `json:"has_more" yaml:"has_more"`

	// Papers holds the page contents in backend rank order.
	Papers []Paper `json:"papers" yaml:"papers"`

	// Query echoes the query text the backend executed.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// Source identifies the backend that served the page.
	Source PaperSource `json:"source" yaml:"source"`
}

// CitationResult is a page of papers citing a given paper.
type CitationResult struct {
	// PaperID is the identifier the citations were looked up for.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// CitationCount is the citation count for the cited paper. When
	// the backend omits a total for the listing, this falls back to
	// the paper's own citation count.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// CitingPapers holds the citing papers.
	CitingPapers []Paper `json:"citing_papers" yaml:"citing_papers"`

	// HasMore reports whether another page likely exists.
	HasMore bool `json:"has_more" yaml:"has_more"`
}

// RelatedPapersResult holds recommendations for a given paper.
type RelatedPapersResult struct {
	// PaperID is the identifier recommendations were requested for.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// RelatedPapers holds the recommended papers; empty when the
	// recommendation backend has nothing for this paper.
	RelatedPapers []Paper `json:"related_papers" yaml:"related_papers"`

	// RecommendationSource names the engine that produced the list.
	RecommendationSource string `json:"recommendation_source" yaml:"recommendation_source"`
}

// NetworkNode is one paper in a citation network.
type NetworkNode struct {
	// PaperID is the node's paper identifier.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// CitationCount is the paper's citation count.
	CitationCount int `json:"citation_count" yaml:"citation_count"`
}

// NetworkEdge is one citation link in a citation network. Source
// cites Target.
type NetworkEdge struct {
	// Source is the citing paper's identifier.
	Source string `json:"source" yaml:"source"`

	// Target is the cited paper's identifier.
	Target string `json:"target" yaml:"target"`
}

// CitationNetwork is a graph of papers around a center paper.
type CitationNetwork struct {
	// CenterPaperID is the paper the network was grown from.
	CenterPaperID string `json:"center_paper_id" yaml:"center_paper_id"`

	// Depth is the traversal depth the network was built with.
	Depth int `json:"depth" yaml:"depth"`

	// Nodes holds the papers, center first.
	Nodes []NetworkNode `json:"nodes" yaml:"nodes"`

	// Edges holds the citation links between nodes.
	Edges []NetworkEdge `json:"edges" yaml:"edges"`

	// Truncated reports whether growth stopped at the node budget.
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// NodeCount returns the number of nodes in the network.
func (n *CitationNetwork) NodeCount() int { return len(n.Nodes) }

// EdgeCount returns the number of edges in the network.
func (n *CitationNetwork) EdgeCount() int { return len(n.Edges) }

// BibTeXBatch is the outcome of a batch BibTeX export. Entries keeps
// the caller's requested order; Failed lists the identifiers that
// produced no entry.
type BibTeXBatch struct {
	// Entries holds one BibTeX entry per successful identifier, in
	// request order.
	Entries []string `json:"entries" yaml:"entries"`

	// Failed lists identifiers that could not be exported.
	Failed []string `json:"failed,omitempty" yaml:"failed,omitempty"`
}
