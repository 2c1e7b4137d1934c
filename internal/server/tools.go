// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func searchPapersTool() mcp.Tool {
	return mcp.NewTool("academic_search_papers",
		mcp.WithDescription(`Search for academic papers across multiple databases.

Searches OpenAlex (primary), with fallback to DBLP and Semantic Scholar.

Search tips:
- Use specific keywords for better results
- Combine with author/year/venue filters for precision
- Use doi for exact paper lookup
- Use sort to order by date or citations (default: relevance)

Examples:
- query="attention is all you need" finds the Transformer paper
- query="machine learning", author="Hinton" finds papers by Geoffrey Hinton
- query="neural networks", year_from=2020, year_to=2024 finds recent papers
- query="LLM", sort="publication_date" finds the newest LLM papers

Returns formatted search results with paper titles, authors, years, and IDs.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Search Academic Papers", true)),
		mcp.WithString("query", mcp.Required(), mcp.MinLength(1), mcp.MaxLength(500),
			mcp.Description("Search query (keywords, title, etc.)")),
		mcp.WithString("title", mcp.Description("Filter by paper title")),
		mcp.WithString("author", mcp.Description("Filter by author name")),
		mcp.WithString("doi", mcp.Description("Search by exact DOI")),
		mcp.WithNumber("year_from", mcp.Description("Filter papers from this year")),
		mcp.WithNumber("year_to", mcp.Description("Filter papers until this year")),
		mcp.WithString("venue", mcp.Description("Filter by journal/conference")),
		mcp.WithString("sort", mcp.DefaultString("relevance"),
			mcp.Enum("relevance", "publication_date", "citation_count"),
			mcp.Description("Sort order: relevance, publication_date, or citation_count")),
		mcp.WithNumber("limit", mcp.DefaultNumber(10), mcp.Min(1), mcp.Max(100),
			mcp.Description("Maximum results")),
		mcp.WithNumber("offset", mcp.DefaultNumber(0), mcp.Min(0),
			mcp.Description("Pagination offset")),
		mcp.WithString("response_format", mcp.DefaultString("markdown"),
			mcp.Enum("markdown", "json"),
			mcp.Description("Output format: markdown or json")),
	)
}

func paperDetailsTool() mcp.Tool {
	return mcp.NewTool("academic_get_paper_details",
		mcp.WithDescription(`Get detailed metadata for a specific paper.

Supported ID formats:
- DOI: 10.1038/nature12345
- arXiv: 2401.12345 or arxiv:2401.12345
- OpenAlex: W2741809807
- DBLP: journals/nature/Smith2024

Returns complete paper metadata including title, authors, abstract, venue,
and citation count.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Get Paper Details", true)),
		mcp.WithString("paper_id", mcp.Required(),
			mcp.Description("Paper ID (OpenAlex ID, DOI, arXiv ID, or DBLP key)")),
		mcp.WithString("response_format", mcp.DefaultString("markdown"),
			mcp.Enum("markdown", "json"),
			mcp.Description("Output format: markdown or json")),
	)
}

func bibtexTool() mcp.Tool {
	return mcp.NewTool("academic_get_bibtex",
		mcp.WithDescription(`Export BibTeX citations for papers.

Supports single paper or batch export:
- Single: paper_ids="10.1038/nature12345"
- Batch: paper_ids="10.1038/nature12345,2401.12345,W2741809807"

BibTeX sources:
- DBLP: native BibTeX export (highest quality for CS papers)
- Generated: synthesized from paper metadata when DBLP has no entry

Returns valid BibTeX entries ready for LaTeX and bibliography managers.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Get BibTeX Citation", true)),
		mcp.WithString("paper_ids", mcp.Required(),
			mcp.Description("Paper ID(s), comma-separated for batch export")),
		mcp.WithBoolean("use_dblp", mcp.DefaultBool(true),
			mcp.Description("Try DBLP for native BibTeX first")),
	)
}

func citationsTool() mcp.Tool {
	return mcp.NewTool("academic_get_citations",
		mcp.WithDescription(`Get papers that cite a given paper.

Returns the citation count and a page of citing papers with metadata.
Uses OpenAlex for comprehensive citation data.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Get Paper Citations", true)),
		mcp.WithString("paper_id", mcp.Required(),
			mcp.Description("Paper ID to get citations for")),
		mcp.WithNumber("limit", mcp.DefaultNumber(20), mcp.Min(1), mcp.Max(100),
			mcp.Description("Maximum citing papers to return")),
		mcp.WithNumber("offset", mcp.DefaultNumber(0), mcp.Min(0),
			mcp.Description("Pagination offset")),
		mcp.WithString("response_format", mcp.DefaultString("markdown"),
			mcp.Enum("markdown", "json"),
			mcp.Description("Output format: markdown or json")),
	)
}

func searchAuthorTool() mcp.Tool {
	return mcp.NewTool("academic_search_author",
		mcp.WithDescription(`Search for papers by a specific author.

Finds papers by the given author name across databases.

Examples:
- author_name="Geoffrey Hinton" lists papers by Hinton
- author_name="Yann LeCun", year_from=2020 lists recent LeCun papers

Returns a list of papers by the author with metadata.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Search Papers by Author", true)),
		mcp.WithString("author_name", mcp.Required(), mcp.MinLength(2), mcp.MaxLength(200),
			mcp.Description("Author name to search")),
		mcp.WithNumber("limit", mcp.DefaultNumber(20), mcp.Min(1), mcp.Max(100),
			mcp.Description("Maximum papers to return")),
		mcp.WithNumber("offset", mcp.DefaultNumber(0), mcp.Min(0),
			mcp.Description("Pagination offset")),
		mcp.WithNumber("year_from", mcp.Description("Filter papers from this year")),
		mcp.WithNumber("year_to", mcp.Description("Filter papers until this year")),
		mcp.WithString("response_format", mcp.DefaultString("markdown"),
			mcp.Enum("markdown", "json"),
			mcp.Description("Output format: markdown or json")),
	)
}

func relatedPapersTool() mcp.Tool {
	return mcp.NewTool("academic_get_related_papers",
		mcp.WithDescription(`Get related paper recommendations.

Uses the Semantic Scholar recommendation engine to find papers similar to
the given paper based on content and citation relationships.

Good for literature review expansion, finding follow-up work, and
discovering adjacent research areas.

Returns a list of recommended related papers.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Get Related Papers", true)),
		mcp.WithString("paper_id", mcp.Required(),
			mcp.Description("Paper ID to find related papers for")),
		mcp.WithNumber("limit", mcp.DefaultNumber(10), mcp.Min(1), mcp.Max(50),
			mcp.Description("Maximum recommendations")),
		mcp.WithString("response_format", mcp.DefaultString("markdown"),
			mcp.Enum("markdown", "json"),
			mcp.Description("Output format: markdown or json")),
	)
}

func citationNetworkTool() mcp.Tool {
	return mcp.NewTool("academic_get_citation_network",
		mcp.WithDescription(`Get citation network data for visualization.

Returns a graph with papers as nodes (title, year, citation count) and
citation relationships as edges (the edge source cites the edge target).

Directions:
- citing: papers that cite this paper
- cited: papers this paper cites (references)
- both: both directions

Output is always JSON, suitable for graph visualization tools.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Get Citation Network", true)),
		mcp.WithString("paper_id", mcp.Required(),
			mcp.Description("Central paper ID")),
		mcp.WithNumber("depth", mcp.DefaultNumber(1), mcp.Min(1), mcp.Max(1),
			mcp.Description("Network depth (currently only 1 supported)")),
		mcp.WithNumber("max_nodes", mcp.DefaultNumber(50), mcp.Min(10), mcp.Max(200),
			mcp.Description("Maximum nodes")),
		mcp.WithString("direction", mcp.DefaultString("both"),
			mcp.Enum("citing", "cited", "both"),
			mcp.Description("Direction: citing, cited, or both")),
	)
}

func cacheStatsTool() mcp.Tool {
	return mcp.NewTool("academic_cache_stats",
		mcp.WithDescription(`Get cache statistics for debugging.

Returns hit rates and sizes for the search, paper, and BibTeX caches.`),
		mcp.WithToolAnnotation(readOnlyAnnotation("Get Cache Statistics", false)),
	)
}
