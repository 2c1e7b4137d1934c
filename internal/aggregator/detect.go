// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregator

import (
	"regexp"
	"strings"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

var (
	arxivOldID = regexp.MustCompile(`^[a-z-]+/\d+$`)
	arxivNewID = regexp.MustCompile(`^\d{4}\.\d{4,5}$`)
	semanticID = regexp.MustCompile(`^[a-zA-Z0-9]{40}$`)
)

// DetectSource guesses which backend an identifier belongs to. DOIs
// route to OpenAlex because it resolves them without rate pressure,
// arXiv ids (prefixed, old style, or new style) to arXiv, slash-shaped
// keys to DBLP, and 40-char hashes to Semantic Scholar. Anything else
// is treated as an OpenAlex work id.
func DetectSource(id string) types.PaperSource {
	id = strings.TrimSpace(id)
	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(id, "10.") || strings.Contains(lower, "doi.org"):
		return types.SourceOpenAlex
	case strings.HasPrefix(lower, "arxiv:") || arxivOldID.MatchString(lower) || arxivNewID.MatchString(id):
		return types.SourceArxiv
	case strings.Contains(id, "/") && !strings.HasPrefix(lower, "http"):
		return types.SourceDBLP
	case semanticID.MatchString(id):
		return types.SourceSemanticScholar
	default:
		return types.SourceOpenAlex
	}
}

// lookupOrder returns the backends to try, in order, when resolving an
// identifier detected as source. The detected backend goes first;
// OpenAlex backs everything, and DOI-shaped ids additionally fall
// through to CrossRef and Semantic Scholar.
func lookupOrder(source types.PaperSource) []types.PaperSource {
	switch source {
	case types.SourceDBLP:
		return []types.PaperSource{types.SourceDBLP, types.SourceOpenAlex}
	case types.SourceArxiv:
		return []types.PaperSource{types.SourceArxiv, types.SourceOpenAlex}
	case types.SourceSemanticScholar:
		return []types.PaperSource{types.SourceSemanticScholar, types.SourceOpenAlex}
	case types.SourceCrossRef:
		return []types.PaperSource{types.SourceCrossRef, types.SourceOpenAlex}
	default:
		return []types.PaperSource{types.SourceOpenAlex, types.SourceCrossRef, types.SourceSemanticScholar}
	}
}
