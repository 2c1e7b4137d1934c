// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregator

import (
	"testing"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		id   string
		want types.PaperSource
	}{
		{"10.1038/nature14539", types.SourceOpenAlex},
		{"10.48550/arXiv.1706.03762", types.SourceOpenAlex},
		{"https://doi.org/10.1038/nature14539", types.SourceOpenAlex},
		{"arxiv:1706.03762", types.SourceArxiv},
		{"arXiv:1706.03762", types.SourceArxiv},
		{"1706.03762", types.SourceArxiv},
		{"2301.13741", types.SourceArxiv},
		{"hep-th/9901001", types.SourceArxiv},
		{"conf/nips/VaswaniSPUJGKP17", types.SourceDBLP},
		{"journals/cacm/Knuth74", types.SourceDBLP},
		{"649def34f8be52c8b66281af98ae884c09aef38b", types.SourceSemanticScholar},
		{"W2741809807", types.SourceOpenAlex},
		{"  W2741809807  ", types.SourceOpenAlex},
		{"http://example.com/some/paper", types.SourceOpenAlex},
		{"", types.SourceOpenAlex},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := DetectSource(tt.id); got != tt.want {
				t.Errorf("DetectSource(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestLookupOrder(t *testing.T) {
	tests := []struct {
		source types.PaperSource
		want   []types.PaperSource
	}{
		{types.SourceDBLP, []types.PaperSource{types.SourceDBLP, types.SourceOpenAlex}},
		{types.SourceArxiv, []types.PaperSource{types.SourceArxiv, types.SourceOpenAlex}},
		{types.SourceSemanticScholar, []types.PaperSource{types.SourceSemanticScholar, types.SourceOpenAlex}},
		{types.SourceCrossRef, []types.PaperSource{types.SourceCrossRef, types.SourceOpenAlex}},
		{types.SourceOpenAlex, []types.PaperSource{types.SourceOpenAlex, types.SourceCrossRef, types.SourceSemanticScholar}},
	}
	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			got := lookupOrder(tt.source)
			if len(got) != len(tt.want) {
				t.Fatalf("lookupOrder(%q) = %v, want %v", tt.source, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("lookupOrder(%q)[%d] = %q, want %q", tt.source, i, got[i], tt.want[i])
				}
			}
		})
	}
}
