// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"strings"
	"testing"
)

func TestSearchPapersInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      SearchPapersInput
		wantErr string
	}{
		{
			name: "minimal valid",
			in:   SearchPapersInput{Query: "transformers", Limit: 10},
		},
		{
			name: "all fields valid",
			in: SearchPapersInput{
				Query:    "attention",
				Title:    "attention is all you need",
				Author:   "Vaswani",
				YearFrom: 2015,
				YearTo:   2020,
				Venue:    "NeurIPS",
				Sort:     "citation_count",
				Limit:    100,
				Offset:   200,
			},
		},
		{
			name:    "empty query",
			in:      SearchPapersInput{Query: "", Limit: 10},
			wantErr: "query",
		},
		{
			name:    "whitespace query",
			in:      SearchPapersInput{Query: "   ", Limit: 10},
			wantErr: "query",
		},
		{
			name:    "query too long",
			in:      SearchPapersInput{Query: strings.Repeat("q", 501), Limit: 10},
			wantErr: "query",
		},
		{
			name:    "limit zero",
			in:      SearchPapersInput{Query: "x", Limit: 0},
			wantErr: "limit",
		},
		{
			name:    "limit too large",
			in:      SearchPapersInput{Query: "x", Limit: 101},
			wantErr: "limit",
		},
		{
			name:    "negative offset",
			in:      SearchPapersInput{Query: "x", Limit: 10, Offset: -1},
			wantErr: "offset",
		},
		{
			name:    "year before range",
			in:      SearchPapersInput{Query: "x", Limit: 10, YearFrom: 1800},
			wantErr: "year_from",
		},
		{
			name:    "year after range",
			in:      SearchPapersInput{Query: "x", Limit: 10, YearTo: 2101},
			wantErr: "year_to",
		},
		{
			name:    "inverted year range",
			in:      SearchPapersInput{Query: "x", Limit: 10, YearFrom: 2020, YearTo: 2015},
			wantErr: "year_from",
		},
		{
			name:    "unknown sort",
			in:      SearchPapersInput{Query: "x", Limit: 10, Sort: "alphabetical"},
			wantErr: "sort",
		},
		{
			name: "equal year bounds",
			in:   SearchPapersInput{Query: "x", Limit: 10, YearFrom: 2020, YearTo: 2020},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error on %s", tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type %T, want *ValidationError", err)
			}
			if verr.Field != tt.wantErr {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantErr)
			}
		})
	}
}

func TestBibTeXInputValidate(t *testing.T) {
	if err := (&BibTeXInput{PaperIDs: []string{"arxiv:1706.03762"}}).Validate(); err != nil {
		t.Errorf("single id: %v", err)
	}

	if err := (&BibTeXInput{}).Validate(); err == nil {
		t.Error("empty id list should be rejected")
	}

	many := make([]string, 51)
	for i := range many {
		many[i] = "10.1234/x"
	}
	if err := (&BibTeXInput{PaperIDs: many}).Validate(); err == nil {
		t.Error("51 ids should be rejected")
	}

	fifty := make([]string, 50)
	for i := range fifty {
		fifty[i] = "10.1234/x"
	}
	if err := (&BibTeXInput{PaperIDs: fifty}).Validate(); err != nil {
		t.Errorf("50 ids: %v", err)
	}
}

func TestSearchAuthorInputValidate(t *testing.T) {
	in := SearchAuthorInput{AuthorName: "Y", Limit: 10}
	if err := in.Validate(); err == nil {
		t.Error("single-character author name should be rejected")
	}

	in = SearchAuthorInput{AuthorName: "Yoshua Bengio", Limit: 20, YearFrom: 2021, YearTo: 2019}
	if err := in.Validate(); err == nil {
		t.Error("inverted year range should be rejected")
	}

	in = SearchAuthorInput{AuthorName: "Yoshua Bengio", Limit: 20}
	if err := in.Validate(); err != nil {
		t.Errorf("valid input: %v", err)
	}
}

func TestCitationNetworkInputValidate(t *testing.T) {
	base := CitationNetworkInput{PaperID: "W123", Depth: 1, MaxNodes: 50, Direction: "both"}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid input: %v", err)
	}

	in := base
	in.Depth = 2
	if err := in.Validate(); err == nil {
		t.Error("depth 2 should be rejected")
	}

	in = base
	in.MaxNodes = 5
	if err := in.Validate(); err == nil {
		t.Error("max_nodes below 10 should be rejected")
	}

	in = base
	in.Direction = "sideways"
	if err := in.Validate(); err == nil {
		t.Error("unknown direction should be rejected")
	}
}

func TestSplitIDList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{"", nil},
		{" , ", nil},
		{"10.1234/x", []string{"10.1234/x"}},
	}
	for _, tt := range tests {
		got := SplitIDList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitIDList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitIDList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
