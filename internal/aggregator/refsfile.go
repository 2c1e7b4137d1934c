// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregator

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

// RefsFile is the on-disk representation of a reference list. A search
// can be saved to one and fed back to the BibTeX exporter later
// without re-running the query.
type RefsFile struct {
	Query  string     `yaml:"query,omitempty"`
	Saved  time.Time  `yaml:"saved"`
	Papers []RefEntry `yaml:"papers"`
}

// RefEntry is one saved reference. Only the id is required; the title
// is kept so the file stays readable.
type RefEntry struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title,omitempty"`
}

// IDs returns the identifiers in file order.
func (f *RefsFile) IDs() []string {
	ids := make([]string, len(f.Papers))
	for i, p := range f.Papers {
		ids[i] = p.ID
	}
	return ids
}

// WriteRefsFile saves the papers as a reference list at path.
func WriteRefsFile(path, query string, papers []types.Paper) error {
	rf := RefsFile{
		Query: query,
		Saved: time.Now(),
	}
	for _, p := range papers {
		rf.Papers = append(rf.Papers, RefEntry{ID: p.ID, Title: p.Title})
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling refs file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRefsFile loads a previously saved reference list from path.
func ReadRefsFile(path string) (*RefsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading refs file: %w", err)
	}
	var rf RefsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing refs file: %w", err)
	}
	return &rf, nil
}
