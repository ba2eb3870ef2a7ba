// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results, so a
// result set can be reviewed later without contacting PubMed again.
type QueryFile struct {
	Query   string                `yaml:"query"`
	Results []types.ArticleRecord `yaml:"results"`
	Summary QuerySummary          `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the query and its results to a YAML file.
func WriteQueryFile(path, query string, rs types.ResultSet) error {
	qf := QueryFile{
		Query:   query,
		Results: rs.Results,
		Summary: QuerySummary{
			Total:     len(rs.Results),
			Timestamp: time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ResultSet returns the stored results.
func (qf *QueryFile) ResultSet() types.ResultSet {
	return types.NewResultSet(qf.Results)
}
