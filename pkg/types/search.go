// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared between the PubMed client,
// the search handler, and the HTTP and CLI surfaces.
package types

// ArticleRecord is the title and abstract extracted from one PubmedArticle.
// Either field is nil when the source record lacks it, and serialises as null.
type ArticleRecord struct {
	Title    *string `json:"title" yaml:"title"`
	Abstract *string `json:"abstract" yaml:"abstract"`
}

// ResultSet is the response body returned for a successful search.
type ResultSet struct {
	Results []ArticleRecord `json:"results" yaml:"results"`
}

// NewResultSet wraps records in a ResultSet. A nil slice becomes an empty one
// so the body always carries "results": [] rather than null.
func NewResultSet(records []ArticleRecord) ResultSet {
	if records == nil {
		records = []ArticleRecord{}
	}
	return ResultSet{Results: records}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
