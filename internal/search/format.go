// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// FormatTable writes results as a human-readable table to w.
func FormatTable(rs types.ResultSet, w io.Writer) {
	if len(rs.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %s\n", "Rank", "Title", "Abstract")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range rs.Results {
		fmt.Fprintf(w, "%-4d  %-60s  %s\n",
			i+1, truncate(deref(r.Title), 60), truncate(deref(r.Abstract), 42))
	}

	fmt.Fprintf(w, "\n%d results\n", len(rs.Results))
}

// FormatJSON writes the result set as indented JSON to w.
func FormatJSON(rs types.ResultSet, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return strings.Join(strings.Fields(*s), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
