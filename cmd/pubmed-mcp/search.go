// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-mcp/internal/pubmed"
	"github.com/pdiddy/pubmed-mcp/internal/search"
	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one PubMed search and print the results",
	Long: `Search runs the same lookup as the HTTP function: up to five PubMed
articles matching --query, with their titles and abstracts.

Use --save to keep the results in a YAML query file and --load to print a
saved file without contacting PubMed.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	savePath, _ := cmd.Flags().GetString("save")
	loadPath, _ := cmd.Flags().GetString("load")

	var rs types.ResultSet
	switch {
	case loadPath != "":
		qf, err := search.ReadQueryFile(loadPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Loaded %d results for %q (saved %s)\n",
			qf.Summary.Total, qf.Query, qf.Summary.Timestamp)
		rs = qf.ResultSet()
		query = qf.Query
	case query == "":
		return fmt.Errorf("--query or --load is required")
	default:
		client := pubmed.NewClient(nil, cfg.PubMed, logger)
		outcome := search.NewHandler(client, logger).Run(cmd.Context(), query)
		if outcome.Failed() {
			return fmt.Errorf("%s (%s)", outcome.Message, outcome.Kind)
		}
		rs = outcome.ResultSet()
	}

	if savePath != "" {
		if err := search.WriteQueryFile(savePath, query, rs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", len(rs.Results), savePath)
	}

	if jsonOutput {
		return search.FormatJSON(rs, os.Stdout)
	}
	search.FormatTable(rs, os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().String("query", "", "PubMed search term")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "write results to a YAML query file")
	searchCmd.Flags().String("load", "", "print results from a saved YAML query file")

	rootCmd.AddCommand(searchCmd)
}
