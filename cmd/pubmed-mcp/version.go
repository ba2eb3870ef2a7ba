package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pubmed-mcp",
	// Skip config loading.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pubmed-mcp %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
