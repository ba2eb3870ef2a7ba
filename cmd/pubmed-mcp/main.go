// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-mcp function host and CLI.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-mcp/internal/config"
	"github.com/pdiddy/pubmed-mcp/internal/logging"
	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Populated by the root command before any subcommand runs.
var (
	cfg    types.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pubmed-mcp",
	Short: "Search PubMed for article titles and abstracts",
	Long: `pubmed-mcp forwards a search query to the NCBI E-utilities API, fetches
the top five matching PubMed articles, and returns their titles and abstracts
as JSON.

Run "serve" to host the HTTP function (also usable as an Azure Functions
custom handler), or "search" for a one-shot query from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		envFile, _ := cmd.Flags().GetString("env-file")
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")

		bootstrap := logging.NewWithOutput(types.LogConfig{Level: "info", Format: "text"}, os.Stderr)
		loaded, err := config.Load(config.Options{
			ConfigFile: cfgFile,
			EnvFile:    envFile,
			SecretsDir: secretsDir,
			Logger:     bootstrap,
		})
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewWithOutput(cfg.Log, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-mcp.yaml or ~/.config/pubmed-mcp/pubmed-mcp.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory holding pubmed-api-key and pubmed-email")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
