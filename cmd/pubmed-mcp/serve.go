// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-mcp/internal/pubmed"
	"github.com/pdiddy/pubmed-mcp/internal/search"
	"github.com/pdiddy/pubmed-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search function over HTTP",
	Long: `Serve listens on server.addr (or FUNCTIONS_CUSTOMHANDLER_PORT when run by
the Azure Functions host) and answers GET ?query=... and POST {"query": ...}
on server.route. /healthz and /metrics are served alongside.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	client := pubmed.NewClient(nil, cfg.PubMed, logger)
	srv := server.New(cfg.Server, search.NewHandler(client, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
