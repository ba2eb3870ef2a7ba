// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the search handler over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-mcp/internal/logging"
	"github.com/pdiddy/pubmed-mcp/internal/search"
	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// Server wires the search handler to a gin engine.
type Server struct {
	cfg     types.ServerConfig
	handler *search.Handler
	logger  *logrus.Logger
	engine  *gin.Engine
}

// New builds the routes. The search route answers both GET (query string)
// and POST (JSON body).
func New(cfg types.ServerConfig, handler *search.Handler, logger *logrus.Logger) *Server {
	s := &Server{cfg: cfg, handler: handler, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), Logger(logger), Instrument())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	route := engine.Group(cfg.Route)
	if cfg.RateLimit > 0 {
		route.Use(RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	route.GET("", s.handleSearch)
	route.POST("", s.handleSearch)

	s.engine = engine
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":  s.cfg.Addr,
			"route": s.cfg.Route,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSearch(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logging.Entry(c.Request.Context(), s.logger).WithError(err).Error("Error reading request body")
		body = nil
	}

	outcome := s.handler.Handle(c.Request.Context(), c.Request.URL.Query(), body)
	writeOutcome(c, outcome)
}

// writeOutcome is the only place an Outcome becomes a status code and body.
func writeOutcome(c *gin.Context, o search.Outcome) {
	if o.Failed() {
		c.String(o.Kind.HTTPStatus(), o.Message)
		return
	}
	c.JSON(http.StatusOK, o.ResultSet())
}
