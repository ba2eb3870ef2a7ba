// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

// New returns a logrus logger configured from cfg, writing to stdout.
// Unknown levels fall back to info; any format other than "text" is JSON.
func New(cfg types.LogConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg types.LogConfig, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
