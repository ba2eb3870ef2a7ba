// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared settings for outbound HTTP requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the client without
	// a deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-mcp/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds the E-utilities settings. It is loaded once at start-up
// and passed by value to the client; nothing mutates it afterwards.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the E-utilities root, without the esearch.fcgi / efetch.fcgi suffix.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the NCBI API key. Empty keys are omitted from requests.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email is the contact address NCBI asks clients to send. Empty
	// addresses are omitted from requests.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// Route is the path the search function is mounted on.
	Route string `json:"route" yaml:"route"`

	// RateLimit is the allowed inbound requests per second. Zero disables throttling.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the token bucket size used with RateLimit.
	RateBurst int `json:"rate_burst" yaml:"rate_burst"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "text"
}

// Config groups all settings for the process.
type Config struct {
	PubMed PubMedConfig `json:"pubmed" yaml:"pubmed"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`
}
