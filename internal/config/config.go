// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the process configuration from defaults, an
// optional YAML file, a .env file, the environment, and the secrets directory.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-mcp/internal/pubmed"
	"github.com/pdiddy/pubmed-mcp/internal/secrets"
	"github.com/pdiddy/pubmed-mcp/pkg/types"
)

const (
	// EnvPrefix namespaces environment overrides: api_key reads
	// PUBMED_API_KEY, server.addr reads PUBMED_SERVER_ADDR.
	EnvPrefix = "PUBMED"

	// CustomHandlerPortEnv is set by the Azure Functions host for custom handlers.
	CustomHandlerPortEnv = "FUNCTIONS_CUSTOMHANDLER_PORT"

	DefaultAddr      = ":8080"
	DefaultRoute     = "/api/pubmed_mcp"
	DefaultUserAgent = "pubmed-mcp/0.1"

	configName = "pubmed-mcp"
)

// Options says where to look for configuration sources. Zero values select
// the defaults: ./.env, ./.secrets/, and pubmed-mcp.yaml in . or
// ~/.config/pubmed-mcp.
type Options struct {
	ConfigFile string
	EnvFile    string
	SecretsDir string
	Logger     *logrus.Logger
}

// Load reads the configuration once. Missing credentials are not an error;
// they are passed to PubMed as absent.
func Load(opts Options) (types.Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			return types.Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else {
		logger.WithField("file", envFile).Debug("Loaded environment file")
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		logger.WithField("file", v.ConfigFileUsed()).Info("Using config file")
	}

	cfg := types.Config{
		PubMed: types.PubMedConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("timeout"),
				UserAgent: v.GetString("user_agent"),
			},
			BaseURL: v.GetString("base_url"),
			APIKey:  v.GetString("api_key"),
			Email:   v.GetString("email"),
		},
		Server: types.ServerConfig{
			Addr:            v.GetString("server.addr"),
			Route:           v.GetString("server.route"),
			RateLimit:       v.GetFloat64("server.rate_limit"),
			RateBurst:       v.GetInt("server.rate_burst"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.PubMed.APIKey == "" || cfg.PubMed.Email == "" {
		secretsDir := opts.SecretsDir
		if secretsDir == "" {
			secretsDir = ".secrets"
		}
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return types.Config{}, err
		}
		if cfg.PubMed.APIKey == "" {
			cfg.PubMed.APIKey = s.Get(secrets.APIKeyFile)
		}
		if cfg.PubMed.Email == "" {
			cfg.PubMed.Email = s.Get(secrets.EmailFile)
		}
	}

	if port := os.Getenv(CustomHandlerPortEnv); port != "" {
		cfg.Server.Addr = ":" + port
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later and obscurely.
func Validate(cfg types.Config) error {
	if !strings.HasPrefix(cfg.Server.Route, "/") {
		return fmt.Errorf("server.route must start with '/': %q", cfg.Server.Route)
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative: %v", cfg.Server.RateLimit)
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be at least 1 when rate_limit is set")
	}
	if cfg.PubMed.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", cfg.PubMed.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", pubmed.DefaultBaseURL)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("api_key", "")
	v.SetDefault("email", "")

	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.route", DefaultRoute)
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
