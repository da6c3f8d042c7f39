// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Fail-Fast: Missing or undersized required values abort startup with the
    specific violated constraint in the error message.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/solara-app/solara/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Solara API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis): volatile tokens and the JWT revocation list.
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// SessionSecret signs access tokens (HS256). Must be at least
	// [constants.MinSessionSecretLength] bytes.
	SessionSecret string `env:"SESSION_SECRET,required,notEmpty"`

	// AppURL is the public base URL of the application, used for CORS,
	// reset links, and verification links.
	AppURL string `env:"APP_URL,required,notEmpty"`

	// AuthProviderSecret is the client secret for the external identity
	// provider integration.
	AuthProviderSecret string `env:"AUTH_PROVIDER_SECRET,required,notEmpty"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates
// value-level constraints that 'required' tags cannot express.
func Load() (*Config, error) {

	cfg := &Config{}

	// Map environment variables to struct fields. This fails if any field
	// marked with 'required,notEmpty' is missing or set to the empty string.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces the value-level constraints on required settings.
//
// Each violation is reported individually so the operator knows exactly
// which constraint failed.
func (c *Config) validate() error {
	if len(c.SessionSecret) < constants.MinSessionSecretLength {
		return fmt.Errorf("config: SESSION_SECRET must be at least %d bytes, got %d",
			constants.MinSessionSecretLength, len(c.SessionSecret))
	}

	parsed, err := url.Parse(c.AppURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: APP_URL must be an absolute URL (scheme + host), got %q", c.AppURL)
	}

	return nil
}

// PublicOrigin returns the scheme://host portion of the public application URL.
func (c *Config) PublicOrigin() string {
	parsed, err := url.Parse(c.AppURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// ExtraOriginList returns the additional allowed CORS origins, parsed from
// the comma-separated EXTRA_ORIGINS variable.
func (c *Config) ExtraOriginList() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
