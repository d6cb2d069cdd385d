package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the mindcare server.
// Environment variables are parsed from the MINDCARE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// DBDriver selects the store backend: "auto", "postgres" or "sqlite".
	// "auto" resolves to postgres when a DSN is configured, sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"mindcare.db"`

	// DefaultRegion selects the crisis-resource set used when a request
	// carries no region code.
	DefaultRegion string `envconfig:"DEFAULT_REGION" default:"bd"`

	// StrictTriage enforces the alert status transition table. The default
	// keeps the compatibility behavior: any non-empty status is accepted.
	StrictTriage bool `envconfig:"STRICT_TRIAGE" default:"false"`

	// HealthInterval is the dependency health probe period in seconds.
	HealthIntervalSeconds int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"10"`
}

// ResolveDefaults validates the driver selection and derives DBDriver when
// set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.DefaultRegion == "" {
		return fmt.Errorf("DEFAULT_REGION must not be empty")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with MINDCARE_, e.g. MINDCARE_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MINDCARE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("default_region", cfg.DefaultRegion).
		Bool("strict_triage", cfg.StrictTriage).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:           EnvTesting,
		HTTPPort:              8080,
		DBDriver:              "sqlite",
		SQLitePath:            "",
		DefaultRegion:         "bd",
		StrictTriage:          false,
		HealthIntervalSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
