package config

import (
	"fmt"
	"time"

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

// Config holds the configuration for the coach runtime service.
// Environment variables are automatically parsed from the COACH_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Durable memory store driver: auto | sqlite | redis | http
	StoreDriver string `envconfig:"STORE_DRIVER" default:"auto"`

	// SQLite store
	SQLitePath string `envconfig:"SQLITE_PATH" default:"coach-memory.db"`

	// Redis store
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	// Hosted profile store (http driver)
	StoreURL    string `envconfig:"STORE_URL" default:""`
	StoreAPIKey string `envconfig:"STORE_API_KEY" default:""`

	// Circuit breaker guarding the durable store
	BreakerFailureThreshold int `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"3"`
	BreakerResetMs          int `envconfig:"BREAKER_RESET_MS" default:"8000"`

	// Ambient nudge scheduler
	NudgesEnabled   bool   `envconfig:"NUDGES_ENABLED" default:"false"`
	MorningNudgeCron string `envconfig:"MORNING_NUDGE_CRON" default:"0 8 * * *"`
	EveningNudgeCron string `envconfig:"EVENING_NUDGE_CRON" default:"0 20 * * *"`
}

// BreakerReset returns the breaker reset window as a duration.
func (c *Config) BreakerReset() time.Duration {
	return time.Duration(c.BreakerResetMs) * time.Millisecond
}

// ResolveDefaults validates the store driver and derives it when "auto".
func (c *Config) ResolveDefaults() error {
	if c.StoreDriver == "" || c.StoreDriver == "auto" {
		c.StoreDriver = "sqlite"
	}

	allowed := map[string]bool{"sqlite": true, "redis": true, "http": true}
	if !allowed[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.StoreDriver == "http" && c.StoreURL == "" {
		return fmt.Errorf("COACH_STORE_URL is required for the http store driver")
	}
	if c.BreakerFailureThreshold <= 0 {
		return fmt.Errorf("COACH_BREAKER_FAILURE_THRESHOLD must be positive")
	}
	if c.BreakerResetMs <= 0 {
		return fmt.Errorf("COACH_BREAKER_RESET_MS must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with COACH_
// Example: COACH_HTTP_PORT, COACH_STORE_DRIVER
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("COACH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Int("breaker_threshold", cfg.BreakerFailureThreshold).
		Int("breaker_reset_ms", cfg.BreakerResetMs).
		Bool("nudges_enabled", cfg.NudgesEnabled).
		Msg("Configuration loaded")

	return &cfg, nil
}
