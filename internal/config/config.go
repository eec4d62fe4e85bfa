// Package config reads service settings from the environment (and an
// optional .env file).
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/UkralStul/blog-service/internal/logger"
	"github.com/UkralStul/blog-service/internal/posts"
)

// Storage backends.
const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Storage     string `env:"STORAGE" envDefault:"in-memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	SeedData    bool   `env:"SEED_DATA" envDefault:"true"`

	LogFormat logger.Format `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel  slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`

	UnknownFilterPolicy posts.UnknownFilterPolicy `env:"UNKNOWN_FILTER_POLICY" envDefault:"ignore"`
}

var ErrDatabaseURLRequired = errors.New("DATABASE_URL must be set for postgres and sqlite storage")

// Load reads .env if present, then the environment, and validates the result.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse is Load without Validate, for callers that override fields (command
// line flags) before validating.
func Parse() (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageInMemory:
	case StoragePostgres, StorageSQLite:
		if c.DatabaseURL == "" {
			return ErrDatabaseURLRequired
		}
	default:
		return fmt.Errorf("unknown storage %q: must be %q, %q or %q", c.Storage, StorageInMemory, StoragePostgres, StorageSQLite)
	}

	switch c.LogFormat {
	case logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
