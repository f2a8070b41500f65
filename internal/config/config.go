// Package config loads kvstore settings from the environment.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/lusfold/kvstore/internal/logging"
	"github.com/lusfold/kvstore/internal/store"
)

// Config holds everything the CLI needs to open a store and set up logging.
type Config struct {
	DB     string `env:"KVSTORE_DB"     envDefault:"./kvstore.db"`
	Driver string `env:"KVSTORE_DRIVER" envDefault:"sqlite3"`
	Debug  bool   `env:"KVSTORE_DEBUG"  envDefault:"false"`

	LogLevel      string `env:"KVSTORE_LOG_LEVEL"        envDefault:"info"`
	LogFile       string `env:"KVSTORE_LOG_FILE"`
	LogMaxSizeMB  int    `env:"KVSTORE_LOG_MAX_SIZE_MB"  envDefault:"50"`
	LogMaxBackups int    `env:"KVSTORE_LOG_MAX_BACKUPS"  envDefault:"5"`
	LogMaxAgeDays int    `env:"KVSTORE_LOG_MAX_AGE_DAYS" envDefault:"30"`
	LogCompress   bool   `env:"KVSTORE_LOG_COMPRESS"     envDefault:"true"`

	NormalizeKeys       bool `env:"KVSTORE_NORMALIZE_KEYS"        envDefault:"false"`
	CaseSensitiveSearch bool `env:"KVSTORE_CASE_SENSITIVE_SEARCH" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Defaults returns the Config an empty environment would produce.
func Defaults() Config {
	var cfg Config
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the store or logger cannot honor.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DB) == "" {
		return fmt.Errorf("database path is required")
	}
	if !store.IsValidDriver(c.Driver) {
		return fmt.Errorf("unknown driver %q (valid: %s)", c.Driver, strings.Join(store.Drivers, ", "))
	}
	if !slices.Contains(logging.Levels, c.LogLevel) {
		return fmt.Errorf("unknown log level %q (valid: %s)", c.LogLevel, strings.Join(logging.Levels, ", "))
	}
	if c.LogMaxSizeMB < 1 {
		return fmt.Errorf("log max size must be at least 1 MB, got %d", c.LogMaxSizeMB)
	}
	if c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return fmt.Errorf("log retention must not be negative")
	}
	return nil
}

// StoreOptions translates the store-related settings into Manager options.
func (c Config) StoreOptions() []store.Option {
	return []store.Option{
		store.WithDriver(c.Driver),
		store.WithDebug(c.Debug),
		store.WithNormalizeKeys(c.NormalizeKeys),
		store.WithCaseSensitiveSearch(c.CaseSensitiveSearch),
	}
}

// LogOptions translates the logging settings into logging.Options.
func (c Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}
