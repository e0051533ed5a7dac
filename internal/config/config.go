// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// Config is the rosterd server configuration
type Config struct {
	Host string `env:"ROSTERD_HOST"`
	Port int    `env:"ROSTERD_PORT" envDefault:"8080"`

	// Storage backend: memory, file or redis
	StorageType string `env:"ROSTERD_STORAGE" envDefault:"file"`
	DataPath    string `env:"ROSTERD_DATA_PATH" envDefault:"data/roster.json"`
	RedisURL    string `env:"ROSTERD_REDIS_URL"`

	// Join checks
	CheckBans          bool   `env:"ROSTERD_CHECK_BANS" envDefault:"true"`
	CheckWhitelist     bool   `env:"ROSTERD_CHECK_WHITELIST" envDefault:"false"`
	WhitelistRejection string `env:"ROSTERD_WHITELIST_REJECTION"`

	// Session accounting and flushing
	MinSessionSecs int           `env:"ROSTERD_MIN_SESSION_SECS" envDefault:"60"`
	FlushInterval  time.Duration `env:"ROSTERD_FLUSH_INTERVAL" envDefault:"15s"`
	WipePending    bool          `env:"ROSTERD_WIPE_PENDING" envDefault:"false"`

	// Admin account; empty username disables authentication
	AdminUsername     string `env:"ROSTERD_ADMIN_USERNAME"`
	AdminPasswordHash string `env:"ROSTERD_ADMIN_PASSWORD_HASH"`
}

// FromEnv loads configuration from environment variables
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StorageType == StorageTypeRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("ROSTERD_REDIS_URL required when ROSTERD_STORAGE=redis")
	}
	return cfg, nil
}

// MinSessionDwell returns the minimum dwell time as a duration
func (c Config) MinSessionDwell() time.Duration {
	return time.Duration(c.MinSessionSecs) * time.Second
}
