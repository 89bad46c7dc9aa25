package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all hub configuration.
type Config struct {
	Server      ServerConfig
	Permissions PermissionsConfig
	Storage     StorageConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8010"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// PermissionsConfig locates the origin permission table.
type PermissionsConfig struct {
	Path string `envconfig:"PERMISSIONS_PATH" default:"permissions.yaml"`
}

// StorageConfig holds default adapter configuration.
type StorageConfig struct {
	SnapshotPath string `envconfig:"STORAGE_SNAPSHOT" default:"crossstore.snapshot"`
	Persist      bool   `envconfig:"STORAGE_PERSIST" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration for the HTTP surface.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8010",
			Host: "0.0.0.0",
		},
		Permissions: PermissionsConfig{
			Path: "permissions.yaml",
		},
		Storage: StorageConfig{
			SnapshotPath: "crossstore.snapshot",
			Persist:      false,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
