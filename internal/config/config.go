// Package config loads the service configuration from TOML files and
// HEARTH_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/hearth/pkg/database"
	"github.com/JaimeStill/hearth/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvHearthEnv             = "HEARTH_ENV"
	EnvHearthShutdownTimeout = "HEARTH_SHUTDOWN_TIMEOUT"
	EnvHearthVersion         = "HEARTH_VERSION"
	EnvHearthLogLevel        = "HEARTH_LOG_LEVEL"
)

// DatabaseEnv names the HEARTH_DB_* variables read by the database section.
var DatabaseEnv = &database.Env{
	Host:            "HEARTH_DB_HOST",
	Port:            "HEARTH_DB_PORT",
	Name:            "HEARTH_DB_NAME",
	User:            "HEARTH_DB_USER",
	Password:        "HEARTH_DB_PASSWORD",
	SSLMode:         "HEARTH_DB_SSL_MODE",
	MaxOpenConns:    "HEARTH_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "HEARTH_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "HEARTH_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "HEARTH_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "HEARTH_STORAGE_PROVIDER",
	Path:             "HEARTH_STORAGE_PATH",
	ContainerName:    "HEARTH_STORAGE_CONTAINER_NAME",
	ConnectionString: "HEARTH_STORAGE_CONNECTION_STRING",
	MaxListSize:      "HEARTH_STORAGE_MAX_LIST_SIZE",
}

// Config is the root configuration for the hearth service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Store           StoreConfig     `toml:"store"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Scoring         ScoringConfig   `toml:"scoring"`
	Clock           ClockConfig     `toml:"clock"`
	LogLevel        string          `toml:"log_level"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the HEARTH_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvHearthEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. Without a config.toml, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Store.Merge(&overlay.Store)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Scoring.Merge(&overlay.Scoring)
	c.Clock.Merge(&overlay.Clock)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Store.Finalize(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if c.Store.Backend == BackendPostgres {
		if err := c.Database.Finalize(DatabaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Scoring.Finalize(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Clock.Finalize(); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvHearthLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvHearthShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvHearthVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvHearthEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
