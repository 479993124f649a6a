package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Record store backends.
const (
	BackendCSV      = "csv"
	BackendXLSX     = "xlsx"
	BackendPostgres = "postgres"
)

const (
	EnvStoreBackend  = "HEARTH_STORE_BACKEND"
	EnvStoreDataDir  = "HEARTH_STORE_DATA_DIR"
	EnvStoreRecords  = "HEARTH_STORE_RECORDS"
	EnvStoreMessages = "HEARTH_STORE_MESSAGES"
	EnvStoreLottery  = "HEARTH_STORE_LOTTERY"
	EnvStoreWishes   = "HEARTH_STORE_WISHES"
	EnvStoreEvents   = "HEARTH_STORE_EVENTS"
)

// StoreConfig selects the record backend and names the widget files.
// File names are resolved relative to DataDir.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	DataDir  string `toml:"data_dir"`
	Records  string `toml:"records"`
	Messages string `toml:"messages"`
	Lottery  string `toml:"lottery"`
	Wishes   string `toml:"wishes"`
	Events   string `toml:"events"`
}

// RecordsPath returns the record file for the csv and xlsx backends.
func (c *StoreConfig) RecordsPath() string {
	return c.path(c.Records)
}

func (c *StoreConfig) MessagesPath() string {
	return c.path(c.Messages)
}

func (c *StoreConfig) LotteryPath() string {
	return c.path(c.Lottery)
}

func (c *StoreConfig) WishesPath() string {
	return c.path(c.Wishes)
}

func (c *StoreConfig) EventsPath() string {
	return c.path(c.Events)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *StoreConfig) Finalize() error {
	c.loadEnv()
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.DataDir != "" {
		c.DataDir = overlay.DataDir
	}
	if overlay.Records != "" {
		c.Records = overlay.Records
	}
	if overlay.Messages != "" {
		c.Messages = overlay.Messages
	}
	if overlay.Lottery != "" {
		c.Lottery = overlay.Lottery
	}
	if overlay.Wishes != "" {
		c.Wishes = overlay.Wishes
	}
	if overlay.Events != "" {
		c.Events = overlay.Events
	}
}

func (c *StoreConfig) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// loadDefaults runs after loadEnv so the records file follows an
// environment-selected backend.
func (c *StoreConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendCSV
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Records == "" {
		switch c.Backend {
		case BackendXLSX:
			c.Records = "data.xlsx"
		default:
			c.Records = "data.csv"
		}
	}
	if c.Messages == "" {
		c.Messages = "messages.csv"
	}
	if c.Lottery == "" {
		c.Lottery = "lottery.json"
	}
	if c.Wishes == "" {
		c.Wishes = "wishes.json"
	}
	if c.Events == "" {
		c.Events = "events.json"
	}
}

func (c *StoreConfig) loadEnv() {
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvStoreDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvStoreRecords); v != "" {
		c.Records = v
	}
	if v := os.Getenv(EnvStoreMessages); v != "" {
		c.Messages = v
	}
	if v := os.Getenv(EnvStoreLottery); v != "" {
		c.Lottery = v
	}
	if v := os.Getenv(EnvStoreWishes); v != "" {
		c.Wishes = v
	}
	if v := os.Getenv(EnvStoreEvents); v != "" {
		c.Events = v
	}
}

func (c *StoreConfig) validate() error {
	switch c.Backend {
	case BackendCSV, BackendXLSX, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported backend: %q", c.Backend)
	}
}
