package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/hearth/internal/config"
)

const baseConfig = `
shutdown_timeout = "20s"
version = "0.1.0"
log_level = "debug"

[server]
host = "127.0.0.1"
port = 8501

[store]
backend = "csv"
data_dir = "journal"

[database]
name = "hearth"
user = "hearth"

[storage]
provider = "local"
path = "journal/photos"

[api]
base_path = "/api"
max_upload_size = "5MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[scoring]
weight = 0.6
recommend = 4.0
acceptable = 2.5

[clock]
utc_offset = 0
`

const overlayConfig = `
[server]
port = 9090

[store]
backend = "xlsx"

[scoring]
weight = 0.8
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:8501" {
		t.Errorf("server addr: got %s", cfg.Server.Addr())
	}
	if cfg.ShutdownTimeoutDuration() != 20*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", cfg.Level())
	}
	if got := cfg.Store.RecordsPath(); got != filepath.Join("journal", "data.csv") {
		t.Errorf("records path: got %s", got)
	}
	if got := cfg.Store.WishesPath(); got != filepath.Join("journal", "wishes.json") {
		t.Errorf("wishes path: got %s", got)
	}
	if cfg.API.MaxUploadSizeBytes() != 5*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("max page size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.Clock.Offset() != 0 {
		t.Errorf("utc offset: got %d, want explicit 0", cfg.Clock.Offset())
	}

	engine, err := cfg.Scoring.Engine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if engine.Weight != 0.6 || engine.RecommendThreshold != 4.0 || engine.AcceptableThreshold != 2.5 {
		t.Errorf("engine: got %+v", engine)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("HEARTH_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server host: got %s, want base value", cfg.Server.Host)
	}
	if cfg.Store.Backend != config.BackendXLSX {
		t.Errorf("backend: got %s, want xlsx", cfg.Store.Backend)
	}
	if *cfg.Scoring.Weight != 0.8 {
		t.Errorf("weight: got %v, want 0.8", *cfg.Scoring.Weight)
	}
	if *cfg.Scoring.Recommend != 4.0 {
		t.Errorf("recommend: got %v, want 4.0 (from base)", *cfg.Scoring.Recommend)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"port", cfg.Server.Port, 8501},
		{"backend", cfg.Store.Backend, config.BackendCSV},
		{"records", cfg.Store.RecordsPath(), filepath.Join("data", "data.csv")},
		{"storage", cfg.Storage.Provider, "local"},
		{"base path", cfg.API.BasePath, "/api"},
		{"weight", *cfg.Scoring.Weight, 0.7},
		{"recommend", *cfg.Scoring.Recommend, 4.2},
		{"acceptable", *cfg.Scoring.Acceptable, 3.0},
		{"offset", cfg.Clock.Offset(), 8},
		{"log level", cfg.Level(), slog.LevelInfo},
		{"env", cfg.Env(), "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("HEARTH_VERSION", "2.0.0")
	t.Setenv("HEARTH_SERVER_PORT", "3000")
	t.Setenv("HEARTH_STORE_BACKEND", "xlsx")
	t.Setenv("HEARTH_SCORING_WEIGHT", "0.5")
	t.Setenv("HEARTH_CLOCK_UTC_OFFSET", "-5")
	t.Setenv("HEARTH_API_MAX_UPLOAD_SIZE", "1MB")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Store.Backend != config.BackendXLSX {
		t.Errorf("backend: got %s, want xlsx", cfg.Store.Backend)
	}
	if *cfg.Scoring.Weight != 0.5 {
		t.Errorf("weight: got %v, want 0.5", *cfg.Scoring.Weight)
	}
	if cfg.Clock.Offset() != -5 {
		t.Errorf("offset: got %d, want -5", cfg.Clock.Offset())
	}
	if cfg.API.MaxUploadSizeBytes() != 1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
}

func TestRecordsPathFollowsBackend(t *testing.T) {
	store := config.StoreConfig{Backend: config.BackendXLSX}
	if err := store.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := store.RecordsPath(); got != filepath.Join("data", "data.xlsx") {
		t.Errorf("records path: got %s", got)
	}

	abs := config.StoreConfig{Records: filepath.Join(t.TempDir(), "mine.csv")}
	if err := abs.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if abs.RecordsPath() != abs.Records {
		t.Errorf("absolute path rewritten: got %s", abs.RecordsPath())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
		env    map[string]string
	}{
		{name: "malformed toml", config: `[server`},
		{name: "unknown backend", config: "[store]\nbackend = \"sqlite\""},
		{name: "weight out of range", config: "[scoring]\nweight = 1.5"},
		{name: "inverted thresholds", config: "[scoring]\nrecommend = 2.0\nacceptable = 3.0"},
		{name: "offset out of range", config: "[clock]\nutc_offset = 15"},
		{name: "bad log level", config: `log_level = "loud"`},
		{name: "bad port", config: "[server]\nport = 70000"},
		{name: "bad weight env", env: map[string]string{"HEARTH_SCORING_WEIGHT": "heavy"}},
		{name: "postgres bad timeout", config: "[store]\nbackend = \"postgres\"\n[database]\nconn_timeout = \"soon\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := config.Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
