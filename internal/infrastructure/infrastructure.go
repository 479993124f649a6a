// Package infrastructure assembles the shared dependencies that domain
// systems require: lifecycle coordination, logging, the local clock,
// the optional database and photo storage.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/internal/config"
	"github.com/JaimeStill/hearth/pkg/database"
	"github.com/JaimeStill/hearth/pkg/lifecycle"
	"github.com/JaimeStill/hearth/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil unless the record store backend is postgres.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Clock     *clock.Clock
	Database  database.System
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Clock:     clock.New(cfg.Clock.Offset()),
	}

	if cfg.Store.Backend == config.BackendPostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	infra.Storage = store

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
