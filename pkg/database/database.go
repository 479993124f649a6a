// Package database opens the PostgreSQL pool behind the postgres record store
// and reports its reachability through the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/hearth/pkg/lifecycle"
)

// System owns the connection pool.
type System interface {
	// Connection returns the pool. Queries fail until the server is reachable.
	Connection() *sql.DB
	// Require adds a table (schema.table) that must exist for the startup check to pass.
	Require(table string)
	// Start registers the reachability check and pool shutdown.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration

	mu     sync.Mutex
	tables []string
}

// New configures a pool for cfg. Nothing is dialled until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Require(table string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !slices.Contains(d.tables, table) {
		d.tables = append(d.tables, table)
	}
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.Check("database", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(ctx); err != nil {
			d.logger.Error("postgres unreachable", "error", err)
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}

		if err := d.checkTables(ctx); err != nil {
			d.logger.Error("schema check failed", "error", err)
			return err
		}

		d.logger.Info("postgres reachable", "tables", d.required())
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := d.conn.Close(); err != nil {
			d.logger.Error("close pool failed", "error", err)
			return
		}
		d.logger.Info("pool closed")
	})

	return nil
}

func (d *database) checkTables(ctx context.Context) error {
	for _, table := range d.required() {
		var found sql.NullString
		if err := d.conn.QueryRowContext(ctx, "SELECT to_regclass($1)::text", table).Scan(&found); err != nil {
			return fmt.Errorf("%w: look up %s: %w", ErrNotReady, table, err)
		}
		if !found.Valid {
			return fmt.Errorf("%w: %s", ErrMissingTable, table)
		}
	}
	return nil
}

func (d *database) required() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.tables)
}
