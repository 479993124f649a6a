package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotReady indicates the server could not be reached.
	ErrNotReady = errors.New("database not ready")
	// ErrMissingTable indicates a required table does not exist; run cmd/migrate.
	ErrMissingTable = errors.New("required table missing, apply migrations")
)

// SQLSTATE codes the service reacts to.
const (
	CodeUndefinedTable  = "42P01"
	CodeUniqueViolation = "23505"
)

// Code returns the PostgreSQL SQLSTATE carried by err, or "" when err is not a server error.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
