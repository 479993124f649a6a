package records

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Store backends.
const (
	BackendCSV      = "csv"
	BackendXLSX     = "xlsx"
	BackendPostgres = "postgres"
)

// Store persists the whole record set.
//
// LoadAll returns an empty set when there is no backing data, defaults
// missing columns and leaves every record with a non-empty unique ID.
// SaveAll replaces all prior content. DeleteByIDs ignores unknown IDs.
type Store interface {
	LoadAll(ctx context.Context) ([]Record, error)
	SaveAll(ctx context.Context, records []Record) error
	AppendOrUpdate(ctx context.Context, record Record) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

// table is a whole-file row source: a header row followed by data rows.
type table interface {
	// read reports false when the backing file does not exist.
	read() ([][]string, bool, error)
	write(rows [][]string) error
}

type fileStore struct {
	table  table
	logger *slog.Logger
	mu     sync.Mutex
}

func newFileStore(t table, logger *slog.Logger) *fileStore {
	return &fileStore{table: t, logger: logger}
}

func (s *fileStore) LoadAll(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *fileStore) SaveAll(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.table.write(encodeRows(records))
}

func (s *fileStore) AppendOrUpdate(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	if i := slices.IndexFunc(records, func(r Record) bool { return r.ID == record.ID }); i >= 0 {
		records[i] = record
	} else {
		records = append(records, record)
	}

	return s.table.write(encodeRows(records))
}

func (s *fileStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(records, func(r Record) bool {
		return slices.Contains(ids, r.ID)
	})

	return s.table.write(encodeRows(kept))
}

// load reads and repairs the table. Repaired IDs are written back so they
// stay stable across reloads.
func (s *fileStore) load() ([]Record, error) {
	rows, ok, err := s.table.read()
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Record{}, nil
	}

	records := decodeRows(rows)
	if n := repairIDs(records); n > 0 {
		s.logger.Info("backfilled record ids", "count", n)
		if err := s.table.write(encodeRows(records)); err != nil {
			s.logger.Warn("persist backfilled ids failed", "error", err)
		}
	}

	return records, nil
}
