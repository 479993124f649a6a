package records

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/hearth/pkg/database"
	"github.com/JaimeStill/hearth/pkg/query"
	"github.com/JaimeStill/hearth/pkg/repository"
)

// PostgresTable is the table the postgres backend reads and writes.
const PostgresTable = "public.records"

const upsertSQL = `
INSERT INTO public.records (
	id, logged_at, item_type, name, link, context,
	primary_main, primary_grade, secondary_main, secondary_grade,
	score, tier, mood, remark, photo
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE SET
	logged_at = EXCLUDED.logged_at,
	item_type = EXCLUDED.item_type,
	name = EXCLUDED.name,
	link = EXCLUDED.link,
	context = EXCLUDED.context,
	primary_main = EXCLUDED.primary_main,
	primary_grade = EXCLUDED.primary_grade,
	secondary_main = EXCLUDED.secondary_main,
	secondary_grade = EXCLUDED.secondary_grade,
	score = EXCLUDED.score,
	tier = EXCLUDED.tier,
	mood = EXCLUDED.mood,
	remark = EXCLUDED.remark,
	photo = EXCLUDED.photo`

type pgStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore returns a Store backed by the records table.
// Row order is insertion order, tracked by the seq column.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) Store {
	return &pgStore{db: db, logger: logger.With("backend", BackendPostgres)}
}

func (s *pgStore) LoadAll(ctx context.Context) ([]Record, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	records, err := repository.QueryMany(ctx, s.db, q, args, scanRecord)
	if err != nil {
		return nil, s.wrap("load records", err)
	}

	if n := repairIDs(records); n > 0 {
		s.logger.Info("backfilled record ids", "count", n)
		if err := s.SaveAll(ctx, records); err != nil {
			s.logger.Warn("persist backfilled ids failed", "error", err)
		}
	}

	return records, nil
}

func (s *pgStore) SaveAll(ctx context.Context, records []Record) error {
	argSets := make([][]any, len(records))
	for i, r := range records {
		argSets[i] = recordArgs(r)
	}

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM public.records"); err != nil {
			return err
		}
		return repository.ExecEach(ctx, tx, upsertSQL, argSets)
	})
	if err != nil {
		return s.wrap("save records", err)
	}
	return nil
}

func (s *pgStore) AppendOrUpdate(ctx context.Context, record Record) error {
	if _, err := s.db.ExecContext(ctx, upsertSQL, recordArgs(record)...); err != nil {
		return s.wrap("upsert record", err)
	}
	return nil
}

func (s *pgStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	q, args := query.NewBuilder(projection).WhereIn("ID", values...).BuildDelete()
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return s.wrap("delete records", err)
	}
	return nil
}

func (s *pgStore) wrap(op string, err error) error {
	if database.Code(err) == database.CodeUndefinedTable {
		return fmt.Errorf("%s: records table missing, apply migrations: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func recordArgs(r Record) []any {
	return []any{
		r.ID, r.Timestamp, r.Type, r.Name, r.Link, r.Context,
		string(r.PrimaryMain), string(r.PrimaryGrade),
		string(r.SecondaryMain), string(r.SecondaryGrade),
		r.Score, string(r.Tier), string(r.Mood), r.Remark, r.Photo,
	}
}
