package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/JaimeStill/hearth/pkg/repository"
)

type execCall struct {
	query string
	args  []any
}

type fakeExecutor struct {
	calls  []execCall
	failAt int
}

func (f *fakeExecutor) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func TestExecEach(t *testing.T) {
	e := &fakeExecutor{}
	argSets := [][]any{{"a", 1}, {"b", 2}, {"c", 3}}

	if err := repository.ExecEach(context.Background(), e, "INSERT", argSets); err != nil {
		t.Fatalf("ExecEach() error = %v", err)
	}
	if len(e.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(e.calls))
	}
	if e.calls[1].args[0] != "b" {
		t.Errorf("second call args = %v, want b first", e.calls[1].args)
	}
}

func TestExecEachStopsAtFailure(t *testing.T) {
	e := &fakeExecutor{failAt: 2}
	argSets := [][]any{{"a"}, {"b"}, {"c"}}

	err := repository.ExecEach(context.Background(), e, "INSERT", argSets)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(e.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(e.calls))
	}
}

func TestExecEachEmpty(t *testing.T) {
	e := &fakeExecutor{}
	if err := repository.ExecEach(context.Background(), e, "INSERT", nil); err != nil {
		t.Fatalf("ExecEach(nil) error = %v", err)
	}
	if len(e.calls) != 0 {
		t.Errorf("calls = %d, want 0", len(e.calls))
	}
}
