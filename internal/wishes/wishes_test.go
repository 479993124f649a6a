package wishes_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/hearth/internal/wishes"
	"github.com/JaimeStill/hearth/pkg/routes"
)

func newWishes(t *testing.T) wishes.System {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wishes.json")
	return wishes.New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAddToggleList(t *testing.T) {
	sys := newWishes(t)
	ctx := context.Background()

	sunrise, err := sys.Add(ctx, "  watch the sunrise ")
	if err != nil {
		t.Fatal(err)
	}
	if sunrise.Text != "watch the sunrise" || sunrise.Done || len(sunrise.ID) != 32 {
		t.Errorf("Add() = %+v", sunrise)
	}
	if _, err := sys.Add(ctx, "learn to dance"); err != nil {
		t.Fatal(err)
	}

	toggled, err := sys.Toggle(ctx, sunrise.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !toggled.Done {
		t.Error("Toggle() did not mark done")
	}

	list, err := sys.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list.Completion != (wishes.Completion{Done: 1, Total: 2}) {
		t.Errorf("Completion = %+v, want 1/2", list.Completion)
	}
	if list.Wishes[0].ID != sunrise.ID || !list.Wishes[0].Done {
		t.Errorf("Wishes[0] = %+v", list.Wishes[0])
	}

	again, _ := sys.Toggle(ctx, sunrise.ID)
	if again.Done {
		t.Error("second Toggle() should clear done")
	}
}

func TestValidation(t *testing.T) {
	sys := newWishes(t)
	ctx := context.Background()

	if _, err := sys.Add(ctx, " "); !errors.Is(err, wishes.ErrEmpty) {
		t.Errorf("Add(blank) error = %v, want ErrEmpty", err)
	}
	if _, err := sys.Toggle(ctx, "nope"); !errors.Is(err, wishes.ErrNotFound) {
		t.Errorf("Toggle(unknown) error = %v, want ErrNotFound", err)
	}

	list, err := sys.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list.Wishes == nil || list.Completion.Total != 0 {
		t.Errorf("empty List() = %+v", list)
	}
}

func TestHandler(t *testing.T) {
	sys := newWishes(t)
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/wishes", strings.NewReader(`{"text":"picnic"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", rec.Code)
	}

	var wish wishes.Wish
	json.NewDecoder(rec.Body).Decode(&wish)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{"POST", "/wishes/" + wish.ID + "/toggle", "", http.StatusOK},
		{"POST", "/wishes/missing/toggle", "", http.StatusNotFound},
		{"POST", "/wishes", `{"text":""}`, http.StatusBadRequest},
		{"GET", "/wishes", "", http.StatusOK},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
		if rec.Code != tt.status {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
	}
}
