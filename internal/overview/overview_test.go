package overview_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/hearth/internal/analytics"
	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/internal/events"
	"github.com/JaimeStill/hearth/internal/messages"
	"github.com/JaimeStill/hearth/internal/overview"
	"github.com/JaimeStill/hearth/internal/records"
	"github.com/JaimeStill/hearth/internal/scoring"
	"github.com/JaimeStill/hearth/internal/wishes"
	"github.com/JaimeStill/hearth/pkg/pagination"
	"github.com/JaimeStill/hearth/pkg/routes"
)

type fixture struct {
	dir string
	sys overview.System
	rec records.System
	msg messages.System
	ev  events.System
	wl  wishes.System
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.Fixed(8, time.Date(2024, 2, 1, 4, 0, 0, 0, time.UTC))
	engine, _ := scoring.New(0.7, 4.2, 3.0)

	f := &fixture{dir: dir}
	f.rec = records.New(
		records.NewCSVStore(filepath.Join(dir, "records.csv"), logger),
		records.BackendCSV,
		engine,
		clk,
		nil,
		logger,
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
	f.msg = messages.New(filepath.Join(dir, "messages.csv"), clk, logger)
	f.ev = events.New(filepath.Join(dir, "events.json"), clk, logger)
	f.wl = wishes.New(filepath.Join(dir, "wishes.json"), logger)

	f.sys = overview.New(f.rec, analytics.New(f.rec, clk, logger), f.wl, f.ev, f.msg, logger)
	return f
}

func TestBuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rec.Submit(ctx, records.SubmitCommand{Name: "tea", Grade: records.GradeInput{Sub: "S"}, Mood: "pleasant"})
	f.rec.Submit(ctx, records.SubmitCommand{Name: "lamp", Grade: records.GradeInput{Sub: "C"}})
	for _, text := range []string{"one", "two", "three", "four", "five", "six"} {
		f.msg.Post(ctx, text)
	}
	for _, e := range [][2]string{{"a", "2020-02-10"}, {"b", "2020-03-01"}, {"c", "2020-02-05"}, {"d", "2020-12-25"}} {
		f.ev.Add(ctx, e[0], e[1])
	}
	w, _ := f.wl.Add(ctx, "sunrise")
	f.wl.Toggle(ctx, w.ID)
	f.wl.Add(ctx, "dance")

	ov, err := f.sys.Build(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if ov.Records.Count != 2 {
		t.Errorf("Records.Count = %d, want 2", ov.Records.Count)
	}
	if ov.Distribution[0].Count != 1 || ov.Distribution[2].Count != 1 {
		t.Errorf("Distribution = %+v", ov.Distribution)
	}
	if ov.Streak != 1 || len(ov.TopLiked) != 1 || ov.TopLiked[0].Name != "tea" {
		t.Errorf("Streak = %d, TopLiked = %+v", ov.Streak, ov.TopLiked)
	}
	if ov.Wishes != (wishes.Completion{Done: 1, Total: 2}) {
		t.Errorf("Wishes = %+v", ov.Wishes)
	}
	if len(ov.Events) != overview.UpcomingEvents || ov.Events[0].Name != "c" {
		t.Errorf("Events = %+v", ov.Events)
	}
	if len(ov.Messages) != overview.LatestMessages || ov.Messages[0].Text != "six" {
		t.Errorf("Messages = %+v", ov.Messages)
	}
}

func TestBuildFailsOnWidgetError(t *testing.T) {
	f := newFixture(t)

	// a directory where the message file should be makes reads fail
	if err := os.Mkdir(filepath.Join(f.dir, "messages.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/overview", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandler(t *testing.T) {
	f := newFixture(t)
	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/overview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var ov overview.Overview
	if err := json.NewDecoder(rec.Body).Decode(&ov); err != nil {
		t.Fatal(err)
	}
	if len(ov.Distribution) != 3 {
		t.Errorf("Distribution = %+v, want three tiers", ov.Distribution)
	}
}
