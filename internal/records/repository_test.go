package records_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/internal/grades"
	"github.com/JaimeStill/hearth/internal/photos"
	"github.com/JaimeStill/hearth/internal/records"
	"github.com/JaimeStill/hearth/internal/scoring"
	"github.com/JaimeStill/hearth/pkg/lifecycle"
	"github.com/JaimeStill/hearth/pkg/pagination"
)

type memStore struct {
	records []records.Record
	loadErr error
	saveErr error
}

func (s *memStore) LoadAll(ctx context.Context) ([]records.Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return slices.Clone(s.records), nil
}

func (s *memStore) SaveAll(ctx context.Context, recs []records.Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = slices.Clone(recs)
	return nil
}

func (s *memStore) AppendOrUpdate(ctx context.Context, rec records.Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if i := slices.IndexFunc(s.records, func(r records.Record) bool { return r.ID == rec.ID }); i >= 0 {
		s.records[i] = rec
		return nil
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = slices.DeleteFunc(s.records, func(r records.Record) bool {
		return slices.Contains(ids, r.ID)
	})
	return nil
}

type fakePhotos struct {
	name string
	err  error
}

func (f fakePhotos) Save(ctx context.Context, filename string, data []byte) (string, error) {
	return f.name, f.err
}

var now = time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC)

func newSystem(t *testing.T, store records.Store, saver records.PhotoSaver) records.System {
	t.Helper()

	engine, err := scoring.New(0.7, 4.2, 3.0)
	if err != nil {
		t.Fatal(err)
	}

	sys := records.New(
		store,
		"memory",
		engine,
		clock.Fixed(8, now),
		saver,
		discard(),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
	if err := sys.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return sys
}

func submit(name, sub string) records.SubmitCommand {
	return records.SubmitCommand{
		Type:  "takeout",
		Name:  name,
		Grade: records.GradeInput{Sub: sub},
		Mood:  "pleasant",
	}
}

func TestSubmitCreatesSingleGrade(t *testing.T) {
	store := &memStore{}
	sys := newSystem(t, store, nil)

	res, err := sys.Submit(context.Background(), submit("  Latte ", "A"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	rec := res.Record
	if res.Action != records.Created {
		t.Errorf("Action = %q, want created", res.Action)
	}
	if rec.ID == "" || rec.Name != "Latte" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Timestamp != "2024-03-01 12:00:00" {
		t.Errorf("Timestamp = %q, want local wall clock", rec.Timestamp)
	}
	if rec.PrimaryMain != grades.PrimaryA || rec.SecondaryGrade != "" {
		t.Errorf("grades = %q/%q", rec.PrimaryMain, rec.SecondaryGrade)
	}
	if rec.Score != 3.8 || rec.Tier != scoring.Acceptable {
		t.Errorf("score = %v %q, want 3.8 acceptable", rec.Score, rec.Tier)
	}
	if len(store.records) != 1 {
		t.Errorf("stored %d records, want 1", len(store.records))
	}
}

func TestSubmitNewWithSecondGrade(t *testing.T) {
	sys := newSystem(t, &memStore{}, nil)

	cmd := submit("Noodles", "S+")
	cmd.Mode = records.ModeNew
	cmd.SecondGrade = &records.GradeInput{Main: "A", Sub: "A"}

	res, err := sys.Submit(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	// 0.7*5.0 + 0.3*3.8
	if res.Record.Score != 4.64 || res.Record.Tier != scoring.Recommended {
		t.Errorf("score = %v %q, want 4.64 recommended", res.Record.Score, res.Record.Tier)
	}
}

func TestSubmitValidation(t *testing.T) {
	bad := -0.1

	tests := []struct {
		name   string
		mutate func(*records.SubmitCommand)
		want   error
	}{
		{"blank name", func(c *records.SubmitCommand) { c.Name = "   " }, records.ErrEmptyName},
		{"unknown grade", func(c *records.SubmitCommand) { c.Grade.Sub = "Z" }, grades.ErrInvalidGrade},
		{"sub outside main", func(c *records.SubmitCommand) { c.Grade = records.GradeInput{Main: "S", Sub: "B"} }, grades.ErrInvalidGrade},
		{"mood", func(c *records.SubmitCommand) { c.Mood = "ecstatic" }, records.ErrInvalidMood},
		{"weight", func(c *records.SubmitCommand) { c.Weight = &bad }, scoring.ErrInvalidWeight},
		{"mode", func(c *records.SubmitCommand) { c.Mode = "merge" }, records.ErrInvalidMode},
		{"long remark", func(c *records.SubmitCommand) { c.Remark = strings.Repeat("好", 301) }, records.ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			sys := newSystem(t, store, nil)

			cmd := submit("Latte", "A")
			tt.mutate(&cmd)

			if _, err := sys.Submit(context.Background(), cmd); !errors.Is(err, tt.want) {
				t.Errorf("Submit() error = %v, want %v", err, tt.want)
			}
			if len(store.records) != 0 {
				t.Error("rejected submission was persisted")
			}
		})
	}
}

func TestSubmitAutoReportsMatches(t *testing.T) {
	sys := newSystem(t, &memStore{}, nil)
	ctx := context.Background()

	if _, err := sys.Submit(ctx, submit("Milk Tea", "A")); err != nil {
		t.Fatal(err)
	}

	_, err := sys.Submit(ctx, submit(" milk tea ", "B"))
	var match *records.MatchError
	if !errors.As(err, &match) {
		t.Fatalf("Submit() error = %v, want MatchError", err)
	}
	if !errors.Is(err, records.ErrNameExists) {
		t.Error("MatchError should unwrap to ErrNameExists")
	}
	if len(match.Matches) != 1 || match.Matches[0].Name != "Milk Tea" {
		t.Errorf("Matches = %+v", match.Matches)
	}
	if got := sys.Status().Count; got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
}

func TestSecondRating(t *testing.T) {
	store := &memStore{}
	sys := newSystem(t, store, nil)
	ctx := context.Background()

	first, err := sys.Submit(ctx, submit("奶茶", "A"))
	if err != nil {
		t.Fatal(err)
	}

	cmd := submit("奶茶", "B+")
	cmd.Mode = records.ModeSecondRating
	cmd.Mood = "unpleasant"

	res, err := sys.Submit(ctx, cmd)
	if err != nil {
		t.Fatalf("Submit(second_rating) error = %v", err)
	}

	rec := res.Record
	if res.Action != records.Updated {
		t.Errorf("Action = %q, want updated", res.Action)
	}
	if rec.ID != first.Record.ID {
		t.Errorf("ID changed from %q to %q", first.Record.ID, rec.ID)
	}
	if rec.Score != 3.56 || rec.Tier != scoring.Acceptable {
		t.Errorf("score = %v %q, want 3.56 acceptable", rec.Score, rec.Tier)
	}
	if rec.PrimaryGrade != "A" || rec.SecondaryGrade != "B+" || rec.SecondaryMain != grades.PrimaryB {
		t.Errorf("grades = %q/%q/%q", rec.PrimaryGrade, rec.SecondaryMain, rec.SecondaryGrade)
	}
	if rec.Mood != records.Pleasant {
		t.Errorf("Mood = %q, want original mood kept", rec.Mood)
	}
	if got := sys.Status().Count; got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
	if store.records[0].Score != 3.56 {
		t.Errorf("stored score = %v, want 3.56", store.records[0].Score)
	}
}

func TestSecondRatingTargetsLatest(t *testing.T) {
	store := &memStore{records: []records.Record{
		{ID: "old", Name: "Cake", Timestamp: "2024-01-05 10:00:00", PrimaryMain: "C", PrimaryGrade: "C", Photo: "old.png"},
		{ID: "new", Name: "cake", Timestamp: "2024-02-01 10:00:00", PrimaryMain: "S", PrimaryGrade: "S", Photo: "keep.png"},
		{ID: "bad", Name: "CAKE", Timestamp: "sometime", PrimaryMain: "B", PrimaryGrade: "B"},
	}}
	sys := newSystem(t, store, nil)

	cmd := submit("Cake", "S")
	cmd.Mode = records.ModeSecondRating

	res, err := sys.Submit(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if res.Record.ID != "new" {
		t.Errorf("updated %q, want the latest record", res.Record.ID)
	}
	if res.Record.Photo != "keep.png" {
		t.Errorf("Photo = %q, want unchanged without a new photo", res.Record.Photo)
	}
	if res.Record.Score != 4.7 {
		t.Errorf("Score = %v, want 4.7", res.Record.Score)
	}
}

func TestSecondRatingTieGoesToLaterRecord(t *testing.T) {
	store := &memStore{records: []records.Record{
		{ID: "first", Name: "Soup", Timestamp: "2024-01-01 10:00:00", PrimaryGrade: "A"},
		{ID: "second", Name: "Soup", Timestamp: "2024-01-01 10:00:00", PrimaryGrade: "A"},
	}}
	sys := newSystem(t, store, nil)

	cmd := submit("soup", "A")
	cmd.Mode = records.ModeSecondRating

	res, err := sys.Submit(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if res.Record.ID != "second" {
		t.Errorf("updated %q, want second", res.Record.ID)
	}
}

func TestSecondRatingWithoutMatch(t *testing.T) {
	sys := newSystem(t, &memStore{}, nil)

	cmd := submit("Ghost", "A")
	cmd.Mode = records.ModeSecondRating

	if _, err := sys.Submit(context.Background(), cmd); !errors.Is(err, records.ErrNoMatch) {
		t.Errorf("Submit() error = %v, want ErrNoMatch", err)
	}
}

func TestSubmitPhoto(t *testing.T) {
	upload := &records.PhotoUpload{Filename: "a.png", Data: []byte("data")}

	t.Run("saved", func(t *testing.T) {
		sys := newSystem(t, &memStore{}, fakePhotos{name: "f00d.png"})
		cmd := submit("Tea", "A")
		cmd.Photo = upload

		res, err := sys.Submit(context.Background(), cmd)
		if err != nil {
			t.Fatal(err)
		}
		if res.Record.Photo != "f00d.png" || len(res.Warnings) != 0 {
			t.Errorf("Photo = %q, Warnings = %v", res.Record.Photo, res.Warnings)
		}
	})

	t.Run("unsupported rejects", func(t *testing.T) {
		store := &memStore{}
		sys := newSystem(t, store, fakePhotos{err: photos.ErrUnsupportedImage})
		cmd := submit("Tea", "A")
		cmd.Photo = upload

		if _, err := sys.Submit(context.Background(), cmd); !errors.Is(err, photos.ErrUnsupportedImage) {
			t.Errorf("Submit() error = %v, want ErrUnsupportedImage", err)
		}
		if len(store.records) != 0 {
			t.Error("record persisted despite rejected photo")
		}
	})

	t.Run("storage failure warns", func(t *testing.T) {
		sys := newSystem(t, &memStore{}, fakePhotos{err: errors.New("disk full")})
		cmd := submit("Tea", "A")
		cmd.Photo = upload

		res, err := sys.Submit(context.Background(), cmd)
		if err != nil {
			t.Fatal(err)
		}
		if res.Record.Photo != "" || len(res.Warnings) != 1 {
			t.Errorf("Photo = %q, Warnings = %v", res.Record.Photo, res.Warnings)
		}
	})
}

func TestListSearchAndFilters(t *testing.T) {
	store := &memStore{records: []records.Record{
		{ID: "1", Name: "Milk Tea", Type: "takeout", Tier: scoring.Acceptable, Timestamp: "2024-01-01 10:00:00"},
		{ID: "2", Name: "Coffee", Remark: "with oat MILK", Type: "takeout", Tier: scoring.Recommended, Timestamp: "2024-01-02 10:00:00"},
		{ID: "3", Name: "Bread", Type: "household", Tier: scoring.Acceptable, Timestamp: "2024-01-03 10:00:00"},
	}}
	sys := newSystem(t, store, nil)
	ctx := context.Background()
	page := pagination.PageRequest{Page: 1, PageSize: 20}

	search := "milk"
	res, err := sys.List(ctx, page, records.Filters{Search: &search})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 || res.Data[0].ID != "2" || res.Data[1].ID != "1" {
		t.Errorf("search milk = %+v, want 2 then 1", res.Data)
	}

	tier := string(scoring.Acceptable)
	kind := "household"
	res, _ = sys.List(ctx, page, records.Filters{Tier: &tier, Type: &kind})
	if res.Total != 1 || res.Data[0].ID != "3" {
		t.Errorf("filter = %+v, want only 3", res.Data)
	}

	page.Sort = pagination.SortFields{{Field: "name"}}
	res, _ = sys.List(ctx, page, records.Filters{})
	if got := []string{res.Data[0].Name, res.Data[1].Name, res.Data[2].Name}; !slices.Equal(got, []string{"Bread", "Coffee", "Milk Tea"}) {
		t.Errorf("sort by name = %v", got)
	}

	page.Sort = pagination.SortFields{{Field: "color"}}
	if _, err := sys.List(ctx, page, records.Filters{}); !errors.Is(err, records.ErrUnknownField) {
		t.Errorf("List() error = %v, want ErrUnknownField", err)
	}
}

func TestDeleteBatch(t *testing.T) {
	store := &memStore{records: sampleRecords()}
	store.records = append(store.records, records.Record{ID: "c3", Name: "third"})
	sys := newSystem(t, store, nil)
	ctx := context.Background()

	n, err := sys.DeleteBatch(ctx, []string{"a1", "c3", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	assertRecords(t, store.records, sampleRecords()[1:2])
	assertRecords(t, sys.Snapshot(), sampleRecords()[1:2])

	if err := sys.Delete(ctx, "a1"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestPersistenceFailureMarksDirty(t *testing.T) {
	store := &memStore{}
	sys := newSystem(t, store, nil)
	ctx := context.Background()

	store.saveErr = errors.New("disk unavailable")

	res, err := sys.Submit(ctx, submit("Tea", "A"))
	if !errors.Is(err, records.ErrPersistence) {
		t.Fatalf("Submit() error = %v, want ErrPersistence", err)
	}
	if res == nil || res.Record.Name != "Tea" {
		t.Errorf("result = %+v, want the unsaved record", res)
	}

	status := sys.Status()
	if !status.Dirty || status.Count != 1 {
		t.Errorf("Status = %+v, want dirty with 1 record", status)
	}

	store.saveErr = nil
	if err := sys.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if sys.Status().Dirty {
		t.Error("still dirty after Flush")
	}
	if len(store.records) != 1 {
		t.Errorf("stored %d records after Flush, want 1", len(store.records))
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	store := &memStore{records: sampleRecords(), loadErr: errors.New("corrupt")}
	engine, _ := scoring.New(0.7, 4.2, 3.0)
	sys := records.New(store, "memory", engine, clock.Fixed(8, now), nil, discard(),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatal(err)
	}
	lc.WaitForStartup()

	if _, ok := lc.Failures()["records"]; !ok {
		t.Error("load failure not reported to lifecycle")
	}

	status := sys.Status()
	if status.Count != 0 || status.LoadError == "" {
		t.Errorf("Status = %+v, want empty set with load error", status)
	}

	store.loadErr = nil
	if _, err := sys.Submit(context.Background(), submit("Tea", "A")); err != nil {
		t.Fatal(err)
	}
	if len(store.records) != 3 {
		t.Errorf("stored %d records, want existing 2 kept plus new", len(store.records))
	}
	if sys.Status().LoadError != "" {
		t.Error("load error not cleared after successful write")
	}
}

func TestClearAfterLoadFailure(t *testing.T) {
	store := &memStore{records: sampleRecords(), loadErr: errors.New("locked")}
	engine, _ := scoring.New(0.7, 4.2, 3.0)
	sys := records.New(store, "memory", engine, clock.Fixed(8, now), nil, discard(),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})

	if err := sys.Load(context.Background()); !errors.Is(err, records.ErrPersistence) {
		t.Fatalf("Load() error = %v, want ErrPersistence", err)
	}

	store.loadErr = nil
	if err := sys.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if len(store.records) != 0 {
		t.Errorf("stored %d records after Clear, want 0", len(store.records))
	}
	status := sys.Status()
	if status.Count != 0 || status.Dirty || status.LoadError != "" {
		t.Errorf("Status = %+v, want clean empty set", status)
	}
}

func TestSubmitNormalizesRemarkNewlines(t *testing.T) {
	store := &memStore{}
	sys := newSystem(t, store, nil)

	cmd := submit("Tea", "A")
	cmd.Remark = "  first line\r\nsecond line  "

	res, err := sys.Submit(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if res.Record.Remark != "first line\nsecond line" {
		t.Errorf("Remark = %q", res.Record.Remark)
	}
	if store.records[0].Remark != res.Record.Remark {
		t.Errorf("stored remark %q differs from response %q", store.records[0].Remark, res.Record.Remark)
	}
}

func TestTypesIncludesPresent(t *testing.T) {
	store := &memStore{records: []records.Record{
		{ID: "1", Name: "x", Type: "books", Context: "park"},
		{ID: "2", Name: "y", Type: "takeout", Context: "home"},
	}}
	sys := newSystem(t, store, nil)

	opts := sys.Types()
	if !slices.Contains(opts.Types, "books") || !slices.Contains(opts.Types, "cosmetics") {
		t.Errorf("Types = %v", opts.Types)
	}
	if !slices.IsSorted(opts.Types) {
		t.Errorf("Types not sorted: %v", opts.Types)
	}
	if opts.Contexts[len(opts.Contexts)-1] != "park" {
		t.Errorf("Contexts = %v, want park appended", opts.Contexts)
	}
}

func TestExport(t *testing.T) {
	sys := newSystem(t, &memStore{records: sampleRecords()}, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := sys.Export(ctx, "csv", &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\ufeffid,timestamp,type,name") {
		t.Errorf("csv export starts %q", buf.String()[:min(40, buf.Len())])
	}
	if !strings.Contains(buf.String(), "奶茶") {
		t.Error("csv export missing record")
	}

	buf.Reset()
	if err := sys.Export(ctx, "xlsx", &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("xlsx export is not a zip archive")
	}

	if err := sys.Export(ctx, "pdf", &buf); !errors.Is(err, records.ErrBadFormat) {
		t.Errorf("Export(pdf) error = %v, want ErrBadFormat", err)
	}
}
