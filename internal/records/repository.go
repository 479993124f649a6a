package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/internal/grades"
	"github.com/JaimeStill/hearth/internal/photos"
	"github.com/JaimeStill/hearth/internal/scoring"
	"github.com/JaimeStill/hearth/pkg/lifecycle"
	"github.com/JaimeStill/hearth/pkg/pagination"
)

// Input limits in characters.
const (
	MaxNameLength   = 80
	MaxRemarkLength = 300
)

type repo struct {
	store      Store
	backend    string
	engine     *scoring.Engine
	clock      *clock.Clock
	photos     PhotoSaver
	logger     *slog.Logger
	pagination pagination.Config

	mu      sync.Mutex
	records []Record
	dirty   bool
	loadErr error
}

// New creates the records system. photos may be nil, in which case attached
// images are dropped with a warning.
func New(
	store Store,
	backend string,
	engine *scoring.Engine,
	clk *clock.Clock,
	photos PhotoSaver,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		store:      store,
		backend:    backend,
		engine:     engine,
		clock:      clk,
		photos:     photos,
		logger:     logger.With("system", "records"),
		pagination: pagination,
		records:    []Record{},
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting records system", "backend", r.backend)
	lc.Check("records", r.Load)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if !r.Status().Dirty {
			return
		}
		r.logger.Info("flushing unsaved records")
		if err := r.Flush(context.Background()); err != nil {
			r.logger.Error("flush on shutdown failed", "error", err)
		}
	})

	return nil
}

// Load replaces the in-memory set with the stored one. On failure the set
// is emptied and the error is kept for Status.
func (r *repo) Load(ctx context.Context) error {
	loaded, err := r.store.LoadAll(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.dirty = false
	if err != nil {
		r.records = []Record{}
		r.loadErr = err
		r.logger.Error("load records failed, starting empty", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.records = loaded
	r.loadErr = nil
	r.logger.Info("records loaded", "count", len(loaded))
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	r.mu.Lock()
	matched := filters.Apply(r.records)
	r.mu.Unlock()

	if err := sortRecords(matched, page.Sort); err != nil {
		return nil, err
	}

	result := pagination.Slice(matched, page)
	return &result, nil
}

func (r *repo) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

func (r *repo) Find(ctx context.Context, id string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	rec := r.records[i]
	return &rec, nil
}

func (r *repo) Matches(name string) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0)
	for _, i := range r.matchIndices(name) {
		out = append(out, r.records[i])
	}
	return out
}

func (r *repo) Types() TypeOptions {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := slices.Clone(SuggestedTypes)
	contexts := slices.Clone(SuggestedContexts)
	var extraContexts []string

	for _, rec := range r.records {
		if t := strings.TrimSpace(rec.Type); t != "" && !slices.Contains(types, t) {
			types = append(types, t)
		}
		if c := strings.TrimSpace(rec.Context); c != "" &&
			!slices.Contains(contexts, c) && !slices.Contains(extraContexts, c) {
			extraContexts = append(extraContexts, c)
		}
	}

	slices.Sort(types)
	slices.Sort(extraContexts)
	return TypeOptions{Types: types, Contexts: append(contexts, extraContexts...)}
}

func (r *repo) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{Count: len(r.records), Dirty: r.dirty, Backend: r.backend}
	if r.loadErr != nil {
		s.LoadError = r.loadErr.Error()
	}
	return s
}

func (r *repo) Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	in, err := r.validate(cmd)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	matches := r.matchIndices(in.name)

	switch in.mode {
	case ModeAuto:
		if len(matches) > 0 {
			found := make([]Record, len(matches))
			for j, i := range matches {
				found[j] = r.records[i]
			}
			return nil, &MatchError{Name: in.name, Matches: found}
		}
	case ModeSecondRating:
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoMatch, in.name)
		}
	}

	result := &SubmitResult{}
	photo, err := r.savePhoto(ctx, cmd.Photo, result)
	if err != nil {
		return nil, err
	}

	var rec Record
	if in.mode == ModeSecondRating {
		rec, err = r.rateAgain(r.latest(matches), in, photo)
		result.Action = Updated
	} else {
		rec, err = r.create(cmd, in, photo)
		result.Action = Created
	}
	if err != nil {
		return nil, err
	}

	next := slices.Clone(r.records)
	if i := slices.IndexFunc(next, func(x Record) bool { return x.ID == rec.ID }); i >= 0 {
		next[i] = rec
	} else {
		next = append(next, rec)
	}

	err = r.commit(ctx, next, func(ctx context.Context) error {
		return r.store.AppendOrUpdate(ctx, rec)
	})

	result.Record = rec
	if i := r.indexOf(rec.ID); i >= 0 {
		result.Record = r.records[i]
	}
	if err != nil {
		return result, err
	}

	r.logger.Info("record submitted", "action", result.Action, "id", rec.ID, "score", rec.Score, "tier", rec.Tier)
	return result, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	next := slices.Delete(slices.Clone(r.records), i, i+1)
	return r.commit(ctx, next, func(ctx context.Context) error {
		return r.store.DeleteByIDs(ctx, []string{id})
	})
}

// DeleteBatch removes every record whose ID is in ids and reports how many
// were removed. Unknown IDs are ignored.
func (r *repo) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(r.records), func(rec Record) bool {
		return slices.Contains(ids, rec.ID)
	})
	removed := len(r.records) - len(next)
	if removed == 0 {
		return 0, nil
	}

	err := r.commit(ctx, next, func(ctx context.Context) error {
		return r.store.DeleteByIDs(ctx, ids)
	})
	return removed, err
}

// Clear removes every record. A pending load failure is discarded so stored
// records are not merged back into the emptied set.
func (r *repo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loadErr = nil
	return r.commit(ctx, []Record{}, nil)
}

// Flush retries persistence of the in-memory set after an earlier failure.
func (r *repo) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty && r.loadErr == nil {
		return nil
	}
	return r.commit(ctx, slices.Clone(r.records), nil)
}

// commit persists next and reloads. While the set is dirty or was never
// loaded, the whole set is written instead of applying op. Caller holds mu.
func (r *repo) commit(ctx context.Context, next []Record, op func(context.Context) error) error {
	var err error
	if r.dirty || r.loadErr != nil || op == nil {
		next, err = r.saveAll(ctx, next)
	} else {
		err = op(ctx)
	}

	if err != nil {
		r.records = next
		r.dirty = true
		r.logger.Error("persist records failed", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	r.dirty = false
	r.loadErr = nil

	loaded, err := r.store.LoadAll(ctx)
	if err != nil {
		r.records = next
		r.logger.Warn("reload after persist failed", "error", err)
		return nil
	}

	r.records = loaded
	return nil
}

// saveAll writes next over the store. When the startup load failed, records
// already in the store are kept ahead of the in-memory ones.
func (r *repo) saveAll(ctx context.Context, next []Record) ([]Record, error) {
	if r.loadErr != nil {
		stored, err := r.store.LoadAll(ctx)
		if err != nil {
			return next, err
		}
		next = mergeMissing(stored, next)
	}
	return next, r.store.SaveAll(ctx, next)
}

type submission struct {
	name   string
	remark string
	grade  grades.Grade
	second grades.Grade
	mood   Mood
	mode   Mode
	weight *float64
}

func (r *repo) validate(cmd SubmitCommand) (submission, error) {
	var (
		in  submission
		err error
	)

	in.name = strings.TrimSpace(cmd.Name)
	if in.name == "" {
		return in, ErrEmptyName
	}
	if utf8.RuneCountInString(in.name) > MaxNameLength {
		return in, fmt.Errorf("%w: name over %d characters", ErrTooLong, MaxNameLength)
	}
	// encoding/csv reads a quoted CRLF back as LF.
	in.remark = strings.ReplaceAll(strings.TrimSpace(cmd.Remark), "\r\n", "\n")
	if utf8.RuneCountInString(in.remark) > MaxRemarkLength {
		return in, fmt.Errorf("%w: remark over %d characters", ErrTooLong, MaxRemarkLength)
	}

	if in.grade, err = grades.Resolve(cmd.Grade.Main, cmd.Grade.Sub); err != nil {
		return in, err
	}
	if cmd.SecondGrade != nil && strings.TrimSpace(cmd.SecondGrade.Sub) != "" {
		if in.second, err = grades.Resolve(cmd.SecondGrade.Main, cmd.SecondGrade.Sub); err != nil {
			return in, err
		}
	}

	if in.mood, err = ParseMood(cmd.Mood); err != nil {
		return in, err
	}

	if cmd.Weight != nil {
		if err := scoring.ValidateWeight(*cmd.Weight); err != nil {
			return in, err
		}
		in.weight = cmd.Weight
	}

	in.mode = cmd.Mode
	switch in.mode {
	case "":
		in.mode = ModeAuto
	case ModeAuto, ModeNew, ModeSecondRating:
	default:
		return in, fmt.Errorf("%w: %q", ErrInvalidMode, in.mode)
	}

	return in, nil
}

func (r *repo) create(cmd SubmitCommand, in submission, photo string) (Record, error) {
	rec := Record{
		ID:           NewID(),
		Timestamp:    r.clock.Stamp(),
		Type:         strings.TrimSpace(cmd.Type),
		Name:         in.name,
		Link:         strings.TrimSpace(cmd.Link),
		Context:      strings.TrimSpace(cmd.Context),
		PrimaryMain:  in.grade.Primary(),
		PrimaryGrade: in.grade,
		Mood:         in.mood,
		Remark:       in.remark,
		Photo:        photo,
	}

	var (
		res scoring.Result
		err error
	)
	if in.second != "" {
		res, err = r.engine.ScoreGrades(in.grade, in.second, in.weight)
		rec.SecondaryMain = in.second.Primary()
		rec.SecondaryGrade = in.second
	} else {
		res, err = r.engine.ScoreSingle(in.grade)
	}
	if err != nil {
		return Record{}, err
	}

	rec.Score = res.Final
	rec.Tier = res.Tier
	return rec, nil
}

// rateAgain scores the record at index i with its stored primary grade as
// primary and the submitted grade as secondary.
func (r *repo) rateAgain(i int, in submission, photo string) (Record, error) {
	rec := r.records[i]

	primary, err := grades.ValueOf(rec.PrimaryGrade)
	if err != nil {
		return Record{}, fmt.Errorf("stored primary grade of %s: %w", rec.ID, err)
	}
	secondary, err := grades.ValueOf(in.grade)
	if err != nil {
		return Record{}, err
	}

	weight := r.engine.Weight
	if in.weight != nil {
		weight = *in.weight
	}

	res, err := r.engine.Score(primary, secondary, weight)
	if err != nil {
		return Record{}, err
	}

	rec.SecondaryMain = in.grade.Primary()
	rec.SecondaryGrade = in.grade
	rec.Score = res.Final
	rec.Tier = res.Tier
	rec.Timestamp = r.clock.Stamp()
	if photo != "" {
		rec.Photo = photo
	}
	return rec, nil
}

// savePhoto stores an attached image. Unsupported images reject the
// submission; other failures only drop the photo.
func (r *repo) savePhoto(ctx context.Context, upload *PhotoUpload, result *SubmitResult) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", nil
	}

	if r.photos == nil {
		result.Warnings = append(result.Warnings, "photo storage is not configured; photo was not saved")
		return "", nil
	}

	name, err := r.photos.Save(ctx, upload.Filename, upload.Data)
	if err != nil {
		if errors.Is(err, photos.ErrUnsupportedImage) || errors.Is(err, photos.ErrEmpty) {
			return "", err
		}
		r.logger.Warn("photo save failed, keeping record without photo", "error", err)
		result.Warnings = append(result.Warnings, "photo was not saved: "+err.Error())
		return "", nil
	}
	return name, nil
}

// latest returns the index of the most recent record among indices.
// Unparseable timestamps count as earliest; ties go to the later index.
func (r *repo) latest(indices []int) int {
	best := indices[0]
	bestAt := r.clock.ParseOrEarliest(r.records[best].Timestamp)

	for _, i := range indices[1:] {
		at := r.clock.ParseOrEarliest(r.records[i].Timestamp)
		if !at.Before(bestAt) {
			best, bestAt = i, at
		}
	}
	return best
}

func (r *repo) matchIndices(name string) []int {
	var out []int
	for i, rec := range r.records {
		if sameName(rec.Name, name) {
			out = append(out, i)
		}
	}
	return out
}

func (r *repo) indexOf(id string) int {
	return slices.IndexFunc(r.records, func(rec Record) bool { return rec.ID == id })
}

// mergeMissing returns stored records absent from current, followed by current.
func mergeMissing(stored, current []Record) []Record {
	known := make(map[string]struct{}, len(current))
	for _, rec := range current {
		known[rec.ID] = struct{}{}
	}

	out := make([]Record, 0, len(stored)+len(current))
	for _, rec := range stored {
		if _, ok := known[rec.ID]; !ok {
			out = append(out, rec)
		}
	}
	return append(out, current...)
}
