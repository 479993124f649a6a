// Package events tracks recurring anniversaries and counts down to their next occurrence.
package events

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/pkg/filestore"
)

// Event is an anniversary with its next occurrence.
type Event struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Next     string `json:"next"`
	DaysLeft int    `json:"days_left"`
}

// System manages the anniversaries.
type System interface {
	Handler() *Handler
	List(ctx context.Context) ([]Event, error)
	Add(ctx context.Context, name, date string) (*Event, error)
}

type calendar struct {
	file   *filestore.JSON[map[string]string]
	clock  *clock.Clock
	logger *slog.Logger
}

// New creates an event calendar persisted at path.
func New(path string, clk *clock.Clock, logger *slog.Logger) System {
	return &calendar{
		file:   filestore.NewJSON(path, func() map[string]string { return map[string]string{} }),
		clock:  clk,
		logger: logger.With("system", "events"),
	}
}

func (c *calendar) Handler() *Handler {
	return NewHandler(c, c.logger)
}

// List returns every event with its next occurrence, soonest first.
// Entries with unreadable dates are skipped.
func (c *calendar) List(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, malformed, err := c.file.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if malformed {
		c.logger.Warn("event file malformed, treating as empty", "path", c.file.Path())
	}

	today := c.clock.Today()
	out := make([]Event, 0, len(stored))
	for name, date := range stored {
		ev, err := upcoming(name, date, today)
		if err != nil {
			c.logger.Warn("skipping event with unreadable date", "name", name, "date", date)
			continue
		}
		out = append(out, ev)
	}

	slices.SortFunc(out, func(a, b Event) int {
		return cmp.Or(cmp.Compare(a.DaysLeft, b.DaysLeft), strings.Compare(a.Name, b.Name))
	})
	return out, nil
}

// Add stores an event, replacing any event with the same name.
func (c *calendar) Add(ctx context.Context, name, date string) (*Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	date = strings.TrimSpace(date)

	ev, err := upcoming(name, date, c.clock.Today())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, err = c.file.Update(func(m *map[string]string) error {
		if *m == nil {
			*m = map[string]string{}
		}
		(*m)[name] = date
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	c.logger.Info("event added", "name", name, "date", date)
	return &ev, nil
}

func upcoming(name, date string, today time.Time) (Event, error) {
	d, err := time.Parse(clock.DateLayout, date)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	next := NextOccurrence(d, today)
	return Event{
		Name:     name,
		Date:     date,
		Next:     next.Format(clock.DateLayout),
		DaysLeft: int(next.Sub(today).Hours() / 24),
	}, nil
}

// NextOccurrence returns the first anniversary of date on or after today, in
// today's zone. February 29 falls on March 1 in common years.
func NextOccurrence(date, today time.Time) time.Time {
	today = clock.DateOf(today)
	for year := today.Year(); ; year++ {
		next := time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, today.Location())
		if !next.Before(today) {
			return next
		}
	}
}
