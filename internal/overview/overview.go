// Package overview assembles the landing summary from every widget.
package overview

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/hearth/internal/analytics"
	"github.com/JaimeStill/hearth/internal/events"
	"github.com/JaimeStill/hearth/internal/messages"
	"github.com/JaimeStill/hearth/internal/records"
	"github.com/JaimeStill/hearth/internal/wishes"
)

// Section sizes.
const (
	TopLikedCount  = 5
	UpcomingEvents = 3
	LatestMessages = 5
)

// Overview is the landing summary.
type Overview struct {
	Records      records.Status        `json:"records"`
	Distribution []analytics.TierCount `json:"distribution"`
	TopLiked     []analytics.NameCount `json:"top_liked"`
	Streak       int                   `json:"streak"`
	Wishes       wishes.Completion     `json:"wishes"`
	Events       []events.Event        `json:"events"`
	Messages     []messages.Message    `json:"messages"`
}

// System builds the overview.
type System interface {
	Handler() *Handler
	Build(ctx context.Context) (*Overview, error)
}

type builder struct {
	records   records.System
	analytics analytics.System
	wishes    wishes.System
	events    events.System
	messages  messages.System
	logger    *slog.Logger
}

// New creates the overview System over the given widgets.
func New(
	recs records.System,
	an analytics.System,
	wl wishes.System,
	ev events.System,
	msgs messages.System,
	logger *slog.Logger,
) System {
	return &builder{
		records:   recs,
		analytics: an,
		wishes:    wl,
		events:    ev,
		messages:  msgs,
		logger:    logger.With("system", "overview"),
	}
}

func (b *builder) Handler() *Handler {
	return NewHandler(b, b.logger)
}

// Build loads every section concurrently. The first failure cancels the rest.
func (b *builder) Build(ctx context.Context) (*Overview, error) {
	ov := &Overview{
		Records:      b.records.Status(),
		Distribution: b.analytics.Distribution(records.Filters{}),
		TopLiked:     b.analytics.TopLiked(TopLikedCount),
		Streak:       b.analytics.Streak(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := b.wishes.List(ctx)
		if err != nil {
			return err
		}
		ov.Wishes = list.Completion
		return nil
	})

	g.Go(func() error {
		evs, err := b.events.List(ctx)
		if err != nil {
			return err
		}
		ov.Events = evs[:min(UpcomingEvents, len(evs))]
		return nil
	})

	g.Go(func() error {
		msgs, err := b.messages.List(ctx, LatestMessages)
		if err != nil {
			return err
		}
		ov.Messages = msgs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ov, nil
}
