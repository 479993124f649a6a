package analytics

import (
	"log/slog"

	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/internal/records"
)

// Source supplies the current record set.
type Source interface {
	Snapshot() []records.Record
}

// System computes analytics over the live record set.
type System interface {
	Handler() *Handler
	Distribution(filters records.Filters) []TierCount
	TopLiked(n int) []NameCount
	Streak() int
	Comfort(context string) []records.Record
}

type engine struct {
	source Source
	clock  *clock.Clock
	logger *slog.Logger
}

// New creates an analytics System reading from source.
func New(source Source, clk *clock.Clock, logger *slog.Logger) System {
	return &engine{
		source: source,
		clock:  clk,
		logger: logger.With("system", "analytics"),
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *engine) Distribution(filters records.Filters) []TierCount {
	return Distribution(filters.Apply(e.source.Snapshot()))
}

func (e *engine) TopLiked(n int) []NameCount {
	return TopLiked(e.source.Snapshot(), n)
}

func (e *engine) Streak() int {
	return MoodStreak(e.source.Snapshot(), e.clock)
}

func (e *engine) Comfort(context string) []records.Record {
	return Comfort(e.source.Snapshot(), context, e.clock)
}
