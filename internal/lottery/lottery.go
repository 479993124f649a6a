// Package lottery draws random suggestions from two operator-managed pools.
package lottery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/JaimeStill/hearth/pkg/filestore"
)

// Pool names.
const (
	Retry  = "retry"
	Reward = "reward"
)

var legacyPools = map[string]string{
	"再来一次": Retry,
	"获得奖励": Reward,
}

// Defaults are used when the pool file is missing or malformed.
func Defaults() Pools {
	return Pools{
		Retry:  []string{"try once more", "sip some water and breathe"},
		Reward: []string{"a kiss", "a movie together", "a cup of milk tea"},
	}
}

// Pools holds the entries of both pools.
type Pools struct {
	Retry  []string `json:"retry"`
	Reward []string `json:"reward"`
}

func (p Pools) get(name string) ([]string, bool) {
	switch name {
	case Retry:
		return p.Retry, true
	case Reward:
		return p.Reward, true
	}
	return nil, false
}

// Draw is one lottery result.
type Draw struct {
	Pool   string `json:"pool"`
	Result string `json:"result"`
}

// System manages the pools and performs draws.
type System interface {
	Handler() *Handler
	Pools(ctx context.Context) (Pools, error)
	Replace(ctx context.Context, pools Pools) (Pools, error)
	Draw(ctx context.Context, pool string) (*Draw, error)
}

type wheel struct {
	file   *filestore.JSON[map[string][]string]
	pick   func(n int) int
	logger *slog.Logger
}

// New creates a lottery persisted at path. pick returns an index in [0, n);
// nil uses math/rand.
func New(path string, pick func(n int) int, logger *slog.Logger) System {
	if pick == nil {
		pick = rand.IntN
	}
	return &wheel{
		file:   filestore.NewJSON(path, func() map[string][]string { return toDocument(Defaults()) }),
		pick:   pick,
		logger: logger.With("system", "lottery"),
	}
}

func (l *wheel) Handler() *Handler {
	return NewHandler(l, l.logger)
}

func (l *wheel) Pools(ctx context.Context) (Pools, error) {
	if err := ctx.Err(); err != nil {
		return Pools{}, err
	}

	doc, malformed, err := l.file.Load()
	if err != nil {
		return Pools{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if malformed {
		l.logger.Warn("lottery file malformed, using defaults", "path", l.file.Path())
	}
	return fromDocument(doc), nil
}

// Replace overwrites both pools. Entries are trimmed and blanks dropped.
func (l *wheel) Replace(ctx context.Context, pools Pools) (Pools, error) {
	if err := ctx.Err(); err != nil {
		return Pools{}, err
	}

	pools = Pools{Retry: clean(pools.Retry), Reward: clean(pools.Reward)}
	if err := l.file.Save(toDocument(pools)); err != nil {
		return Pools{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	l.logger.Info("lottery pools replaced", "retry", len(pools.Retry), "reward", len(pools.Reward))
	return pools, nil
}

func (l *wheel) Draw(ctx context.Context, pool string) (*Draw, error) {
	pools, err := l.Pools(ctx)
	if err != nil {
		return nil, err
	}

	entries, ok := pools.get(pool)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPool, pool)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyPool, pool)
	}

	return &Draw{Pool: pool, Result: entries[l.pick(len(entries))]}, nil
}

func clean(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// fromDocument reads pools from the stored map, accepting legacy keys.
// A pool absent from the document keeps its default entries.
func fromDocument(doc map[string][]string) Pools {
	byName := make(map[string][]string, len(doc))
	for k, v := range doc {
		if name, ok := legacyPools[k]; ok {
			k = name
		}
		byName[k] = v
	}

	pools := Defaults()
	if v, ok := byName[Retry]; ok {
		pools.Retry = clean(v)
	}
	if v, ok := byName[Reward]; ok {
		pools.Reward = clean(v)
	}
	return pools
}

func toDocument(p Pools) map[string][]string {
	return map[string][]string{
		Retry:  slices.Clone(p.Retry),
		Reward: slices.Clone(p.Reward),
	}
}
