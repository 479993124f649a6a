// Package wishes keeps the shared wish list.
package wishes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/hearth/pkg/filestore"
)

// Wish is one wish list entry.
type Wish struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
	ID   string `json:"id"`
}

// Completion counts fulfilled wishes.
type Completion struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// List is the wish list with its completion.
type List struct {
	Wishes     []Wish     `json:"wishes"`
	Completion Completion `json:"completion"`
}

// System manages the wish list.
type System interface {
	Handler() *Handler
	List(ctx context.Context) (*List, error)
	Add(ctx context.Context, text string) (*Wish, error)
	Toggle(ctx context.Context, id string) (*Wish, error)
}

type repo struct {
	file   *filestore.JSON[[]Wish]
	logger *slog.Logger
}

// New creates a wish list persisted at path.
func New(path string, logger *slog.Logger) System {
	return &repo{
		file:   filestore.NewJSON(path, func() []Wish { return []Wish{} }),
		logger: logger.With("system", "wishes"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) (*List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wishes, malformed, err := r.file.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if malformed {
		r.logger.Warn("wish file malformed, treating as empty", "path", r.file.Path())
	}
	if wishes == nil {
		wishes = []Wish{}
	}

	return &List{Wishes: wishes, Completion: completion(wishes)}, nil
}

func (r *repo) Add(ctx context.Context, text string) (*Wish, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wish := Wish{Text: text, ID: strings.ReplaceAll(uuid.NewString(), "-", "")}

	_, err := r.file.Update(func(wishes *[]Wish) error {
		*wishes = append(*wishes, wish)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	r.logger.Info("wish added", "id", wish.ID)
	return &wish, nil
}

// Toggle flips the done flag of the wish with the given id.
func (r *repo) Toggle(ctx context.Context, id string) (*Wish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var toggled Wish
	_, err := r.file.Update(func(wishes *[]Wish) error {
		i := slices.IndexFunc(*wishes, func(w Wish) bool { return w.ID == id })
		if i < 0 {
			return ErrNotFound
		}
		(*wishes)[i].Done = !(*wishes)[i].Done
		toggled = (*wishes)[i]
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return &toggled, nil
}

func completion(wishes []Wish) Completion {
	c := Completion{Total: len(wishes)}
	for _, w := range wishes {
		if w.Done {
			c.Done++
		}
	}
	return c
}
