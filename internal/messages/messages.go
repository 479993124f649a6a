// Package messages keeps the append-only message board as a two-column CSV log.
package messages

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/pkg/filestore"
)

// MaxLength is the longest accepted message in characters.
const MaxLength = 300

var header = []string{"timestamp", "text"}

// legacy board headers
var headerAliases = map[string]string{
	"时间": "timestamp",
	"留言": "text",
}

// Message is one board entry.
type Message struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// System is the message board.
type System interface {
	Handler() *Handler
	Post(ctx context.Context, text string) (*Message, error)
	List(ctx context.Context, limit int) ([]Message, error)
	Clear(ctx context.Context) error
}

type board struct {
	path   string
	clock  *clock.Clock
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a message board persisted at path.
func New(path string, clk *clock.Clock, logger *slog.Logger) System {
	return &board{
		path:   path,
		clock:  clk,
		logger: logger.With("system", "messages"),
	}
}

func (b *board) Handler() *Handler {
	return NewHandler(b, b.logger)
}

// Post appends a trimmed message stamped with the local time.
func (b *board) Post(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmpty
	}
	if utf8.RuneCountInString(text) > MaxLength {
		return nil, fmt.Errorf("%w: over %d characters", ErrTooLong, MaxLength)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	msgs, err := b.read()
	if err != nil {
		return nil, err
	}

	msg := Message{Timestamp: b.clock.Stamp(), Text: text}
	if err := b.write(append(msgs, msg)); err != nil {
		return nil, err
	}

	b.logger.Info("message posted", "length", utf8.RuneCountInString(text))
	return &msg, nil
}

// List returns messages newest first. A positive limit caps the result.
func (b *board) List(ctx context.Context, limit int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	msgs, err := b.read()
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	slices.Reverse(msgs)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// Clear removes the board file.
func (b *board) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	b.logger.Info("message board cleared")
	return nil
}

func (b *board) read() ([]Message, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrStorage, b.path, err)
	}
	if len(rows) == 0 {
		return []Message{}, nil
	}

	ts, txt := 0, 1
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		switch name {
		case "timestamp":
			ts = i
		case "text":
			txt = i
		}
	}

	msgs := make([]Message, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var m Message
		if ts < len(row) {
			m.Timestamp = row[ts]
		}
		if txt < len(row) {
			m.Text = row[txt]
		}
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (b *board) write(msgs []Message) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := make([][]string, 0, len(msgs)+1)
	rows = append(rows, header)
	for _, m := range msgs {
		rows = append(rows, []string{m.Timestamp, m.Text})
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := filestore.WriteAtomic(b.path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
