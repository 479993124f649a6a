// Package filestore persists small documents on disk with atomic replacement.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// JSON reads and writes a value of type T as a JSON document at a fixed path.
// A missing or malformed file loads as the value returned by the fallback function.
type JSON[T any] struct {
	path     string
	fallback func() T
	mu       sync.Mutex
}

// NewJSON creates a JSON store for path. fallback must return a fresh value on every call.
func NewJSON[T any](path string, fallback func() T) *JSON[T] {
	return &JSON[T]{path: path, fallback: fallback}
}

// Path returns the backing file path.
func (s *JSON[T]) Path() string {
	return s.path
}

// Load returns the stored value. The boolean reports whether the fallback was used
// because the file was malformed; a missing file is not reported.
func (s *JSON[T]) Load() (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save writes v, replacing the file atomically.
func (s *JSON[T]) Save(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(v)
}

// Update loads the value, applies fn and saves the result. fn's error aborts the save.
func (s *JSON[T]) Update(fn func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, _, err := s.load()
	if err != nil {
		return v, err
	}
	if err := fn(&v); err != nil {
		return v, err
	}
	if err := s.save(v); err != nil {
		return v, err
	}
	return v, nil
}

func (s *JSON[T]) load() (T, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.fallback(), false, nil
		}
		var zero T
		return zero, false, fmt.Errorf("read %s: %w", s.path, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return s.fallback(), true, nil
	}
	return v, false, nil
}

func (s *JSON[T]) save(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	return WriteAtomic(s.path, data)
}

// WriteAtomic writes data to a temporary sibling of path and renames it into place.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
