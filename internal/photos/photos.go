// Package photos stores the images attached to records and serves the photo wall.
//
// Images are stored under random names that keep the uploaded extension.
// Records refer to photos by that name only, so deleting a record never
// removes its photo.
package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/hearth/pkg/storage"
)

var extensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
}

// System defines the public contract for photo operations.
type System interface {
	Handler() *Handler
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Open(ctx context.Context, name string) (*storage.Object, error)
	List(ctx context.Context) ([]string, error)
}

type photoSystem struct {
	store  storage.System
	logger *slog.Logger
}

// New creates a photo system over the given blob storage.
func New(store storage.System, logger *slog.Logger) System {
	return &photoSystem{
		store:  store,
		logger: logger.With("system", "photos"),
	}
}

func (s *photoSystem) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Save validates data as a png or jpeg image and stores it under a new name.
func (s *photoSystem) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}

	ext := strings.ToLower(path.Ext(filename))
	want, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedImage, ext)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if format != want {
		return "", fmt.Errorf("%w: %s content with %s extension", ErrUnsupportedImage, format, ext)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	if err := s.store.Upload(ctx, name, bytes.NewReader(data), storage.ContentTypeOf(name)); err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}

	s.logger.Info("photo saved", "name", name, "size", len(data))
	return name, nil
}

// Open returns the stored photo. The caller must close the body.
func (s *photoSystem) Open(ctx context.Context, name string) (*storage.Object, error) {
	if _, ok := extensions[strings.ToLower(path.Ext(name))]; !ok {
		return nil, ErrNotFound
	}

	obj, err := s.store.Download(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return obj, nil
}

// List returns the stored photo names in lexical order.
func (s *photoSystem) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	names := slices.DeleteFunc(keys, func(k string) bool {
		_, ok := extensions[strings.ToLower(path.Ext(k))]
		return !ok || strings.Contains(k, "/")
	})
	slices.Sort(names)
	return names, nil
}
