package photos

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/hearth/pkg/storage"
)

// Domain errors for photo operations.
var (
	ErrUnsupportedImage = errors.New("photo must be a png or jpeg image")
	ErrEmpty            = errors.New("photo is empty")
	ErrNotFound         = errors.New("photo not found")
)

// MapHTTPStatus maps photo domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedImage), errors.Is(err, ErrEmpty):
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
