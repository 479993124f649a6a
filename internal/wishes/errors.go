package wishes

import (
	"errors"
	"net/http"
)

var (
	ErrEmpty    = errors.New("wish must not be empty")
	ErrNotFound = errors.New("wish not found")
	ErrStorage  = errors.New("wish storage unavailable")
)

// MapHTTPStatus maps wish errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStorage):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
