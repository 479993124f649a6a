package events

import (
	"errors"
	"net/http"
)

var (
	ErrEmptyName   = errors.New("event name must not be empty")
	ErrInvalidDate = errors.New("event date must be YYYY-MM-DD")
	ErrStorage     = errors.New("event storage unavailable")
)

// MapHTTPStatus maps event errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorage):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
