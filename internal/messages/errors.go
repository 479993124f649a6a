package messages

import (
	"errors"
	"net/http"
)

var (
	ErrEmpty   = errors.New("message must not be empty")
	ErrTooLong = errors.New("message too long")
	ErrStorage = errors.New("message board unavailable")
)

// MapHTTPStatus maps message errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmpty), errors.Is(err, ErrTooLong):
		return http.StatusBadRequest
	case errors.Is(err, ErrStorage):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
