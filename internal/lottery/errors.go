package lottery

import (
	"errors"
	"net/http"
)

var (
	ErrUnknownPool = errors.New("unknown lottery pool")
	ErrEmptyPool   = errors.New("lottery pool is empty")
	ErrStorage     = errors.New("lottery storage unavailable")
)

// MapHTTPStatus maps lottery errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownPool):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyPool):
		return http.StatusConflict
	case errors.Is(err, ErrStorage):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
