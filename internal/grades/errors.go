package grades

import (
	"errors"
	"net/http"
)

// ErrInvalidGrade indicates a grade symbol outside the fixed vocabulary.
var ErrInvalidGrade = errors.New("invalid grade")

// MapHTTPStatus maps grade errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidGrade) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
