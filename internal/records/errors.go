package records

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/hearth/internal/grades"
	"github.com/JaimeStill/hearth/internal/photos"
	"github.com/JaimeStill/hearth/internal/scoring"
)

// Domain errors for record operations.
var (
	ErrNotFound     = errors.New("record not found")
	ErrEmptyName    = errors.New("name must not be empty")
	ErrInvalidMood  = errors.New("mood must be pleasant, neutral or unpleasant")
	ErrInvalidMode  = errors.New("mode must be auto, new or second_rating")
	ErrNameExists   = errors.New("a record with this name already exists")
	ErrNoMatch      = errors.New("no record with this name to rate again")
	ErrPersistence  = errors.New("record store unavailable")
	ErrUnknownField = errors.New("unknown sort field")
	ErrFileTooLarge = errors.New("upload exceeds maximum size")
	ErrInvalidInput = errors.New("invalid request body")
	ErrTooLong      = errors.New("field exceeds maximum length")
	ErrBadFormat    = errors.New("export format must be csv or xlsx")
)

// MatchError reports the existing records that share a submitted name.
// It unwraps to ErrNameExists.
type MatchError struct {
	Name    string
	Matches []Record
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s: %q has %d record(s)", ErrNameExists, e.Name, len(e.Matches))
}

func (e *MatchError) Unwrap() error {
	return ErrNameExists
}

// MapHTTPStatus maps record domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, ErrNameExists):
		return http.StatusConflict
	case errors.Is(err, ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrInvalidMood),
		errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrTooLong),
		errors.Is(err, ErrBadFormat),
		errors.Is(err, grades.ErrInvalidGrade),
		errors.Is(err, scoring.ErrInvalidWeight),
		errors.Is(err, photos.ErrUnsupportedImage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
