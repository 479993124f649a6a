// Package records owns the journal's record set: the persisted store contract
// and its csv, xlsx and postgres backends, submission with the second-rating
// flow, filtering, deletion and export.
package records

import (
	"strings"

	"github.com/JaimeStill/hearth/internal/grades"
	"github.com/JaimeStill/hearth/internal/scoring"
)

// Mood is how the experience felt.
type Mood string

const (
	Pleasant   Mood = "pleasant"
	Neutral    Mood = "neutral"
	Unpleasant Mood = "unpleasant"
)

// Moods lists the valid moods in display order.
var Moods = []Mood{Pleasant, Neutral, Unpleasant}

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	switch m {
	case Pleasant, Neutral, Unpleasant:
		return true
	}
	return false
}

// ParseMood trims s and maps an empty value to Neutral.
func ParseMood(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Neutral, nil
	}
	m := Mood(strings.ToLower(s))
	if !m.Valid() {
		return "", ErrInvalidMood
	}
	return m, nil
}

// Record is one rated item in the journal.
// SecondaryMain and SecondaryGrade are empty until a second rating is given.
type Record struct {
	ID             string         `json:"id"`
	Timestamp      string         `json:"timestamp"`
	Type           string         `json:"type"`
	Name           string         `json:"name"`
	Link           string         `json:"link"`
	Context        string         `json:"context"`
	PrimaryMain    grades.Primary `json:"primary_main"`
	PrimaryGrade   grades.Grade   `json:"primary_grade"`
	SecondaryMain  grades.Primary `json:"secondary_main"`
	SecondaryGrade grades.Grade   `json:"secondary_grade"`
	Score          float64        `json:"score"`
	Tier           scoring.Tier   `json:"tier"`
	Mood           Mood           `json:"mood"`
	Remark         string         `json:"remark"`
	Photo          string         `json:"photo"`
}

// Rated reports whether the record has a second rating.
func (r Record) Rated() bool {
	return r.SecondaryGrade != ""
}

// Suggested values offered to the presentation layer. Both lists are open-ended.
var (
	SuggestedTypes    = []string{"takeout", "household", "cosmetics", "digital", "small moment", "other"}
	SuggestedContexts = []string{"home", "commute", "travel", "work", "date", "other"}
)

// Mode selects how Submit treats an existing record with the same name.
type Mode string

const (
	// ModeAuto creates when no record shares the name and otherwise reports the matches.
	ModeAuto Mode = "auto"
	// ModeNew always creates a record.
	ModeNew Mode = "new"
	// ModeSecondRating updates the most recent record with the same name.
	ModeSecondRating Mode = "second_rating"
)

// Action reports what Submit did.
type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
)

// GradeInput is a two-step grade selection. Main may be empty.
type GradeInput struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}

// PhotoUpload carries an attached image.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

// SubmitCommand carries a rating submission.
// Weight overrides the configured primary weight for this submission only.
type SubmitCommand struct {
	Type        string       `json:"type"`
	Name        string       `json:"name"`
	Link        string       `json:"link"`
	Context     string       `json:"context"`
	Grade       GradeInput   `json:"grade"`
	SecondGrade *GradeInput  `json:"second_grade,omitempty"`
	Mood        string       `json:"mood"`
	Remark      string       `json:"remark"`
	Mode        Mode         `json:"mode"`
	Weight      *float64     `json:"weight,omitempty"`
	Photo       *PhotoUpload `json:"-"`
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	Action   Action   `json:"action"`
	Record   Record   `json:"record"`
	Warnings []string `json:"warnings,omitempty"`
}

// Status describes the in-memory record set and its persistence health.
type Status struct {
	Count     int    `json:"count"`
	Dirty     bool   `json:"dirty"`
	LoadError string `json:"load_error,omitempty"`
	Backend   string `json:"backend"`
}

// TypeOptions are the choices offered for the type and context fields.
type TypeOptions struct {
	Types    []string `json:"types"`
	Contexts []string `json:"contexts"`
}
