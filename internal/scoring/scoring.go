// Package scoring combines a primary and a secondary grade into a weighted final
// score and a three-tier recommendation.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/JaimeStill/hearth/internal/grades"
)

// Tier is the recommendation derived from a final score.
type Tier string

const (
	Recommended    Tier = "recommended"
	Acceptable     Tier = "acceptable"
	NotRecommended Tier = "not_recommended"
)

// Tiers lists the recommendation tiers from highest to lowest.
var Tiers = []Tier{Recommended, Acceptable, NotRecommended}

// Valid reports whether t is one of the three recommendation tiers.
func (t Tier) Valid() bool {
	switch t {
	case Recommended, Acceptable, NotRecommended:
		return true
	}
	return false
}

// ErrInvalidWeight indicates a primary weight outside [0, 1].
var ErrInvalidWeight = errors.New("weight must be within [0, 1]")

// MapHTTPStatus maps scoring errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidWeight) || errors.Is(err, grades.ErrInvalidGrade) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Result is the outcome of scoring a grade pair.
type Result struct {
	Final float64 `json:"final"`
	Tier  Tier    `json:"tier"`
}

// Engine holds the operator-configured weight and tier thresholds.
type Engine struct {
	Weight              float64
	RecommendThreshold  float64
	AcceptableThreshold float64
}

// New creates an Engine and validates its settings.
func New(weight, recommend, acceptable float64) (*Engine, error) {
	e := &Engine{
		Weight:              weight,
		RecommendThreshold:  recommend,
		AcceptableThreshold: acceptable,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the weight range and threshold ordering.
func (e *Engine) Validate() error {
	if err := ValidateWeight(e.Weight); err != nil {
		return err
	}
	if e.AcceptableThreshold > e.RecommendThreshold {
		return fmt.Errorf("acceptable threshold %.3f exceeds recommend threshold %.3f",
			e.AcceptableThreshold, e.RecommendThreshold)
	}
	return nil
}

// Score combines two grade values with the given primary weight.
func (e *Engine) Score(primary, secondary, weight float64) (Result, error) {
	if err := ValidateWeight(weight); err != nil {
		return Result{}, err
	}
	final := Round3(weight*primary + (1-weight)*secondary)
	return Result{Final: final, Tier: e.Classify(final)}, nil
}

// ScoreGrades resolves both grades and scores them. A nil weight uses the configured weight.
func (e *Engine) ScoreGrades(primary, secondary grades.Grade, weight *float64) (Result, error) {
	pv, err := grades.ValueOf(primary)
	if err != nil {
		return Result{}, err
	}
	sv, err := grades.ValueOf(secondary)
	if err != nil {
		return Result{}, err
	}
	return e.Score(pv, sv, e.weightOr(weight))
}

// ScoreSingle scores a lone primary grade, equivalent to a weight of 1.
func (e *Engine) ScoreSingle(primary grades.Grade) (Result, error) {
	pv, err := grades.ValueOf(primary)
	if err != nil {
		return Result{}, err
	}
	final := Round3(pv)
	return Result{Final: final, Tier: e.Classify(final)}, nil
}

// Classify assigns a tier. Boundary scores fall into the higher tier.
func (e *Engine) Classify(score float64) Tier {
	switch {
	case score >= e.RecommendThreshold:
		return Recommended
	case score >= e.AcceptableThreshold:
		return Acceptable
	default:
		return NotRecommended
	}
}

// Round3 rounds to three decimal places, half away from zero.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func (e *Engine) weightOr(w *float64) float64 {
	if w == nil {
		return e.Weight
	}
	return *w
}

// ValidateWeight reports ErrInvalidWeight unless w is within [0, 1].
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || w < 0 || w > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, w)
	}
	return nil
}
