// Package grades defines the ordinal grade vocabulary used to rate journaled items.
// Twelve symbols (S+ through C-) map to fixed numeric values in [0.5, 5.0], grouped
// under four primary grades that drive two-step selection.
package grades

import (
	"fmt"
	"strings"
)

// Grade is a sub-grade symbol such as "A+". The zero value means no grade.
type Grade string

// Primary is a top-level grade letter: S, A, B or C.
type Primary string

const (
	PrimaryS Primary = "S"
	PrimaryA Primary = "A"
	PrimaryB Primary = "B"
	PrimaryC Primary = "C"
)

var primaries = []Primary{PrimaryS, PrimaryA, PrimaryB, PrimaryC}

var subGrades = map[Primary][]Grade{
	PrimaryS: {"S+", "S", "S-"},
	PrimaryA: {"A+", "A", "A-"},
	PrimaryB: {"B+", "B", "B-"},
	PrimaryC: {"C+", "C", "C-"},
}

var values = map[Grade]float64{
	"S+": 5.0, "S": 4.7, "S-": 4.4,
	"A+": 4.1, "A": 3.8, "A-": 3.5,
	"B+": 3.0, "B": 2.5, "B-": 2.0,
	"C+": 1.5, "C": 1.0, "C-": 0.5,
}

// Option describes one selectable sub-grade and its numeric value.
type Option struct {
	Grade Grade   `json:"grade"`
	Value float64 `json:"value"`
}

// Group describes a primary grade and its three permitted sub-grades.
type Group struct {
	Primary   Primary  `json:"primary"`
	SubGrades []Option `json:"sub_grades"`
}

// ValueOf returns the numeric value of a grade symbol.
func ValueOf(g Grade) (float64, error) {
	v, ok := values[g]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, string(g))
	}
	return v, nil
}

// Primaries returns the primary grades in descending order.
func Primaries() []Primary {
	out := make([]Primary, len(primaries))
	copy(out, primaries)
	return out
}

// SubGrades returns the sub-grades permitted under a primary grade.
func SubGrades(p Primary) ([]Grade, error) {
	subs, ok := subGrades[p]
	if !ok {
		return nil, fmt.Errorf("%w: unknown primary %q", ErrInvalidGrade, string(p))
	}
	out := make([]Grade, len(subs))
	copy(out, subs)
	return out, nil
}

// Vocabulary returns every primary grade with its sub-grades and values.
func Vocabulary() []Group {
	groups := make([]Group, 0, len(primaries))
	for _, p := range primaries {
		g := Group{Primary: p}
		for _, s := range subGrades[p] {
			g.SubGrades = append(g.SubGrades, Option{Grade: s, Value: values[s]})
		}
		groups = append(groups, g)
	}
	return groups
}

// Parse validates a bare sub-grade symbol. Surrounding whitespace is ignored.
func Parse(s string) (Grade, error) {
	g := Grade(strings.TrimSpace(s))
	if _, err := ValueOf(g); err != nil {
		return "", err
	}
	return g, nil
}

// Resolve validates a two-step selection: sub must belong to the sub-grade set of main.
// An empty main is inferred from the sub-grade.
func Resolve(main, sub string) (Grade, error) {
	g, err := Parse(sub)
	if err != nil {
		return "", err
	}

	main = strings.TrimSpace(main)
	if main == "" {
		return g, nil
	}

	subs, err := SubGrades(Primary(main))
	if err != nil {
		return "", err
	}
	for _, s := range subs {
		if s == g {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a sub-grade of %q", ErrInvalidGrade, sub, main)
}

// Primary returns the primary grade a sub-grade belongs to, or "" for an invalid grade.
func (g Grade) Primary() Primary {
	if _, ok := values[g]; !ok {
		return ""
	}
	return Primary(g[:1])
}

// Valid reports whether g is one of the twelve grade symbols.
func (g Grade) Valid() bool {
	_, ok := values[g]
	return ok
}
