package records

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/JaimeStill/hearth/internal/grades"
	"github.com/JaimeStill/hearth/internal/scoring"
	"github.com/JaimeStill/hearth/pkg/query"
	"github.com/JaimeStill/hearth/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "records", "r").
	Project("id", "ID").
	Project("logged_at", "Timestamp").
	Project("item_type", "Type").
	Project("name", "Name").
	Project("link", "Link").
	Project("context", "Context").
	Project("primary_main", "PrimaryMain").
	Project("primary_grade", "PrimaryGrade").
	Project("secondary_main", "SecondaryMain").
	Project("secondary_grade", "SecondaryGrade").
	Project("score", "Score").
	Project("tier", "Tier").
	Project("mood", "Mood").
	Project("remark", "Remark").
	Project("photo", "Photo").
	Map("seq", "Seq")

var defaultSort = query.SortField{Field: "Seq"}

// Filters contains optional filtering criteria for record queries.
// Nil fields are ignored. Type, Tier and Mood use exact matching. Search is a
// case-insensitive substring matched against name, remark, link and context.
type Filters struct {
	Type   *string `json:"type,omitempty"`
	Tier   *string `json:"tier,omitempty"`
	Mood   *string `json:"mood,omitempty"`
	Search *string `json:"search,omitempty"`
}

// Match reports whether r satisfies every set filter.
func (f Filters) Match(r Record) bool {
	if f.Type != nil && r.Type != *f.Type {
		return false
	}
	if f.Tier != nil && string(r.Tier) != *f.Tier {
		return false
	}
	if f.Mood != nil && string(r.Mood) != *f.Mood {
		return false
	}
	if f.Search != nil {
		kw := strings.ToLower(strings.TrimSpace(*f.Search))
		if kw == "" {
			return true
		}
		for _, field := range []string{r.Name, r.Remark, r.Link, r.Context} {
			if strings.Contains(strings.ToLower(field), kw) {
				return true
			}
		}
		return false
	}
	return true
}

// Apply returns the records matching f, preserving order.
func (f Filters) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("type"); t != "" {
		f.Type = &t
	}
	if t := values.Get("tier"); t != "" {
		f.Tier = &t
	}
	if m := values.Get("mood"); m != "" {
		f.Mood = &m
	}
	if s := values.Get("search"); s != "" {
		f.Search = &s
	}

	return f
}

var sorters = map[string]func(a, b Record) int{
	"timestamp": func(a, b Record) int { return cmp.Compare(a.Timestamp, b.Timestamp) },
	"score":     func(a, b Record) int { return cmp.Compare(a.Score, b.Score) },
	"name":      func(a, b Record) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
}

// sortRecords orders records in place. Without fields the newest stored record comes first.
func sortRecords(records []Record, fields []query.SortField) error {
	if len(fields) == 0 {
		slices.Reverse(records)
		return nil
	}

	for _, f := range fields {
		if _, ok := sorters[f.Field]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, f.Field)
		}
	}

	slices.Reverse(records)
	slices.SortStableFunc(records, func(a, b Record) int {
		for _, f := range fields {
			c := sorters[f.Field](a, b)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return nil
}

// sameName reports whether two names refer to the same item.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r                            Record
		primaryMain, secondaryMain   string
		primaryGrade, secondaryGrade string
		tier, mood                   string
	)
	err := s.Scan(
		&r.ID, &r.Timestamp, &r.Type, &r.Name, &r.Link, &r.Context,
		&primaryMain, &primaryGrade, &secondaryMain, &secondaryGrade,
		&r.Score, &tier, &mood, &r.Remark, &r.Photo,
	)
	if err != nil {
		return Record{}, err
	}

	r.PrimaryMain = grades.Primary(primaryMain)
	r.PrimaryGrade = grades.Grade(primaryGrade)
	r.SecondaryMain = grades.Primary(secondaryMain)
	r.SecondaryGrade = grades.Grade(secondaryGrade)
	r.Tier = scoring.Tier(tier)
	r.Mood = Mood(mood)
	return r, nil
}
