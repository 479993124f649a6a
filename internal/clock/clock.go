// Package clock produces and parses the local wall-clock timestamps stored on
// journal entries. The local zone is a fixed offset from UTC set by configuration.
package clock

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the persisted timestamp format.
const Layout = "2006-01-02 15:04:05"

// DateLayout is the calendar date format.
const DateLayout = "2006-01-02"

var parseLayouts = []string{
	Layout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	DateLayout,
}

// Clock reports the current time in a fixed local zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Clock for the given offset in hours east of UTC.
func New(offsetHours int) *Clock {
	return &Clock{
		loc: Zone(offsetHours),
		now: time.Now,
	}
}

// Fixed creates a Clock that always reports t, for deterministic callers.
func Fixed(offsetHours int, t time.Time) *Clock {
	return &Clock{
		loc: Zone(offsetHours),
		now: func() time.Time { return t },
	}
}

// Zone returns a fixed zone for an hour offset.
func Zone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// Location returns the clock's zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the local zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Stamp returns the current time formatted with Layout.
func (c *Clock) Stamp() string {
	return c.Now().Format(Layout)
}

// Today returns midnight of the current local date.
func (c *Clock) Today() time.Time {
	return DateOf(c.Now())
}

// Parse reads a stored timestamp. Values without zone information are
// interpreted in the clock's zone.
func (c *Clock) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t.In(c.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
}

// ParseOrEarliest parses s, returning the zero time for malformed input so it
// sorts before every real timestamp.
func (c *Clock) ParseOrEarliest(s string) time.Time {
	t, err := c.Parse(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DateOf truncates t to midnight of its calendar date in t's zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
