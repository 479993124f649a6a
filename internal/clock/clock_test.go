package clock_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/hearth/internal/clock"
)

func TestStampUsesOffset(t *testing.T) {
	utc := time.Date(2024, 1, 2, 20, 30, 0, 0, time.UTC)
	c := clock.Fixed(8, utc)

	if got := c.Stamp(); got != "2024-01-03 04:30:00" {
		t.Errorf("Stamp() = %q, want 2024-01-03 04:30:00", got)
	}
	if got := c.Today().Format(clock.DateLayout); got != "2024-01-03" {
		t.Errorf("Today() = %q, want 2024-01-03", got)
	}
}

func TestParse(t *testing.T) {
	c := clock.New(8)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"stored layout", "2024-01-03 09:15:00", "2024-01-03 09:15:00"},
		{"iso without zone", "2024-01-03T09:15:00", "2024-01-03 09:15:00"},
		{"rfc3339 converted", "2024-01-03T01:15:00Z", "2024-01-03 09:15:00"},
		{"date only", "2024-01-03", "2024-01-03 00:00:00"},
		{"padded", "  2024-01-03 09:15:00 ", "2024-01-03 09:15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if s := got.Format(clock.Layout); s != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, s, tt.want)
			}
		})
	}
}

func TestParseOrEarliest(t *testing.T) {
	c := clock.New(0)

	if got := c.ParseOrEarliest("yesterday-ish"); !got.IsZero() {
		t.Errorf("ParseOrEarliest(malformed) = %v, want zero", got)
	}
	if _, err := c.Parse(""); err == nil {
		t.Error("Parse(\"\") should fail")
	}

	epoch := c.ParseOrEarliest("1970-01-01 00:00:00")
	if !epoch.After(time.Time{}) {
		t.Error("zero time should sort before any parsed timestamp")
	}
}
