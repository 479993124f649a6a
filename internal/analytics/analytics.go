// Package analytics derives read-only summaries from the record set: tier
// distribution, most liked names, the pleasant-mood streak and comfort picks.
package analytics

import (
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/hearth/internal/clock"
	"github.com/JaimeStill/hearth/internal/records"
	"github.com/JaimeStill/hearth/internal/scoring"
)

// DefaultTopN is the number of names TopLiked reports when not told otherwise.
const DefaultTopN = 10

// TierCount is the number of records in one tier.
type TierCount struct {
	Tier  scoring.Tier `json:"tier"`
	Count int          `json:"count"`
}

// NameCount is the number of pleasant records under one name.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Distribution counts records per tier. The three known tiers are always
// present in fixed order; unrecognised stored values follow in first-seen order.
func Distribution(recs []records.Record) []TierCount {
	out := make([]TierCount, len(scoring.Tiers))
	index := make(map[scoring.Tier]int, len(scoring.Tiers))
	for i, t := range scoring.Tiers {
		out[i] = TierCount{Tier: t}
		index[t] = i
	}

	for _, r := range recs {
		if strings.TrimSpace(string(r.Tier)) == "" {
			continue
		}
		i, ok := index[r.Tier]
		if !ok {
			i = len(out)
			index[r.Tier] = i
			out = append(out, TierCount{Tier: r.Tier})
		}
		out[i].Count++
	}

	return out
}

// TopLiked returns up to n names with the most pleasant records, most
// frequent first. Ties keep the order names were first encountered.
func TopLiked(recs []records.Record, n int) []NameCount {
	if n <= 0 {
		n = DefaultTopN
	}

	var counts []NameCount
	index := make(map[string]int)

	for _, r := range recs {
		if r.Mood != records.Pleasant {
			continue
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(counts)
			index[name] = i
			counts = append(counts, NameCount{Name: name})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b NameCount) int {
		return b.Count - a.Count
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		counts = []NameCount{}
	}
	return counts
}

// MoodStreak counts consecutive pleasant dates, walking back from the most
// recent date that has records. A date is pleasant when any record on it is.
// Only dates present in the data are walked; gaps do not break the streak.
// Malformed timestamps group at the earliest possible date.
func MoodStreak(recs []records.Record, clk *clock.Clock) int {
	pleasant := make(map[time.Time]bool)

	for _, r := range recs {
		day := clock.DateOf(clk.ParseOrEarliest(r.Timestamp))
		pleasant[day] = pleasant[day] || r.Mood == records.Pleasant
	}

	days := make([]time.Time, 0, len(pleasant))
	for d := range pleasant {
		days = append(days, d)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	streak := 0
	for _, d := range days {
		if !pleasant[d] {
			break
		}
		streak++
	}
	return streak
}

// Comfort returns one record per distinct name among pleasant records, in
// first-seen order, each the latest record under that name. A non-empty
// context limits the candidates to that context.
func Comfort(recs []records.Record, context string, clk *clock.Clock) []records.Record {
	context = strings.TrimSpace(context)

	out := make([]records.Record, 0)
	index := make(map[string]int)

	for _, r := range recs {
		if r.Mood != records.Pleasant {
			continue
		}
		if context != "" && strings.TrimSpace(r.Context) != context {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(r.Name))
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, r)
			continue
		}

		if !clk.ParseOrEarliest(r.Timestamp).Before(clk.ParseOrEarliest(out[i].Timestamp)) {
			out[i] = r
		}
	}

	return out
}
