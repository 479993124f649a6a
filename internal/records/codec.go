package records

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/hearth/internal/grades"
	"github.com/JaimeStill/hearth/internal/scoring"
)

// Columns is the header row written by the file backends, in order.
var Columns = []string{
	"id", "timestamp", "type", "name", "link", "context",
	"primary_main", "primary_grade", "secondary_main", "secondary_grade",
	"score", "tier", "mood", "remark", "photo",
}

// Legacy spreadsheet headers, accepted on read.
var headerAliases = map[string]string{
	"记录ID":  "id",
	"时间":    "timestamp",
	"物品类型":  "type",
	"名称":    "name",
	"链接":    "link",
	"情境":    "context",
	"主评级1":  "primary_main",
	"次评级1":  "primary_grade",
	"主评级2":  "secondary_main",
	"次评级2":  "secondary_grade",
	"最终分":   "score",
	"最终推荐":  "tier",
	"愉悦度":   "mood",
	"备注":    "remark",
	"照片文件名": "photo",
}

var legacyMoods = map[string]Mood{
	"愉悦":  Pleasant,
	"还行":  Neutral,
	"不愉悦": Unpleasant,
}

var legacyTiers = map[string]scoring.Tier{
	"推荐":  scoring.Recommended,
	"还行":  scoring.Acceptable,
	"不推荐": scoring.NotRecommended,
}

const bom = "\ufeff"

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func encodeRows(records []Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, Columns)
	for _, r := range records {
		rows = append(rows, encodeRecord(r))
	}
	return rows
}

func encodeRecord(r Record) []string {
	return []string{
		r.ID,
		r.Timestamp,
		r.Type,
		r.Name,
		r.Link,
		r.Context,
		string(r.PrimaryMain),
		string(r.PrimaryGrade),
		string(r.SecondaryMain),
		string(r.SecondaryGrade),
		formatScore(r.Score),
		string(r.Tier),
		string(r.Mood),
		r.Remark,
		r.Photo,
	}
}

// decodeRows converts a header row plus data rows into records.
// Missing columns default to empty, blank rows are skipped and
// short rows are padded.
func decodeRows(rows [][]string) []Record {
	if len(rows) == 0 {
		return []Record{}
	}

	index := make(map[string]int, len(Columns))
	for i, h := range rows[0] {
		name := strings.TrimSpace(strings.TrimPrefix(h, bom))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		records = append(records, Record{
			ID:             strings.TrimSpace(field("id")),
			Timestamp:      field("timestamp"),
			Type:           field("type"),
			Name:           field("name"),
			Link:           field("link"),
			Context:        field("context"),
			PrimaryMain:    grades.Primary(strings.TrimSpace(field("primary_main"))),
			PrimaryGrade:   grades.Grade(strings.TrimSpace(field("primary_grade"))),
			SecondaryMain:  grades.Primary(strings.TrimSpace(field("secondary_main"))),
			SecondaryGrade: grades.Grade(strings.TrimSpace(field("secondary_grade"))),
			Score:          parseScore(field("score")),
			Tier:           normalizeTier(field("tier")),
			Mood:           normalizeMood(field("mood")),
			Remark:         field("remark"),
			Photo:          field("photo"),
		})
	}

	return records
}

// repairIDs issues new IDs for blank or repeated IDs in place and reports how many changed.
// The first occurrence of a repeated ID keeps it.
func repairIDs(records []Record) int {
	seen := make(map[string]struct{}, len(records))
	repaired := 0

	for i := range records {
		id := records[i].ID
		if _, dup := seen[id]; id == "" || dup {
			id = NewID()
			records[i].ID = id
			repaired++
		}
		seen[id] = struct{}{}
	}

	return repaired
}

func normalizeMood(s string) Mood {
	s = strings.TrimSpace(s)
	if m, ok := legacyMoods[s]; ok {
		return m
	}
	return Mood(s)
}

func normalizeTier(s string) scoring.Tier {
	s = strings.TrimSpace(s)
	if t, ok := legacyTiers[s]; ok {
		return t
	}
	return scoring.Tier(s)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseScore(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
