package builtin

import (
	"sort"
	"strings"

	"studentdw/pkg/records"
)

// DeDup collapses duplicate rows by a key and chooses a winner according to a
// policy:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the row with the most non-missing fields;
//     ties break by "keep-first"
//
// A row's key is the concatenation of the key fields as strings. A nil key
// value is a key of its own, so rows missing the id collapse into one.
// Winners are emitted in input order.
type DeDup struct {
	// Keys are the field names that form the business key, e.g. ["student_id"].
	Keys []string

	// Policy selects the winner among duplicates.
	Policy string
}

// Apply returns a table holding only the winning row for each key. Rows are
// shared with the input, not copied.
func (d DeDup) Apply(in *records.Table) (*records.Table, error) {
	if in.Len() == 0 || len(d.Keys) == 0 {
		return in, nil
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-first"
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[string]slot, in.Len())

	keyOf := func(r records.Record) string {
		var b strings.Builder
		for i, k := range d.Keys {
			if i > 0 {
				b.WriteByte('\x1f')
			}
			b.WriteString(records.FormatValue(r[k]))
		}
		return b.String()
	}

	scoreOf := func(r records.Record) int {
		score := 0
		for _, v := range r {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			score++
		}
		return score
	}

	for i, r := range in.Rows {
		key := keyOf(r)
		prev, exists := winners[key]
		switch policy {
		case "keep-last":
			winners[key] = slot{index: i}
		case "most-complete":
			s := slot{index: i, score: scoreOf(r)}
			if !exists || s.score > prev.score {
				winners[key] = s
			}
		default: // keep-first
			if !exists {
				winners[key] = slot{index: i}
			}
		}
	}

	indexes := make([]int, 0, len(winners))
	for _, s := range winners {
		indexes = append(indexes, s.index)
	}
	sort.Ints(indexes)

	out := make([]records.Record, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, in.Rows[idx])
	}
	return in.WithRows(out), nil
}
