package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studentdw/pkg/records"
)

// NormalizeGender lower-cases the column and expands the single-letter
// codes "m" and "f". Other values are kept lower-cased.
type NormalizeGender struct {
	Column string
}

var genderCodes = map[string]string{"m": "male", "f": "female"}

// Apply returns a table with fresh rows.
func (g NormalizeGender) Apply(in *records.Table) (*records.Table, error) {
	col := g.Column
	if col == "" {
		col = "gender"
	}
	lower := cases.Lower(language.Und)
	rows := make([]records.Record, len(in.Rows))
	for i, r := range in.Rows {
		out := r.Clone()
		if s, ok := r[col].(string); ok {
			s = lower.String(strings.TrimSpace(s))
			if full, ok := genderCodes[s]; ok {
				s = full
			}
			out[col] = s
		}
		rows[i] = out
	}
	return in.WithRows(rows), nil
}

// MapValues replaces exact string matches in Column using Mapping. Values
// without an entry pass through unchanged.
type MapValues struct {
	Column  string
	Mapping map[string]string
}

// Apply returns a table with fresh rows.
func (m MapValues) Apply(in *records.Table) (*records.Table, error) {
	rows := make([]records.Record, len(in.Rows))
	for i, r := range in.Rows {
		out := r.Clone()
		if s, ok := r[m.Column].(string); ok {
			if to, ok := m.Mapping[strings.TrimSpace(s)]; ok {
				out[m.Column] = to
			}
		}
		rows[i] = out
	}
	return in.WithRows(rows), nil
}
