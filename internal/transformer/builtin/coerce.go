package builtin

import (
	"math"
	"strconv"
	"strings"

	"studentdw/pkg/records"
)

// Coerce converts the listed columns to float64. Values that do not parse
// become nil. A decimal comma ("3,5") is accepted.
type Coerce struct {
	Columns []string
}

// Apply returns a table with fresh rows; the input rows are not modified.
func (c Coerce) Apply(in *records.Table) (*records.Table, error) {
	rows := make([]records.Record, len(in.Rows))
	for i, r := range in.Rows {
		out := r.Clone()
		for _, col := range c.Columns {
			if f, ok := ToFloat(r[col]); ok {
				out[col] = f
			} else {
				out[col] = nil
			}
		}
		rows[i] = out
	}
	return in.WithRows(rows), nil
}

// ToFloat parses v as a float64. NaN counts as missing.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
