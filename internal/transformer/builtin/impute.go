package builtin

import (
	"sort"

	"studentdw/pkg/records"
)

// Imputation describes one column whose missing values were filled.
type Imputation struct {
	Column   string
	Strategy string // "mode" or "median"
	Fill     any
	Count    int
}

// ImputeMode fills missing values of each column with the most frequent
// non-missing value. Ties go to the value seen first. A column with no
// non-missing value is left as is.
type ImputeMode struct {
	Columns []string

	// Observe, when set, receives one Imputation per column that had
	// missing values filled.
	Observe func(Imputation)
}

// Apply returns a table with fresh rows.
func (m ImputeMode) Apply(in *records.Table) (*records.Table, error) {
	rows := cloneRows(in.Rows)
	for _, col := range m.Columns {
		fill, ok := Mode(in.Rows, col)
		if !ok {
			continue
		}
		if n := fillMissing(rows, col, fill); n > 0 && m.Observe != nil {
			m.Observe(Imputation{Column: col, Strategy: "mode", Fill: fill, Count: n})
		}
	}
	return in.WithRows(rows), nil
}

// Mode returns the most frequent non-nil value of col. On a tie the value
// encountered first wins. ok is false when every value is nil.
func Mode(rows []records.Record, col string) (any, bool) {
	counts := map[string]int{}
	first := map[string]any{}
	var order []string
	for _, r := range rows {
		v := r[col]
		if v == nil {
			continue
		}
		k := records.FormatValue(v)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
			first[k] = v
		}
		counts[k]++
	}
	if len(order) == 0 {
		return nil, false
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return first[best], true
}

// ImputeMedian coerces each column to float64 (see Coerce) and fills the
// values that are missing or failed to parse with the median of the parsed
// ones. A column where nothing parses stays nil.
type ImputeMedian struct {
	Columns []string
	Observe func(Imputation)
}

// Apply returns a table with fresh rows.
func (m ImputeMedian) Apply(in *records.Table) (*records.Table, error) {
	coerced, err := Coerce{Columns: m.Columns}.Apply(in)
	if err != nil {
		return nil, err
	}
	rows := coerced.Rows
	for _, col := range m.Columns {
		med, ok := Median(rows, col)
		if !ok {
			continue
		}
		if n := fillMissing(rows, col, med); n > 0 && m.Observe != nil {
			m.Observe(Imputation{Column: col, Strategy: "median", Fill: med, Count: n})
		}
	}
	return coerced, nil
}

// Median returns the median of the float64 values of col, averaging the two
// middle values for an even count. ok is false when there are none.
func Median(rows []records.Record, col string) (float64, bool) {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := r[col].(float64); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return (vals[mid-1] + vals[mid]) / 2, true
}

func cloneRows(in []records.Record) []records.Record {
	out := make([]records.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// fillMissing sets col to fill on every row where it is nil and returns how
// many rows changed. rows must already be private copies.
func fillMissing(rows []records.Record, col string, fill any) int {
	n := 0
	for _, r := range rows {
		if r[col] == nil {
			r[col] = fill
			n++
		}
	}
	return n
}
