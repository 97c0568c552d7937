// Package records holds the in-memory tabular types shared by every pipeline
// stage: a Record is one row keyed by column name, and a Table keeps the
// header order that a map alone cannot.
package records

import (
	"fmt"
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Record is a single row. Missing values are stored as nil.
type Record map[string]any

// Clone returns a shallow copy of r. Values are scalars (string, float64,
// int64, nil), so a shallow copy is enough to keep transforms side-effect free.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of columns plus its rows.
type Table struct {
	Name    string
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithRows returns a new Table with the same name and header and the given rows.
func (t *Table) WithRows(rows []Record) *Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	return &Table{Name: t.Name, Columns: cols, Rows: rows}
}

// Values returns rows as positional slices aligned with t.Columns, the shape
// storage backends expect for bulk inserts.
func (t *Table) Values() [][]any {
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r[c]
		}
		out[i] = row
	}
	return out
}

// Fingerprint hashes the header and every cell in column order. Two tables
// with the same content and row order produce the same value.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	for _, c := range t.Columns {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0x1f})
	}
	_, _ = h.Write([]byte{0x1e})
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			_, _ = h.WriteString(FormatValue(r[c]))
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte{0x1e})
	}
	return h.Sum64()
}

// FormatValue renders a cell for hashing and logging. nil renders as "\x00"
// so that it never collides with an empty string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "\x00"
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return "NaN"
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
