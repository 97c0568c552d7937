package records

import (
	"math"
	"testing"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "\x00"},
		{"", ""},
		{"male", "male"},
		{3.5, "3.5"},
		{float64(2024), "2024"},
		{math.NaN(), "NaN"},
		{int64(-7), "-7"},
		{42, "42"},
		{true, "true"},
	}
	for _, c := range cases {
		if got := FormatValue(c.in); got != c.want {
			t.Fatalf("FormatValue(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTable_ValuesFollowColumnOrder(t *testing.T) {
	tbl := &Table{
		Columns: []string{"b", "a"},
		Rows:    []Record{{"a": 1, "b": "x"}, {"a": nil}},
	}
	got := tbl.Values()
	if len(got) != 2 || got[0][0] != "x" || got[0][1] != 1 || got[1][0] != nil || got[1][1] != nil {
		t.Fatalf("Values() = %#v", got)
	}
}

func TestTable_Fingerprint(t *testing.T) {
	a := &Table{Columns: []string{"k", "v"}, Rows: []Record{{"k": int64(1), "v": "x"}}}
	b := &Table{Columns: []string{"k", "v"}, Rows: []Record{{"k": int64(1), "v": "x"}}}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("equal tables must hash equally")
	}

	empty := &Table{Columns: []string{"k", "v"}, Rows: []Record{{"k": int64(1), "v": ""}}}
	null := &Table{Columns: []string{"k", "v"}, Rows: []Record{{"k": int64(1), "v": nil}}}
	if empty.Fingerprint() == null.Fingerprint() {
		t.Fatal("nil and empty string must hash differently")
	}

	reordered := &Table{Columns: []string{"v", "k"}, Rows: a.Rows}
	if a.Fingerprint() == reordered.Fingerprint() {
		t.Fatal("column order must affect the fingerprint")
	}
}

func TestWithRows_CopiesHeader(t *testing.T) {
	src := &Table{Name: "staging", Columns: []string{"a"}}
	out := src.WithRows([]Record{{"a": "1"}})
	out.Columns[0] = "z"
	if src.Columns[0] != "a" {
		t.Fatal("WithRows must not share the header slice")
	}
	if out.Name != "staging" || out.Len() != 1 || !out.HasColumn("z") {
		t.Fatalf("unexpected table %+v", out)
	}
}

func TestClone(t *testing.T) {
	r := Record{"a": "1"}
	c := r.Clone()
	c["a"] = "2"
	if r["a"] != "1" {
		t.Fatal("Clone must not alias the source map")
	}
}
