package builtin

import (
	"studentdw/pkg/records"
)

// Violation reports rows whose value falls outside an Enum's allowed set.
type Violation struct {
	Column string
	Value  any
	Count  int
}

// Enum checks a categorical column against a fixed vocabulary. Offending
// rows are kept; each distinct bad value is reported once through Reject
// with its row count. Missing values are not checked.
type Enum struct {
	Column  string
	Allowed []string
	Reject  func(Violation)
}

// Apply returns in unchanged.
func (e Enum) Apply(in *records.Table) (*records.Table, error) {
	if e.Reject == nil {
		return in, nil
	}
	allowed := make(map[string]struct{}, len(e.Allowed))
	for _, a := range e.Allowed {
		allowed[a] = struct{}{}
	}
	counts := map[string]int{}
	first := map[string]any{}
	var order []string
	for _, r := range in.Rows {
		v := r[e.Column]
		if v == nil {
			continue
		}
		k := records.FormatValue(v)
		if _, ok := allowed[k]; ok {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
			first[k] = v
		}
		counts[k]++
	}
	for _, k := range order {
		e.Reject(Violation{Column: e.Column, Value: first[k], Count: counts[k]})
	}
	return in, nil
}
