// Package transformer defines the cleaning step contract. Steps never mutate
// their input table; each returns a new table (rows may be shared when a step
// leaves them untouched).
package transformer

import "studentdw/pkg/records"

// Transformer is one cleaning step over a whole table.
type Transformer interface {
	Apply(in *records.Table) (*records.Table, error)
}

// Func adapts a plain function to Transformer.
type Func func(in *records.Table) (*records.Table, error)

// Apply calls f(in).
func (f Func) Apply(in *records.Table) (*records.Table, error) { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply feeds the output of each step into the next and stops at the first error.
func (c Chain) Apply(in *records.Table) (*records.Table, error) {
	out := in
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
