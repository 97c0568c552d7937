// Package builtin contains the cleaning steps used to prepare the staging
// table for the warehouse model.
package builtin

import (
	"fmt"

	"studentdw/internal/etlerr"
	"studentdw/pkg/records"
)

// RequireColumns fails when any listed column is absent from the header.
// Rows pass through untouched.
type RequireColumns struct {
	Columns []string
}

// Apply returns in unchanged, or an error wrapping etlerr.ErrSchemaMismatch
// that names every missing column.
func (r RequireColumns) Apply(in *records.Table) (*records.Table, error) {
	var missing []string
	for _, c := range r.Columns {
		if !in.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %v", etlerr.ErrSchemaMismatch, missing)
	}
	return in, nil
}
