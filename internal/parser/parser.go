// Package parser defines the contract between raw input bytes and the
// staging table.
package parser

import (
	"io"

	"studentdw/pkg/records"
)

// Parser turns a complete input stream into a staging table.
type Parser interface {
	Parse(r io.Reader) (*records.Table, error)
}
