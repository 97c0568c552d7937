// Package etlerr defines the error taxonomy shared by the pipeline stages.
//
// Stages wrap these values with fmt.Errorf("...: %w", err) so callers can
// classify a failure with errors.Is / errors.As without parsing messages.
package etlerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound means the source file does not exist. No tables are produced.
	ErrInputNotFound = errors.New("input not found")

	// ErrInputParse means the delimited content is malformed.
	ErrInputParse = errors.New("input parse error")

	// ErrSchemaMismatch means a column the transformer depends on is absent
	// from the input header.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrConnection means the target store could not be reached. No writes
	// are attempted after it.
	ErrConnection = errors.New("connection error")
)

// WriteError reports that a single table failed to persist. Tables written
// before it stay committed.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ParseError carries the 1-based input line of a parse failure. It unwraps
// to ErrInputParse.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v: line %d: %s", ErrInputParse, e.Line, e.Msg)
	}
	return fmt.Sprintf("%v: %s", ErrInputParse, e.Msg)
}

func (e *ParseError) Is(target error) bool { return target == ErrInputParse }
