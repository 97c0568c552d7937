// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"studentdw/internal/etlerr"
)

// Local is a filesystem data source that opens a single file from disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Describe returns the configured path.
func (l *Local) Describe() string { return l.path }

// Open opens the configured path for reading.
//
// Behavior:
//   - A context that is already done short-circuits with ctx.Err().
//   - A missing file wraps both os.ErrNotExist and etlerr.ErrInputNotFound,
//     so callers may test either.
//   - Other filesystem errors are wrapped with the path.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w: %w", l.path, etlerr.ErrInputNotFound, err)
		}
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
