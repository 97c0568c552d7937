// Package storage defines the backend-agnostic write contract for the
// warehouse tables and a small factory that backends register with.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"studentdw/internal/ddl"
)

// Repository writes whole tables. A table is written as ReplaceTable, one or
// more CopyFrom calls, then FinishTable. Backends that support it run the
// three steps in one transaction; Close discards an unfinished one.
type Repository interface {
	// ReplaceTable drops def.Name if it exists and creates it from def.
	ReplaceTable(ctx context.Context, def ddl.TableDef) error

	// CopyFrom inserts rows aligned to columns and returns how many were written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// FinishTable makes the table's contents durable.
	FinishTable(ctx context.Context, table string) error

	Close()
}

// Config carries connection settings. DSN wins when set; otherwise each
// backend assembles one from the discrete fields.
type Config struct {
	Kind     string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Params   map[string]string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. A later registration for
// the same kind replaces the earlier one.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the Repository registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
