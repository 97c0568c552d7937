package sqlite

import (
	"context"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"studentdw/internal/ddl"
	"studentdw/internal/storage/sqldb"
)

// Dialect renders SQLite DDL: double-quoted identifiers and type affinities.
var Dialect = ddl.Dialect{
	Name:       "sqlite",
	QuoteIdent: ddl.DoubleQuote,
	MapType: func(t ddl.Type) string {
		switch t {
		case ddl.TypeInt:
			return "INTEGER"
		case ddl.TypeFloat:
			return "REAL"
		case ddl.TypeText:
			return "TEXT"
		}
		return ""
	},
}

// Repository is a SQLite-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

// NewRepository opens the database and returns it with a cleanup function.
// The pool is limited to one connection: SQLite serializes writers and an
// in-memory database exists per connection.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	r, err := sqldb.Open(ctx, sqldb.Options{
		Driver:       "sqlite",
		DSN:          strings.TrimSpace(cfg.DSN),
		Dialect:      Dialect,
		MaxParams:    32766,
		MaxOpenConns: 1,
	})
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Repository: r}, r.Close, nil
}
