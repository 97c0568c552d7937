// Package postgres implements the storage.Repository for PostgreSQL using
// pgx/v5. Rows are written with COPY inside the table's transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"studentdw/internal/ddl"
	"studentdw/internal/storage"
)

// Config holds the connection string passed to pgxpool.
type Config struct {
	DSN string
}

// Dialect renders PostgreSQL DDL with double-quoted identifiers.
var Dialect = ddl.Dialect{
	Name:       "postgres",
	QuoteIdent: ddl.DoubleQuote,
	MapType: func(t ddl.Type) string {
		switch t {
		case ddl.TypeInt:
			return "BIGINT"
		case ddl.TypeFloat:
			return "DOUBLE PRECISION"
		case ddl.TypeText:
			return "TEXT"
		}
		return ""
	},
}

// Repository is a PostgreSQL-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
	cur  string
}

// NewRepository opens a pool, pings it and returns it with a cleanup
// function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	r := &Repository{pool: pool}
	return r, r.close, nil
}

// ReplaceTable starts the table's transaction, then drops and recreates it.
func (r *Repository) ReplaceTable(ctx context.Context, def ddl.TableDef) error {
	if r.tx != nil {
		return fmt.Errorf("postgres: table %s not finished", r.cur)
	}
	drop, err := ddl.BuildDropTableSQL(def, Dialect)
	if err != nil {
		return err
	}
	create, err := ddl.BuildCreateTableSQL(def, Dialect)
	if err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	for _, stmt := range []string{drop, create} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("postgres: exec: %w", pgDetail(err))
		}
	}
	r.tx, r.cur = tx, def.Name
	return nil
}

// CopyFrom streams rows with the COPY protocol.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if r.tx == nil || r.cur != table {
		return 0, fmt.Errorf("postgres: CopyFrom %s: table not opened with ReplaceTable", table)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy into %s: %w", table, pgDetail(err))
	}
	return n, nil
}

// FinishTable commits the table's transaction.
func (r *Repository) FinishTable(ctx context.Context, table string) error {
	if r.tx == nil || r.cur != table {
		return fmt.Errorf("postgres: FinishTable %s: table not opened with ReplaceTable", table)
	}
	tx := r.tx
	r.tx, r.cur = nil, ""
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// Close rolls back an unfinished table and closes the pool.
func (r *Repository) Close() { r.close() }

func (r *Repository) close() {
	if r.tx != nil {
		_ = r.tx.Rollback(context.Background())
		r.tx, r.cur = nil, ""
	}
	if r.pool != nil {
		r.pool.Close()
	}
}

// pgDetail enriches server errors with their detail and SQLSTATE.
func pgDetail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s: %s)", err, pgErr.SQLState(), pgErr.Detail)
	}
	return err
}

// FormatDSN uses cfg.DSN when set, otherwise builds a postgres:// URL. Port
// defaults to 5432.
func FormatDSN(cfg storage.Config) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}
