// Package sqldb implements storage.Repository on top of database/sql. The
// mysql, sqlite and mssql backends configure it with their driver, dialect
// and bulk-insert strategy.
//
// Each table is written inside one transaction: ReplaceTable opens it,
// CopyFrom appends to it and FinishTable commits it. Drivers whose DDL
// commits implicitly (MySQL) still get per-table atomicity for the rows.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studentdw/internal/ddl"
	"studentdw/internal/storage"
)

// CopyTxFn inserts rows inside tx. The default builds multi-row INSERTs.
type CopyTxFn func(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error)

// Options configures a Repository.
type Options struct {
	Driver      string
	DSN         string
	Dialect     ddl.Dialect
	Placeholder func(int) string

	// MaxParams caps bind parameters per INSERT. Zero means 999.
	MaxParams int

	// MaxOpenConns, when positive, limits the pool size.
	MaxOpenConns int

	// Copy overrides the multi-row INSERT strategy.
	Copy CopyTxFn
}

// Repository is a database/sql backed storage.Repository.
type Repository struct {
	db  *sql.DB
	opt Options
	tx  *sql.Tx
	cur string
}

var _ storage.Repository = (*Repository)(nil)

// Open connects and pings with a short timeout so a bad DSN fails fast.
func Open(ctx context.Context, opt Options) (*Repository, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", opt.Dialect.Name)
	}
	if opt.Placeholder == nil {
		opt.Placeholder = ddl.QuestionMark
	}
	if opt.MaxParams <= 0 {
		opt.MaxParams = 999
	}
	db, err := sql.Open(opt.Driver, opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", opt.Dialect.Name, err)
	}
	if opt.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opt.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", opt.Dialect.Name, err)
	}
	return &Repository{db: db, opt: opt}, nil
}

// DB exposes the pool for backend-specific setup and tests.
func (r *Repository) DB() *sql.DB { return r.db }

// ReplaceTable starts the table's transaction, then drops and recreates it.
func (r *Repository) ReplaceTable(ctx context.Context, def ddl.TableDef) error {
	if r.tx != nil {
		return fmt.Errorf("%s: table %s not finished", r.opt.Dialect.Name, r.cur)
	}
	drop, err := ddl.BuildDropTableSQL(def, r.opt.Dialect)
	if err != nil {
		return err
	}
	create, err := ddl.BuildCreateTableSQL(def, r.opt.Dialect)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", r.opt.Dialect.Name, err)
	}
	for _, stmt := range []string{drop, create} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: exec %q: %w", r.opt.Dialect.Name, firstLine(stmt), err)
		}
	}
	r.tx, r.cur = tx, def.Name
	return nil
}

// CopyFrom inserts rows into the table opened by ReplaceTable.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if r.tx == nil || r.cur != table {
		return 0, fmt.Errorf("%s: CopyFrom %s: table not opened with ReplaceTable", r.opt.Dialect.Name, table)
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("%s: CopyFrom: columns must not be empty", r.opt.Dialect.Name)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if r.opt.Copy != nil {
		return r.opt.Copy(ctx, r.tx, table, columns, rows)
	}
	return r.insert(ctx, table, columns, rows)
}

func (r *Repository) insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	perStmt := r.opt.MaxParams / len(columns)
	if perStmt < 1 {
		perStmt = 1
	}
	var inserted int64
	for lo := 0; lo < len(rows); lo += perStmt {
		hi := lo + perStmt
		if hi > len(rows) {
			hi = len(rows)
		}
		chunk := rows[lo:hi]
		args := make([]any, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("%s: row length %d != columns length %d", r.opt.Dialect.Name, len(row), len(columns))
			}
			args = append(args, row...)
		}
		q := ddl.BuildInsertSQL(table, columns, len(chunk), r.opt.Dialect, r.opt.Placeholder)
		res, err := r.tx.ExecContext(ctx, q, args...)
		if err != nil {
			return inserted, fmt.Errorf("%s: insert: %w", r.opt.Dialect.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = int64(len(chunk))
		}
		inserted += n
	}
	return inserted, nil
}

// FinishTable commits the table's transaction.
func (r *Repository) FinishTable(_ context.Context, table string) error {
	if r.tx == nil || r.cur != table {
		return fmt.Errorf("%s: FinishTable %s: table not opened with ReplaceTable", r.opt.Dialect.Name, table)
	}
	tx := r.tx
	r.tx, r.cur = nil, ""
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", r.opt.Dialect.Name, err)
	}
	return nil
}

// Close rolls back an unfinished table and closes the pool.
func (r *Repository) Close() {
	if r.tx != nil {
		_ = r.tx.Rollback()
		r.tx, r.cur = nil, ""
	}
	_ = r.db.Close()
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
