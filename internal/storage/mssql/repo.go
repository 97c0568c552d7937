// Package mssql implements the storage.Repository for SQL Server using
// github.com/microsoft/go-mssqldb. Rows are written with the driver's bulk
// copy (CopyIn) inside the table's transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"studentdw/internal/ddl"
	"studentdw/internal/storage"
	"studentdw/internal/storage/sqldb"
)

// Config holds the SQL Server connection string.
type Config struct {
	DSN string
}

// Dialect renders T-SQL DDL with bracket-quoted identifiers.
var Dialect = ddl.Dialect{
	Name:       "mssql",
	QuoteIdent: msIdent,
	MapType: func(t ddl.Type) string {
		switch t {
		case ddl.TypeInt:
			return "BIGINT"
		case ddl.TypeFloat:
			return "FLOAT"
		case ddl.TypeText:
			return "NVARCHAR(MAX)"
		}
		return ""
	},
}

// Repository is a SQL Server-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

// NewRepository validates the DSN, opens a pool and returns it with a
// cleanup function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	r, err := sqldb.Open(ctx, sqldb.Options{
		Driver:    "sqlserver",
		DSN:       cfg.DSN,
		Dialect:   Dialect,
		MaxParams: 2100,
		Copy:      bulkCopy,
	})
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Repository: r}, r.Close, nil
}

// bulkCopy streams rows through a CopyIn statement and returns the count the
// server reports.
func bulkCopy(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(msIdent(table), mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if len(rows[i]) != len(columns) {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: length %d != columns length %d", i, len(rows[i]), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// FormatDSN uses cfg.DSN when set, otherwise builds a sqlserver:// URL.
// Port defaults to 1433.
func FormatDSN(cfg storage.Config) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	port := cfg.Port
	if port == 0 {
		port = 1433
	}
	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	u := url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		RawQuery: q.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}

func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }
