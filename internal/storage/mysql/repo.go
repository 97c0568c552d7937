// Package mysql implements the storage.Repository for MySQL, the default
// warehouse store, using github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"studentdw/internal/ddl"
	"studentdw/internal/storage"
	"studentdw/internal/storage/sqldb"
)

// Config holds the MySQL connection string.
type Config struct {
	DSN string
}

// Dialect renders MySQL DDL with backtick-quoted identifiers.
var Dialect = ddl.Dialect{
	Name: "mysql",
	QuoteIdent: func(s string) string {
		return "`" + strings.ReplaceAll(s, "`", "``") + "`"
	},
	MapType: func(t ddl.Type) string {
		switch t {
		case ddl.TypeInt:
			return "BIGINT"
		case ddl.TypeFloat:
			return "DOUBLE"
		case ddl.TypeText:
			return "TEXT"
		}
		return ""
	},
}

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

// NewRepository opens a pool and returns it with a cleanup function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	r, err := sqldb.Open(ctx, sqldb.Options{
		Driver:    "mysql",
		DSN:       cfg.DSN,
		Dialect:   Dialect,
		MaxParams: 65535,
	})
	if err != nil {
		return nil, nil, err
	}
	return &Repository{Repository: r}, r.Close, nil
}

// FormatDSN uses cfg.DSN when set, otherwise builds a TCP DSN from the
// discrete fields. Port defaults to 3306.
func FormatDSN(cfg storage.Config) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}
