// Package sqlite implements the storage.Repository for SQLite files using
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"studentdw/internal/storage"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:dw.db?_pragma=busy_timeout(5000)"
	//   "dw.db"
	DSN string
}

// configFrom uses cfg.DSN verbatim, or cfg.Database as the file path with
// cfg.Params appended as query parameters.
func configFrom(cfg storage.Config) (Config, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return Config{DSN: dsn}, nil
	}
	path := strings.TrimSpace(cfg.Database)
	if path == "" {
		return Config{}, fmt.Errorf("sqlite: dsn or database path is required")
	}
	if len(cfg.Params) == 0 {
		return Config{DSN: path}, nil
	}
	keys := make([]string, 0, len(cfg.Params))
	for k := range cfg.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := make([]string, 0, len(keys))
	for _, k := range keys {
		q = append(q, url.QueryEscape(k)+"="+url.QueryEscape(cfg.Params[k]))
	}
	return Config{DSN: "file:" + path + "?" + strings.Join(q, "&")}, nil
}
