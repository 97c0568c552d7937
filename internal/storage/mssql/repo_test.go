package mssql

import (
	"context"
	"strings"
	"testing"

	"github.com/microsoft/go-mssqldb/msdsn"

	"studentdw/internal/ddl"
	"studentdw/internal/storage"
)

func TestFormatDSN(t *testing.T) {
	t.Parallel()

	got := FormatDSN(storage.Config{Host: "db", User: "sa", Password: "p@ss", Database: "dwh"})
	if want := "sqlserver://sa:p%40ss@db:1433?database=dwh"; got != want {
		t.Fatalf("FormatDSN = %q, want %q", got, want)
	}

	cfg, err := msdsn.Parse(got)
	if err != nil {
		t.Fatalf("msdsn.Parse(%q): %v", got, err)
	}
	if cfg.Host != "db" || cfg.Port != 1433 || cfg.Database != "dwh" || cfg.User != "sa" || cfg.Password != "p@ss" {
		t.Fatalf("parsed = %+v", cfg)
	}

	if got := FormatDSN(storage.Config{DSN: "sqlserver://x@y"}); got != "sqlserver://x@y" {
		t.Fatalf("verbatim DSN changed: %q", got)
	}
}

func TestDialect(t *testing.T) {
	t.Parallel()

	sql, err := ddl.BuildCreateTableSQL(ddl.TableDef{
		Name: "Fact_Academic_Performance",
		Columns: []ddl.ColumnDef{
			{Name: "academic_performance_key", Type: ddl.TypeInt, PrimaryKey: true},
			{Name: "dropout_risk", Type: ddl.TypeText, Nullable: true},
		},
	}, Dialect)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, w := range []string{"CREATE TABLE [Fact_Academic_Performance]", "[academic_performance_key] BIGINT NOT NULL", "[dropout_risk] NVARCHAR(MAX)"} {
		if !strings.Contains(sql, w) {
			t.Fatalf("sql %q missing %q", sql, w)
		}
	}
	if got := msIdent("a]b"); got != "[a]]b]" {
		t.Fatalf("msIdent = %q", got)
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://host?connection+timeout=notanumber"}); err == nil {
		t.Fatalf("expected DSN error")
	}
}

func TestMSSQLRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mssql", Host: "db", Database: "dwh"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.DSN != "sqlserver://db:1433?database=dwh" {
		t.Fatalf("DSN = %q", gotCfg.DSN)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not invoke closeFn")
	}
}
