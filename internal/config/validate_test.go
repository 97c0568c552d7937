package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func TestValidatePipeline_MissingJob(t *testing.T) {
	p := Default()
	p.Job = ""

	issues := ValidatePipeline(p)

	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
}

// The built-in default pipeline must lint clean.
func TestValidatePipeline_DefaultIsClean(t *testing.T) {
	if issues := ValidatePipeline(Default()); len(issues) != 0 {
		t.Fatalf("expected no issues for Default(); got %+v", issues)
	}
}

func TestValidateSource_Cases(t *testing.T) {
	t.Run("missing_kind", func(t *testing.T) {
		issues := validateSource(Source{})
		if !hasIssue(t, issues, SeverityError, "source.kind", "must not be empty") {
			t.Fatalf("expected error for empty source.kind; got %+v", issues)
		}
	})

	t.Run("unsupported_kind", func(t *testing.T) {
		issues := validateSource(Source{Kind: "http"})
		if !hasIssue(t, issues, SeverityError, "source.kind", "unsupported source kind") {
			t.Fatalf("expected error for unsupported source.kind; got %+v", issues)
		}
	})

	t.Run("file_missing_path", func(t *testing.T) {
		issues := validateSource(Source{Kind: "file", File: SourceFile{Path: "  "}})
		if !hasIssue(t, issues, SeverityError, "source.file.path", "non-empty path") {
			t.Fatalf("expected error for empty file.path; got %+v", issues)
		}
	})

	t.Run("file_ok", func(t *testing.T) {
		issues := validateSource(Source{Kind: "file", File: SourceFile{Path: "data.csv"}})
		if len(issues) != 0 {
			t.Fatalf("expected no issues; got %+v", issues)
		}
	})
}

func TestValidateParser_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   Parser
		sev  IssueSeverity
		path string
		msg  string
	}{
		{"missing_kind", Parser{}, SeverityError, "parser.kind", "must not be empty"},
		{"unsupported_kind", Parser{Kind: "xml"}, SeverityError, "parser.kind", "only csv"},
		{"multi_char_comma", Parser{Kind: "csv", Options: Options{"comma": ";;"}}, SeverityError, "parser.options.comma", "single character"},
		{"comma_not_semicolon", Parser{Kind: "csv", Options: Options{"comma": ","}}, SeverityWarning, "parser.options.comma", "semicolon"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			issues := validateParser(tc.in)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.msg) {
				t.Fatalf("want %s at %s containing %q; got %+v", tc.sev, tc.path, tc.msg, issues)
			}
		})
	}

	t.Run("csv_defaults_ok", func(t *testing.T) {
		if issues := validateParser(Parser{Kind: "csv", Options: Options{}}); len(issues) != 0 {
			t.Fatalf("expected no issues; got %+v", issues)
		}
	})
}

func TestValidateStorage_Cases(t *testing.T) {
	tests := []struct {
		name    string
		in      Storage
		sev     IssueSeverity
		path    string
		msg     string
		noIssue bool
	}{
		{name: "missing_kind", in: Storage{}, sev: SeverityError, path: "storage.kind", msg: "must not be empty"},
		{name: "unknown_kind", in: Storage{Kind: "oracle"}, sev: SeverityWarning, path: "storage.kind", msg: "unknown storage kind"},
		{name: "mysql_missing_host", in: Storage{Kind: "mysql", DB: DBConfig{Database: "dwh"}}, sev: SeverityError, path: "storage.db.host", msg: "must not be empty"},
		{name: "postgres_missing_database", in: Storage{Kind: "postgres", DB: DBConfig{Host: "db"}}, sev: SeverityError, path: "storage.db.database", msg: "must not be empty"},
		{name: "mssql_bad_port", in: Storage{Kind: "mssql", DB: DBConfig{Host: "db", Database: "dwh", Port: 70000}}, sev: SeverityError, path: "storage.db.port", msg: "out of range"},
		{name: "sqlite_missing_path", in: Storage{Kind: "sqlite"}, sev: SeverityError, path: "storage.db.database", msg: "file path"},
		{name: "parquet_missing_dir", in: Storage{Kind: "parquet"}, sev: SeverityError, path: "storage.db.database", msg: "output directory"},
		{name: "dsn_short_circuits", in: Storage{Kind: "postgres", DB: DBConfig{DSN: "postgres://u@h/db"}}, noIssue: true},
		{name: "sqlite_path_ok", in: Storage{Kind: "sqlite", DB: DBConfig{Database: "dw.db"}}, noIssue: true},
		{name: "mysql_parts_ok", in: Storage{Kind: "mysql", DB: DBConfig{Host: "localhost", Port: 3306, Database: "dwh"}}, noIssue: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			issues := validateStorage(tc.in)
			if tc.noIssue {
				if len(issues) != 0 {
					t.Fatalf("expected no issues; got %+v", issues)
				}
				return
			}
			if !hasIssue(t, issues, tc.sev, tc.path, tc.msg) {
				t.Fatalf("want %s at %s containing %q; got %+v", tc.sev, tc.path, tc.msg, issues)
			}
		})
	}
}

func TestValidateRuntime_Cases(t *testing.T) {
	if issues := validateRuntime(RuntimeConfig{BatchSize: 0}); !hasIssue(t, issues, SeverityWarning, "runtime.batch_size", "single batch") {
		t.Fatalf("expected warning for batch_size=0; got %+v", issues)
	}
	if issues := validateRuntime(RuntimeConfig{BatchSize: 500}); len(issues) != 0 {
		t.Fatalf("expected no issues; got %+v", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "job", Message: "boom"}
	if got, want := iss.Error(), "error at job: boom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
