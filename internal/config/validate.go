// Static checks over a decoded Pipeline. Findings are returned as a list of
// issues (errors and warnings) that the CLI prints before a run.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "runtime.batch_size"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	p, err := config.Load(path)
//	if err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	// Top-level pipeline checks.
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	if s.Kind != "file" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q; only file is implemented", s.Kind),
		})
		return issues
	}
	if strings.TrimSpace(s.File.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.file.path",
			Message:  "file source requires a non-empty path",
		})
	}

	return issues
}

// validateParser validates parser configuration.
func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
		return issues
	}

	if p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only csv is implemented", p.Kind),
		})
		return issues
	}

	if c := p.Options.String("comma", ";"); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	} else if c != ";" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma=%q; the student dataset is semicolon-delimited", c),
		})
	}

	return issues
}

// validateStorage validates storage configuration and DB settings.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	if _, ok := knownStorage[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
		return issues
	}

	db := s.DB
	if strings.TrimSpace(db.DSN) != "" {
		return issues
	}
	switch s.Kind {
	case "sqlite":
		if strings.TrimSpace(db.Database) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.database",
				Message:  "sqlite requires storage.db.dsn or storage.db.database (file path)",
			})
		}
	case "parquet":
		if strings.TrimSpace(db.Database) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.database",
				Message:  "parquet requires storage.db.dsn or storage.db.database (output directory)",
			})
		}
	default:
		if strings.TrimSpace(db.Host) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.host",
				Message:  "storage.db.host must not be empty when storage.db.dsn is unset",
			})
		}
		if strings.TrimSpace(db.Database) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.database",
				Message:  "storage.db.database must not be empty when storage.db.dsn is unset",
			})
		}
		if db.Port < 0 || db.Port > 65535 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.port",
				Message:  fmt.Sprintf("port %d out of range", db.Port),
			})
		}
	}

	return issues
}

var knownStorage = map[string]struct{}{
	"mysql":    {},
	"postgres": {},
	"mssql":    {},
	"sqlite":   {},
	"parquet":  {},
}

// validateRuntime flags non-positive batch sizes.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; each table will be written in a single batch", r.BatchSize),
		})
	}

	return issues
}
