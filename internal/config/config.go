// Package config defines the JSON-serializable configuration model for the
// student warehouse pipeline. A Pipeline value is built once at process start
// (see Load), validated, and then passed by value to each stage; nothing
// mutates it during a run.
//
// Example:
//
//	{
//	  "job":     "student_dw",
//	  "source":  { "kind": "file", "file": { "path": "students.csv" } },
//	  "parser":  { "kind": "csv", "options": { "comma": ";", "trim_space": true } },
//	  "storage": { "kind": "mysql", "db": { "host": "localhost", "port": 3306,
//	               "user": "root", "database": "academic_performance_dwh" } },
//	  "runtime": { "batch_size": 1000 }
//	}
package config

import "encoding/json"

// Pipeline describes the full ETL run. It is the top-level object decoded
// from a pipeline file (e.g., configs/pipelines/*.json).
type Pipeline struct {
	// Job names the run for logs and metrics labels.
	Job string `json:"job"`

	// Source describes where the raw dataset comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into the staging table.
	Parser Parser `json:"parser"`

	// Storage describes where the warehouse tables are written.
	Storage Storage       `json:"storage"`
	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls batching of inserts.
type RuntimeConfig struct {
	BatchSize int `json:"batch_size"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// Parser selects how to parse the raw source into rows/columns.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV: comma (string), trim_space (bool), header_map (object),
	// na_values (array of strings).
	Options Options `json:"options"`
}

// Storage selects the sink used to persist the warehouse tables.
type Storage struct {
	// Kind selects the backend: "mysql", "postgres", "mssql", "sqlite" or
	// "parquet".
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// DBConfig holds connection parameters. When DSN is set it is used verbatim;
// otherwise each backend assembles one from the discrete fields. For sqlite
// Database is the file path, for parquet it is the output directory.
type DBConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`

	// Params are extra driver parameters appended to an assembled DSN.
	Params map[string]string `json:"params"`
}

// Options holds parser settings decoded from JSON. The getters perform
// minimal coercion and return the default when a key is absent or has an
// unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key, or nil.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
