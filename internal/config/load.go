package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults used when neither the pipeline file nor the environment sets a value.
const (
	DefaultJob       = "student_dw"
	DefaultInput     = "enhanced_student_habits_performance_dataset.csv"
	DefaultStorage   = "mysql"
	DefaultHost      = "localhost"
	DefaultPort      = 3306
	DefaultUser      = "root"
	DefaultDatabase  = "academic_performance_dwh"
	DefaultBatchSize = 1000
)

// Default returns the pipeline used when no config file is given: the
// semicolon-delimited dataset in the working directory loaded into a local
// MySQL database.
func Default() Pipeline {
	return Pipeline{
		Job:    DefaultJob,
		Source: Source{Kind: "file", File: SourceFile{Path: DefaultInput}},
		Parser: Parser{Kind: "csv", Options: Options{"comma": ";", "trim_space": true}},
		Storage: Storage{
			Kind: DefaultStorage,
			DB: DBConfig{
				Host:     DefaultHost,
				Port:     DefaultPort,
				User:     DefaultUser,
				Database: DefaultDatabase,
			},
		},
		Runtime: RuntimeConfig{BatchSize: DefaultBatchSize},
	}
}

// Load reads a pipeline file, fills unset fields from Default and applies
// STUDENTDW_* environment overrides. An empty path skips the file.
func Load(path string) (Pipeline, error) {
	p := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Pipeline{}, fmt.Errorf("open config: %w", err)
		}
		var fromFile Pipeline
		if err := json.Unmarshal(b, &fromFile); err != nil {
			return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
		}
		p = merge(p, fromFile)
	}
	if err := applyEnv(&p, os.LookupEnv); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// merge overlays the non-zero fields of o on top of base.
func merge(base, o Pipeline) Pipeline {
	out := base
	if o.Job != "" {
		out.Job = o.Job
	}
	if o.Source.Kind != "" {
		out.Source.Kind = o.Source.Kind
	}
	if o.Source.File.Path != "" {
		out.Source.File.Path = o.Source.File.Path
	}
	if o.Parser.Kind != "" {
		out.Parser.Kind = o.Parser.Kind
	}
	if len(o.Parser.Options) > 0 {
		opts := Options{}
		for k, v := range base.Parser.Options {
			opts[k] = v
		}
		for k, v := range o.Parser.Options {
			opts[k] = v
		}
		out.Parser.Options = opts
	}
	if o.Storage.Kind != "" && o.Storage.Kind != out.Storage.Kind {
		// A different backend must not inherit the MySQL connection defaults.
		out.Storage = Storage{Kind: o.Storage.Kind}
	}
	db := &out.Storage.DB
	if o.Storage.DB.DSN != "" {
		db.DSN = o.Storage.DB.DSN
	}
	if o.Storage.DB.Host != "" {
		db.Host = o.Storage.DB.Host
	}
	if o.Storage.DB.Port != 0 {
		db.Port = o.Storage.DB.Port
	}
	if o.Storage.DB.User != "" {
		db.User = o.Storage.DB.User
	}
	if o.Storage.DB.Password != "" {
		db.Password = o.Storage.DB.Password
	}
	if o.Storage.DB.Database != "" {
		db.Database = o.Storage.DB.Database
	}
	if len(o.Storage.DB.Params) > 0 {
		db.Params = o.Storage.DB.Params
	}
	if o.Runtime.BatchSize != 0 {
		out.Runtime.BatchSize = o.Runtime.BatchSize
	}
	return out
}

// applyEnv applies environment overrides. lookup is os.LookupEnv outside tests.
func applyEnv(p *Pipeline, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s=%q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("STUDENTDW_INPUT", &p.Source.File.Path)
	if v, ok := lookup("STUDENTDW_STORAGE_KIND"); ok && strings.TrimSpace(v) != "" && v != p.Storage.Kind {
		p.Storage = Storage{Kind: strings.TrimSpace(v)}
	}
	str("STUDENTDW_DB_DSN", &p.Storage.DB.DSN)
	str("STUDENTDW_DB_HOST", &p.Storage.DB.Host)
	str("STUDENTDW_DB_USER", &p.Storage.DB.User)
	if v, ok := lookup("STUDENTDW_DB_PASSWORD"); ok {
		p.Storage.DB.Password = v
	}
	str("STUDENTDW_DB_NAME", &p.Storage.DB.Database)
	if err := num("STUDENTDW_DB_PORT", &p.Storage.DB.Port); err != nil {
		return err
	}
	return num("STUDENTDW_BATCH_SIZE", &p.Runtime.BatchSize)
}
