// Package parquet implements storage.Repository as a directory of Parquet
// files, one <table>.parquet per warehouse table.
package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	pq "github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"studentdw/internal/ddl"
	"studentdw/internal/storage"
)

// Config points at the output directory. The zero Compression writes
// uncompressed files.
type Config struct {
	Dir         string
	Compression compress.Compression
}

// Repository buffers the rows of the open table and writes the file on
// FinishTable. The previous file is replaced atomically by rename.
type Repository struct {
	cfg  Config
	mem  memory.Allocator
	def  *ddl.TableDef
	rows [][]any
}

// NewRepository creates cfg.Dir if needed.
func NewRepository(_ context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, nil, fmt.Errorf("parquet: output directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("parquet: create %s: %w", cfg.Dir, err)
	}
	r := &Repository{cfg: cfg, mem: memory.NewGoAllocator()}
	return r, r.Close, nil
}

// Path returns the file a table is written to.
func (r *Repository) Path(table string) string {
	return filepath.Join(r.cfg.Dir, table+".parquet")
}

// ReplaceTable starts buffering a new table.
func (r *Repository) ReplaceTable(_ context.Context, def ddl.TableDef) error {
	if r.def != nil {
		return fmt.Errorf("parquet: table %s not finished", r.def.Name)
	}
	if def.Name == "" || len(def.Columns) == 0 {
		return fmt.Errorf("parquet: table name and columns are required")
	}
	for _, c := range def.Columns {
		if arrowType(c.Type) == nil {
			return fmt.Errorf("parquet: column %s: unsupported type %q", c.Name, c.Type)
		}
	}
	d := def
	r.def, r.rows = &d, nil
	return nil
}

// CopyFrom appends rows to the buffer. Columns must match the table order.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if r.def == nil || r.def.Name != table {
		return 0, fmt.Errorf("parquet: CopyFrom %s: table not opened with ReplaceTable", table)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	want := r.def.ColumnNames()
	if len(columns) != len(want) {
		return 0, fmt.Errorf("parquet: %s: got %d columns, want %d", table, len(columns), len(want))
	}
	for i := range want {
		if columns[i] != want[i] {
			return 0, fmt.Errorf("parquet: %s: column %d is %q, want %q", table, i, columns[i], want[i])
		}
	}
	r.rows = append(r.rows, rows...)
	return int64(len(rows)), nil
}

// FinishTable writes the buffered rows to a temp file and renames it over
// the table's file.
func (r *Repository) FinishTable(_ context.Context, table string) error {
	if r.def == nil || r.def.Name != table {
		return fmt.Errorf("parquet: FinishTable %s: table not opened with ReplaceTable", table)
	}
	def, rows := *r.def, r.rows
	r.def, r.rows = nil, nil

	tmp, err := os.CreateTemp(r.cfg.Dir, "."+table+"-*.parquet")
	if err != nil {
		return fmt.Errorf("parquet: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if err := r.write(tmp, def, rows); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, r.Path(table)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("parquet: rename: %w", err)
	}
	return nil
}

func (r *Repository) write(f *os.File, def ddl.TableDef, rows [][]any) error {
	schema := Schema(def)
	rec, err := r.record(schema, def, rows)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := pq.NewWriterProperties(pq.WithCompression(r.cfg.Compression))
	w, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("parquet: writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return fmt.Errorf("parquet: write %s: %w", def.Name, err)
	}
	// Close also closes f.
	if err := w.Close(); err != nil {
		return fmt.Errorf("parquet: close %s: %w", def.Name, err)
	}
	return nil
}

func (r *Repository) record(schema *arrow.Schema, def ddl.TableDef, rows [][]any) (arrow.Record, error) {
	b := array.NewRecordBuilder(r.mem, schema)
	defer b.Release()
	for ri, row := range rows {
		if len(row) != len(def.Columns) {
			return nil, fmt.Errorf("parquet: %s row %d: got %d values, want %d", def.Name, ri, len(row), len(def.Columns))
		}
		for ci, v := range row {
			if err := appendValue(b.Field(ci), v); err != nil {
				return nil, fmt.Errorf("parquet: %s row %d column %s: %w", def.Name, ri, def.Columns[ci].Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(fb array.Builder, v any) error {
	if v == nil {
		fb.AppendNull()
		return nil
	}
	switch b := fb.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int64:
			b.Append(n)
		case int:
			b.Append(int64(n))
		default:
			return fmt.Errorf("want integer, got %T", v)
		}
	case *array.Float64Builder:
		switch n := v.(type) {
		case float64:
			b.Append(n)
		case int64:
			b.Append(float64(n))
		case int:
			b.Append(float64(n))
		default:
			return fmt.Errorf("want number, got %T", v)
		}
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		b.Append(s)
	default:
		return fmt.Errorf("unsupported builder %T", fb)
	}
	return nil
}

// Schema maps a table definition to an Arrow schema.
func Schema(def ddl.TableDef) *arrow.Schema {
	fields := make([]arrow.Field, len(def.Columns))
	for i, c := range def.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: c.Nullable}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t ddl.Type) arrow.DataType {
	switch t {
	case ddl.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case ddl.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case ddl.TypeText:
		return arrow.BinaryTypes.String
	}
	return nil
}

// Close drops an unfinished table's buffer. Existing files are untouched.
func (r *Repository) Close() {
	r.def, r.rows = nil, nil
}

func configFrom(cfg storage.Config) Config {
	dir := strings.TrimSpace(cfg.DSN)
	if dir == "" {
		dir = cfg.Database
	}
	out := Config{Dir: dir, Compression: compress.Codecs.Snappy}
	switch strings.ToLower(cfg.Params["compression"]) {
	case "none", "uncompressed":
		out.Compression = compress.Codecs.Uncompressed
	case "gzip":
		out.Compression = compress.Codecs.Gzip
	case "zstd":
		out.Compression = compress.Codecs.Zstd
	}
	return out
}
