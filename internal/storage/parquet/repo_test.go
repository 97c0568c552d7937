package parquet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdw/internal/ddl"
	"studentdw/internal/storage"
)

var factDef = ddl.TableDef{
	Name: "Fact_Academic_Performance",
	Columns: []ddl.ColumnDef{
		{Name: "academic_performance_key", Type: ddl.TypeInt, PrimaryKey: true},
		{Name: "exam_score", Type: ddl.TypeFloat, Nullable: true},
		{Name: "dropout_risk", Type: ddl.TypeText, Nullable: true},
	},
}

func readBack(t *testing.T, path string) arrow.Table {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	pr, err := file.NewParquetReader(f)
	require.NoError(t, err)
	fr, err := pqarrow.NewFileReader(pr, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	require.NoError(t, err)
	tbl, err := fr.ReadTable(context.Background())
	require.NoError(t, err)
	t.Cleanup(tbl.Release)
	return tbl
}

func writeTable(t *testing.T, r *Repository, rows [][]any) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.ReplaceTable(ctx, factDef))
	n, err := r.CopyFrom(ctx, factDef.Name, factDef.ColumnNames(), rows)
	require.NoError(t, err)
	require.Equal(t, int64(len(rows)), n)
	require.NoError(t, r.FinishTable(ctx, factDef.Name))
}

func TestRepository_WritesTableFile(t *testing.T) {
	t.Parallel()

	r, closeFn, err := NewRepository(context.Background(), Config{Dir: t.TempDir(), Compression: compress.Codecs.Snappy})
	require.NoError(t, err)
	defer closeFn()

	writeTable(t, r, [][]any{
		{int64(1), 81.5, "Low"},
		{int64(2), nil, nil},
		{int64(3), 40.0, "High"},
	})

	tbl := readBack(t, r.Path(factDef.Name))
	assert.EqualValues(t, 3, tbl.NumRows())
	require.EqualValues(t, 3, tbl.NumCols())
	assert.Equal(t, "exam_score", tbl.Schema().Field(1).Name)

	keys := tbl.Column(0).Data().Chunk(0).(*array.Int64)
	assert.Equal(t, int64(3), keys.Value(2))
	scores := tbl.Column(1).Data().Chunk(0).(*array.Float64)
	assert.Equal(t, 81.5, scores.Value(0))
	assert.True(t, scores.IsNull(1))
	risk := tbl.Column(2).Data().Chunk(0).(*array.String)
	assert.Equal(t, "High", risk.Value(2))
	assert.True(t, risk.IsNull(1))
}

func TestRepository_FullReplace(t *testing.T) {
	t.Parallel()

	r, closeFn, err := NewRepository(context.Background(), Config{Dir: t.TempDir()})
	require.NoError(t, err)
	defer closeFn()

	writeTable(t, r, [][]any{{int64(1), 1.0, "Low"}, {int64(2), 2.0, "Low"}})
	writeTable(t, r, [][]any{{int64(9), 9.0, "Medium"}})

	tbl := readBack(t, r.Path(factDef.Name))
	assert.EqualValues(t, 1, tbl.NumRows())

	entries, err := os.ReadDir(filepath.Dir(r.Path(factDef.Name)))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRepository_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r, closeFn, err := NewRepository(ctx, Config{Dir: t.TempDir()})
	require.NoError(t, err)
	defer closeFn()

	_, err = r.CopyFrom(ctx, factDef.Name, factDef.ColumnNames(), nil)
	assert.Error(t, err, "CopyFrom before ReplaceTable")
	assert.Error(t, r.FinishTable(ctx, factDef.Name), "FinishTable before ReplaceTable")

	require.NoError(t, r.ReplaceTable(ctx, factDef))
	assert.Error(t, r.ReplaceTable(ctx, factDef), "ReplaceTable while a table is open")

	_, err = r.CopyFrom(ctx, factDef.Name, []string{"exam_score", "academic_performance_key", "dropout_risk"}, nil)
	assert.Error(t, err, "column order mismatch")

	_, err = r.CopyFrom(ctx, factDef.Name, factDef.ColumnNames(), [][]any{{"one", 1.0, "Low"}})
	require.NoError(t, err)
	assert.Error(t, r.FinishTable(ctx, factDef.Name), "string in int column")
	_, statErr := os.Stat(r.Path(factDef.Name))
	assert.True(t, os.IsNotExist(statErr), "failed table must not produce a file")

	_, _, err = NewRepository(ctx, Config{})
	assert.Error(t, err)
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   storage.Config
		want Config
	}{
		{"database as dir", storage.Config{Database: "out"}, Config{Dir: "out", Compression: compress.Codecs.Snappy}},
		{"dsn wins", storage.Config{DSN: " /tmp/dw ", Database: "out"}, Config{Dir: "/tmp/dw", Compression: compress.Codecs.Snappy}},
		{"zstd", storage.Config{Database: "out", Params: map[string]string{"compression": "ZSTD"}}, Config{Dir: "out", Compression: compress.Codecs.Zstd}},
		{"none", storage.Config{Database: "out", Params: map[string]string{"compression": "none"}}, Config{Dir: "out", Compression: compress.Codecs.Uncompressed}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, configFrom(tc.in))
		})
	}
}

func TestAdapterRegistration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dw")
	repo, err := storage.New(context.Background(), storage.Config{Kind: "parquet", Database: dir})
	require.NoError(t, err)
	defer repo.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
