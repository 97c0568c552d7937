// Package load persists warehouse tables through a storage.Repository with
// full-replace semantics: each table is dropped, recreated and refilled.
package load

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"studentdw/internal/etlerr"
	"studentdw/internal/metrics"
	"studentdw/internal/storage"
	"studentdw/internal/warehouse"
)

// Loader writes tables to the store described by Storage.
type Loader struct {
	Storage   storage.Config
	BatchSize int
	Job       string
}

// Result describes one persisted table.
type Result struct {
	Table       string
	Rows        int64
	Fingerprint uint64
	Elapsed     time.Duration
}

// New returns a Loader for cfg.
func New(cfg storage.Config, batchSize int, job string) *Loader {
	return &Loader{Storage: cfg, BatchSize: batchSize, Job: job}
}

// Load opens the store once and writes tables in order. Each table commits
// on its own; the first failure stops the run with an *etlerr.WriteError and
// leaves earlier tables in place. A store that cannot be opened yields
// etlerr.ErrConnection before any write.
func (l *Loader) Load(ctx context.Context, tables []warehouse.Table) ([]Result, error) {
	repo, err := storage.New(ctx, l.Storage)
	if err != nil {
		return nil, fmt.Errorf("load: %w: %v", etlerr.ErrConnection, err)
	}
	defer repo.Close()

	results := make([]Result, 0, len(tables))
	for _, t := range tables {
		res, err := l.loadTable(ctx, repo, t)
		if err != nil {
			return results, &etlerr.WriteError{Table: t.Def.Name, Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

func (l *Loader) loadTable(ctx context.Context, repo storage.Repository, t warehouse.Table) (Result, error) {
	start := time.Now()
	name := t.Def.Name
	if t.Data == nil {
		return Result{}, errors.New("no data")
	}

	if err := repo.ReplaceTable(ctx, t.Def); err != nil {
		return Result{}, err
	}

	columns := t.Def.ColumnNames()
	// Align the data to the definition's column order.
	data := t.Data.WithRows(t.Data.Rows)
	data.Columns = columns

	var batches int64
	n, err := storage.LoadBatches(ctx, columns, data.Values(), l.BatchSize,
		func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
			batches++
			return repo.CopyFrom(ctx, name, cols, rows)
		})
	if err != nil {
		return Result{}, err
	}
	if n != int64(data.Len()) {
		return Result{}, fmt.Errorf("wrote %d of %d rows", n, data.Len())
	}
	if err := repo.FinishTable(ctx, name); err != nil {
		return Result{}, err
	}

	res := Result{
		Table:       name,
		Rows:        n,
		Fingerprint: data.Fingerprint(),
		Elapsed:     time.Since(start),
	}
	metrics.RecordTable(l.Job, name, n)
	metrics.RecordBatches(l.Job, batches)
	log.Printf("load: table=%s rows=%s fingerprint=%016x elapsed=%s",
		name, humanize.Comma(n), res.Fingerprint, res.Elapsed.Truncate(time.Millisecond))
	return res, nil
}
