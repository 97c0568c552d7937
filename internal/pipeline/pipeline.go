// Package pipeline runs the warehouse build end to end: extract the staging
// table, derive the star schema, and load it with full-replace semantics.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"studentdw/internal/config"
	"studentdw/internal/datasource"
	"studentdw/internal/datasource/file"
	"studentdw/internal/extract"
	"studentdw/internal/load"
	"studentdw/internal/metrics"
	"studentdw/internal/parser"
	csvparser "studentdw/internal/parser/csv"
	"studentdw/internal/storage"
	"studentdw/internal/transformer/builtin"
	"studentdw/internal/warehouse"
	"studentdw/pkg/records"
)

// Summary reports what one run did.
type Summary struct {
	RunID        string
	StagingRows  int
	DistinctRows int
	Imputations  []builtin.Imputation
	Violations   []builtin.Violation
	Integrity    warehouse.Integrity
	Tables       []load.Result
	Elapsed      time.Duration
}

// Run executes Extract, Transform and Load in order. The first stage error
// stops the run; errors keep their etlerr classification.
func Run(ctx context.Context, p config.Pipeline) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	log.Printf("run %s: job=%s source=%s storage=%s", sum.RunID, p.Job, p.Source.File.Path, p.Storage.Kind)

	src, err := buildSource(p.Source)
	if err != nil {
		return nil, err
	}
	prs, err := buildParser(p.Parser)
	if err != nil {
		return nil, err
	}

	var staging *records.Table
	err = step(p.Job, "extract", func() error {
		staging, err = extract.New(src, prs).Extract(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	var model *warehouse.Model
	err = step(p.Job, "transform", func() error {
		model, err = warehouse.Build(staging)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	report(p.Job, model, sum)

	err = step(p.Job, "load", func() error {
		sum.Tables, err = load.New(StorageConfig(p.Storage), p.Runtime.BatchSize, p.Job).Load(ctx, model.Tables())
		return err
	})
	if err != nil {
		return sum, err
	}

	sum.Elapsed = time.Since(start)
	log.Printf("run %s: complete tables=%d elapsed=%s", sum.RunID, len(sum.Tables), sum.Elapsed.Truncate(time.Millisecond))
	return sum, nil
}

// step times fn and records it as a pipeline step.
func step(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	return err
}

// report copies the cleaning diagnostics into sum and logs them. None of
// them fail the run.
func report(job string, m *warehouse.Model, sum *Summary) {
	rep := m.Report
	sum.StagingRows = rep.StagingRows
	sum.DistinctRows = rep.DistinctRows
	sum.Imputations = rep.Imputations
	sum.Violations = rep.Violations
	sum.Integrity = m.Verify()

	dups := rep.StagingRows - rep.DistinctRows
	log.Printf("transform: staging=%s distinct=%s duplicates=%s",
		humanize.Comma(int64(rep.StagingRows)), humanize.Comma(int64(rep.DistinctRows)), humanize.Comma(int64(dups)))
	metrics.RecordRows(job, "staging", int64(rep.StagingRows))
	metrics.RecordRows(job, "duplicates", int64(dups))

	for _, imp := range rep.Imputations {
		log.Printf("transform: imputed column=%s strategy=%s fill=%v count=%d", imp.Column, imp.Strategy, imp.Fill, imp.Count)
		metrics.RecordRows(job, "imputed", int64(imp.Count))
	}
	for _, v := range rep.Violations {
		log.Printf("transform: WARNING unexpected value column=%s value=%v count=%d", v.Column, v.Value, v.Count)
		metrics.RecordRows(job, "violations", int64(v.Count))
	}
	log.Printf("transform: %s=%d %s=%d %s=%d",
		warehouse.TableDimStudent, len(m.Students),
		warehouse.TableDimTime, len(m.Times),
		warehouse.TableFact, len(m.Facts))
	if !sum.Integrity.OK() {
		log.Printf("transform: WARNING unresolved foreign keys student_key=%d time_key=%d",
			sum.Integrity.MissingStudent, sum.Integrity.MissingTime)
	}
}

func buildSource(s config.Source) (datasource.Source, error) {
	switch s.Kind {
	case "file", "":
		return file.NewLocal(s.File.Path), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", s.Kind)
	}
}

func buildParser(p config.Parser) (parser.Parser, error) {
	switch p.Kind {
	case "csv", "":
		return csvparser.NewParser(csvparser.Options{
			Comma:     p.Options.Rune("comma", ';'),
			TrimSpace: p.Options.Bool("trim_space", true),
			HeaderMap: p.Options.StringMap("header_map"),
			NAValues:  p.Options.StringSlice("na_values"),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", p.Kind)
	}
}

// StorageConfig maps the pipeline storage section to a storage.Config.
func StorageConfig(s config.Storage) storage.Config {
	return storage.Config{
		Kind:     s.Kind,
		DSN:      s.DB.DSN,
		Host:     s.DB.Host,
		Port:     s.DB.Port,
		User:     s.DB.User,
		Password: s.DB.Password,
		Database: s.DB.Database,
		Params:   s.DB.Params,
	}
}
