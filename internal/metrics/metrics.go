// Package metrics records operational metrics for a warehouse run behind a
// pluggable Backend. The default backend is a no-op, so instrumentation is
// always safe to call.
//
// Concrete systems live in subpackages (prompush, datadog) so the pipeline
// depends only on this interface.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal           = "studentdw_step_total"
	StepDurationSeconds = "studentdw_step_duration_seconds"
	RowsTotal           = "studentdw_rows_total"
	TableRowsTotal      = "studentdw_table_rows_total"
	BatchesTotal        = "studentdw_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-like value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a pipeline step (extract, transform,
// load) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows increments a row counter for the given kind, e.g.
//   - "staging"
//   - "duplicates"
//   - "imputed"
//   - "violations"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordTable counts rows persisted into one warehouse table.
func RecordTable(job, table string, rows int64) {
	if rows <= 0 {
		return
	}
	backend.IncCounter(TableRowsTotal, float64(rows), Labels{"job": job, "table": table})
}

// RecordBatches increments the batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job})
}
