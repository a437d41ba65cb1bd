// Package metrics records operational metrics of warehouse runs behind a
// small backend-agnostic interface.
//
// The default backend is a no-op, so instrumentation is always safe to call.
// A concrete backend (prompush, datadog) is installed once at startup with
// SetBackend.
package metrics

import "time"

// Metric names.
const (
	StepTotal       = "salesdw_step_total"
	StepDuration    = "salesdw_step_duration_seconds"
	TableLoadsTotal = "salesdw_table_loads_total"
	TableRowsTotal  = "salesdw_table_rows_total"
	TransformErrors = "salesdw_transform_errors_total"
	statusSuccess   = "success"
	statusFailure   = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

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

func status(err error) string {
	if err != nil {
		return statusFailure
	}
	return statusSuccess
}

// RecordStep counts one execution of a pipeline step (extract, transform,
// load) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status(err),
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordTable counts one warehouse table load and, on success, the rows it
// wrote.
func RecordTable(job, table string, rows int64, err error) {
	backend.IncCounter(TableLoadsTotal, 1, Labels{
		"job":    job,
		"table":  table,
		"status": status(err),
	})
	if err != nil || rows <= 0 {
		return
	}
	backend.IncCounter(TableRowsTotal, float64(rows), Labels{
		"job":   job,
		"table": table,
	})
}

// RecordTransformErrors counts builders that failed during a run.
func RecordTransformErrors(job string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(TransformErrors, float64(n), Labels{"job": job})
}
