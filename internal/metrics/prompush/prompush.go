// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Collectors live in a private registry that Flush pushes to the gateway,
// grouped under the job name. The "job" label of incoming metrics is
// dropped since the Pushgateway grouping key already carries it.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"salesdw/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter     *prometheus.CounterVec // salesdw_step_total
	stepDuration    *prometheus.SummaryVec // salesdw_step_duration_seconds
	tableLoads      *prometheus.CounterVec // salesdw_table_loads_total
	tableRows       *prometheus.CounterVec // salesdw_table_rows_total
	transformErrors prometheus.Counter     // salesdw_transform_errors_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually config.Job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "salesdw"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.StepTotal,
				Help: "Pipeline step executions, partitioned by step and status.",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.StepDuration,
				Help:       "Duration of pipeline steps in seconds.",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"step", "status"},
		),
		tableLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.TableLoadsTotal,
				Help: "Warehouse table loads, partitioned by table and status.",
			},
			[]string{"table", "status"},
		),
		tableRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.TableRowsTotal,
				Help: "Rows written per warehouse table.",
			},
			[]string{"table"},
		),
		transformErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metrics.TransformErrors,
				Help: "Dimension or fact builders that failed.",
			},
		),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":     b.stepCounter,
		"step summary":     b.stepDuration,
		"table loads":      b.tableLoads,
		"table rows":       b.tableRows,
		"transform errors": b.transformErrors,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.TableLoadsTotal:
		if b.tableLoads != nil {
			b.tableLoads.WithLabelValues(labels["table"], labels["status"]).Add(delta)
		}
	case metrics.TableRowsTotal:
		if b.tableRows != nil {
			b.tableRows.WithLabelValues(labels["table"]).Add(delta)
		}
	case metrics.TransformErrors:
		if b.transformErrors != nil {
			b.transformErrors.Add(delta)
		}
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
