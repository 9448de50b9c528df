// Package metrics provides Prometheus metrics for chainref runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reoring/chainref"
)

const namespace = "chainref"

// Metrics holds the counters of one CLI run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FilesProcessed *prometheus.CounterVec
	FilesRewritten prometheus.Counter
	Records        *prometheus.CounterVec
	Issues         *prometheus.CounterVec
	RunSuccess     prometheus.Gauge
	RunDuration    prometheus.Histogram
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		FilesProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Record files processed, by command",
		}, []string{"command"}),
		FilesRewritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_rewritten_total",
			Help:      "Record files whose canonical bytes differed and were written",
		}),
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records processed, by record type",
		}, []string{"type"}),
		Issues: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Validation problems reported, by code",
		}, []string{"code"}),
		RunSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 when the last run finished without errors",
		}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a CLI run in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

// ObserveReport adds the problem counts of r.
func (m *Metrics) ObserveReport(r chainref.Report) {
	for code, n := range r.CountByCode() {
		if n > 0 {
			m.Issues.WithLabelValues(code).Add(float64(n))
		}
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Flush writes every metric to path in the text exposition format. An empty
// path is a no-op.
func (m *Metrics) Flush(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
