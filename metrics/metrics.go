// Package metrics provides Prometheus metrics for index scans.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one scan. Each instance owns its registry
// so that scans do not share global state.
type Metrics struct {
	registry *prometheus.Registry

	// Files resolved, by outcome (resolved, degraded, absent)
	FilesResolved *prometheus.CounterVec

	// Files skipped because they could not be read or hashed
	FilesSkipped prometheus.Counter

	// Time spent resolving a single file
	ResolveDuration prometheus.Histogram
}

// New creates and registers the scan metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FilesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "picmeta_files_resolved_total",
			Help: "Total number of files resolved, by outcome",
		}, []string{"outcome"}),

		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "picmeta_files_skipped_total",
			Help: "Total number of files that could not be read",
		}),

		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "picmeta_resolve_duration_seconds",
			Help:    "Time taken to resolve the metadata of one file",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
	}
	m.registry.MustRegister(m.FilesResolved, m.FilesSkipped, m.ResolveDuration)
	return m
}

// Gatherer exposes the registry, for tests and custom exporters.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
