// Package metrics provides Prometheus metrics for the ingestion pipeline
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingest run metrics
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anvil_ingest_runs_total",
			Help: "Total number of ingestion pipeline runs",
		},
		[]string{"service", "status"},
	)

	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anvil_ingest_duration_seconds",
			Help:    "Time taken for one full ingestion run",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"service"},
	)

	WorkspacesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anvil_workspaces_ingested_total",
			Help: "Total number of workspace records produced",
		},
		[]string{"service"},
	)

	// Source file metrics
	MissingFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anvil_missing_files_total",
			Help: "Total number of reads that found an export file absent",
		},
		[]string{"service", "file"},
	)

	// Accession resolver metrics
	AccessionLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anvil_accession_lookups_total",
			Help: "Total number of accession resolutions against the upstream registry",
		},
		[]string{"service", "outcome"},
	)

	AccessionLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anvil_accession_lookup_duration_seconds",
			Help:    "Duration of accession resolver calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
)

// Metrics provides a convenient interface for recording pipeline metrics
type Metrics struct {
	serviceName string
}

// New creates a new metrics recorder for a service
func New(serviceName string) *Metrics {
	return &Metrics{
		serviceName: serviceName,
	}
}

// RecordRun records the outcome of one ingestion run
func (m *Metrics) RecordRun(status string, duration time.Duration, workspaces int) {
	IngestRunsTotal.WithLabelValues(m.serviceName, status).Inc()
	IngestDuration.WithLabelValues(m.serviceName).Observe(duration.Seconds())
	WorkspacesIngested.WithLabelValues(m.serviceName).Add(float64(workspaces))
}

// RecordMissingFile records a read that found an export file absent
func (m *Metrics) RecordMissingFile(file string) {
	MissingFilesTotal.WithLabelValues(m.serviceName, file).Inc()
}

// RecordAccessionLookup records one call against the accession registry
func (m *Metrics) RecordAccessionLookup(outcome string, duration time.Duration) {
	AccessionLookupsTotal.WithLabelValues(m.serviceName, outcome).Inc()
	AccessionLookupDuration.WithLabelValues(m.serviceName).Observe(duration.Seconds())
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
