// Package metrics exposes Prometheus collectors for batch runs
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one registry. A nil *Metrics records nothing.
type Metrics struct {
	// FilesTotal counts processed files
	// Labels: status (completed/failed/cancelled)
	FilesTotal *prometheus.CounterVec

	// RunsTotal counts finished batches
	// Labels: outcome (completed/cancelled)
	RunsTotal *prometheus.CounterVec

	// ActiveRuns is 1 while a batch is running
	ActiveRuns prometheus.Gauge

	// FileDuration is the wall time spent on one file, probe through ffmpeg exit
	// Buckets: 1s .. 1h
	FileDuration prometheus.Histogram

	// RepeatCount is the planned number of copies per file
	RepeatCount prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer for the process registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extender_files_total",
				Help: "Total number of input files processed by final status",
			},
			[]string{"status"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extender_runs_total",
				Help: "Total number of batch runs by outcome",
			},
			[]string{"outcome"},
		),
		ActiveRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "extender_active_runs",
				Help: "Number of batch runs in progress",
			},
		),
		FileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "extender_file_duration_seconds",
				Help:    "Time spent processing one input file in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
			},
		),
		RepeatCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "extender_repeat_count",
				Help:    "Planned number of copies per input file",
				Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100, 500},
			},
		),
	}
}

// RecordFile records the outcome of one file
func (m *Metrics) RecordFile(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.FilesTotal.WithLabelValues(status).Inc()
	m.FileDuration.Observe(durationSeconds)
}

// RecordRepeat records a planned repeat count
func (m *Metrics) RecordRepeat(repeat int) {
	if m == nil {
		return
	}
	m.RepeatCount.Observe(float64(repeat))
}

// RunStarted marks a batch as active
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.ActiveRuns.Inc()
}

// RunFinished records the outcome of a batch
func (m *Metrics) RunFinished(outcome string) {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
	m.RunsTotal.WithLabelValues(outcome).Inc()
}
