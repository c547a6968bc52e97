// Package telemetry exposes Prometheus metrics for decimation and chart
// synchronization.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for bigchart. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Decimation
	DecimationInput    *prometheus.CounterVec
	DecimationOutput   *prometheus.CounterVec
	DecimationDuration *prometheus.HistogramVec

	// Bindings
	Updates      *prometheus.CounterVec
	UpdateErrors *prometheus.CounterVec

	// Sync group
	Propagations  prometheus.Counter
	Gestures      *prometheus.CounterVec
	PendingFrames prometheus.Gauge
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// InitMetrics registers the metrics with registry, or with the Prometheus
// default registerer when registry is nil.
func InitMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	// 10µs .. ~80ms; decimating a few hundred thousand points sits in the
	// low milliseconds.
	latencyBuckets := prometheus.ExponentialBuckets(0.00001, 2, 14)

	factory := promauto.With(registry)
	return &Metrics{
		DecimationInput: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bigchart_decimation_input_points_total",
				Help: "Points handed to a decimation strategy",
			},
			[]string{"strategy"},
		),

		DecimationOutput: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bigchart_decimation_output_points_total",
				Help: "Points produced by a decimation strategy",
			},
			[]string{"strategy"},
		),

		DecimationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bigchart_decimation_duration_seconds",
				Help:    "Time taken to window and decimate one dataset",
				Buckets: latencyBuckets,
			},
			[]string{"strategy"},
		),

		Updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bigchart_updates_total",
				Help: "Dataset buffer updates, by strategy and binding state",
			},
			[]string{"strategy", "state"},
		),

		UpdateErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bigchart_update_errors_total",
				Help: "Dataset buffer updates that failed",
			},
			[]string{"strategy"},
		),

		Propagations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bigchart_propagations_total",
				Help: "Viewport changes mirrored to a linked chart",
			},
		),

		Gestures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bigchart_gestures_total",
				Help: "Completed pan and zoom gestures",
			},
			[]string{"kind"},
		),

		PendingFrames: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bigchart_pending_frames",
				Help: "Frame callbacks waiting for the next tick",
			},
		),
	}
}

// Default returns metrics registered with the default registerer, creating
// them on first use.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = InitMetrics(nil)
	})
	return defaultMetrics
}

// ObserveDecimation records one windowed decimation.
func (m *Metrics) ObserveDecimation(strategy string, in, out int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DecimationInput.WithLabelValues(strategy).Add(float64(in))
	m.DecimationOutput.WithLabelValues(strategy).Add(float64(out))
	m.DecimationDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// RecordUpdate counts a buffer update, or an update error when err is set.
func (m *Metrics) RecordUpdate(strategy, state string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.UpdateErrors.WithLabelValues(strategy).Inc()
		return
	}
	m.Updates.WithLabelValues(strategy, state).Inc()
}

// RecordGesture counts a completed gesture of the given kind.
func (m *Metrics) RecordGesture(kind string) {
	if m == nil {
		return
	}
	m.Gestures.WithLabelValues(kind).Inc()
}

// RecordPropagation counts one viewport mirrored to a peer chart.
func (m *Metrics) RecordPropagation() {
	if m == nil {
		return
	}
	m.Propagations.Inc()
}

// PendingGauge returns the pending-frames gauge, or nil for nil metrics.
func (m *Metrics) PendingGauge() prometheus.Gauge {
	if m == nil {
		return nil
	}
	return m.PendingFrames
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer starting now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time elapsed since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
