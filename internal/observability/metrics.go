// Package observability exposes the daemon's prometheus metrics.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the collectors updated by the poll cycle.
type Metrics struct {
	registry *prometheus.Registry

	cyclesTotal   prometheus.Counter
	cycleFailures *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	moistureLevel prometheus.Gauge
	dewPointC     prometheus.Gauge
}

// NewMetrics builds and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grasswatch_cycles_total",
			Help: "Total count of completed poll cycles, successful or not.",
		}),
		cycleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grasswatch_cycle_failures_total",
			Help: "Total count of failed poll cycles by error code.",
		}, []string{"code"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grasswatch_cycle_duration_seconds",
			Help:    "Histogram of poll cycle durations.",
			Buckets: prometheus.DefBuckets,
		}),
		moistureLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grasswatch_moisture_level",
			Help: "Current estimated grass moisture level (0 dry, 1 saturated).",
		}),
		dewPointC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grasswatch_dew_point_celsius",
			Help: "Dew point computed from the latest snapshot.",
		}),
	}

	m.registry.MustRegister(
		m.cyclesTotal,
		m.cycleFailures,
		m.cycleDuration,
		m.moistureLevel,
		m.dewPointC,
	)
	return m
}

// RecordCycle counts one completed cycle and its duration.
func (m *Metrics) RecordCycle(d time.Duration) {
	m.cyclesTotal.Inc()
	m.cycleDuration.Observe(d.Seconds())
}

// RecordCycleError counts one failed cycle under its error code.
func (m *Metrics) RecordCycleError(code string) {
	m.cycleFailures.WithLabelValues(code).Inc()
}

// RecordResult publishes the latest model output.
func (m *Metrics) RecordResult(moisture, dewPointC float64) {
	m.moistureLevel.Set(moisture)
	m.dewPointC.Set(dewPointC)
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
