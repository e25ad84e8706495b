package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection. Each collector owns its
// registry, so several may live in one process.
type Collector struct {
	Registry *prometheus.Registry

	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Run Metrics
	RunsTotal     *prometheus.CounterVec
	RunsActive    prometheus.Gauge
	PhaseDuration *prometheus.HistogramVec

	// Data quality Metrics
	SkippedDatesTotal *prometheus.CounterVec
	DiagnosticsTotal  *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		Registry: reg,

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"endpoint"},
		),

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of finished runs by kind and status",
			},
			[]string{"kind", "status"},
		),

		RunsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "runs_active",
				Help:      "Number of runs currently executing",
			},
		),

		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of pipeline phases in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"phase"},
		),

		SkippedDatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "weather_skipped_dates_total",
				Help:      "Season dates skipped for missing or incomplete weather, by time of day",
			},
			[]string{"hour"},
		),

		DiagnosticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Data quality diagnostics raised, by code",
			},
			[]string{"code"},
		),
	}
}

// Handler exposes the collector registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// PhaseTimer starts timing a pipeline phase. A nil collector times nothing.
func (c *Collector) PhaseTimer(phase string) *Timer {
	if c == nil {
		return &Timer{start: time.Now()}
	}
	return c.NewTimer(c.PhaseDuration.WithLabelValues(phase))
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordRun counts a finished run.
func (c *Collector) RecordRun(kind, status string) {
	if c == nil {
		return
	}
	c.RunsTotal.WithLabelValues(kind, status).Inc()
}

// RecordSkippedDates adds season dates without usable weather.
func (c *Collector) RecordSkippedDates(hour string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.SkippedDatesTotal.WithLabelValues(hour).Add(float64(n))
}

// RecordDiagnostic counts a raised diagnostic.
func (c *Collector) RecordDiagnostic(code string) {
	if c == nil {
		return
	}
	c.DiagnosticsTotal.WithLabelValues(code).Inc()
}
