// Package metrics provides Prometheus metrics collection for the planner service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for one service instance.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestTotal    *prometheus.CounterVec
	PlansTotal          *prometheus.CounterVec
	PlanDuration        prometheus.Histogram
	ParcelsPerPlan      prometheus.Histogram
}

// New creates the collectors on a dedicated registry so several instances
// (for example in tests) never collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		PlansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "packing_plans_total",
				Help: "Total number of packing plans by outcome",
			},
			[]string{"status"},
		),
		PlanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "packing_plan_duration_seconds",
				Help:    "Packing plan duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),
		ParcelsPerPlan: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "packing_parcels_per_plan",
				Help:    "Number of parcels produced by successful plans",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestDuration,
		m.HTTPRequestTotal,
		m.PlansTotal,
		m.PlanDuration,
		m.ParcelsPerPlan,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and latencies. path labels use the
// matched route pattern to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rec.status)
		m.HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		m.HTTPRequestTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// RecordPlan records the outcome of one packing plan.
func (m *Metrics) RecordPlan(duration time.Duration, parcels int, err error) {
	m.PlanDuration.Observe(duration.Seconds())
	if err != nil {
		m.PlansTotal.WithLabelValues("failed").Inc()
		return
	}
	m.PlansTotal.WithLabelValues("ok").Inc()
	m.ParcelsPerPlan.Observe(float64(parcels))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
