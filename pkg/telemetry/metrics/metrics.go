// Package metrics exposes prometheus instrumentation for the governance
// engine. All collectors live on a dedicated registry so tests can create
// isolated instances without collector name collisions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/governance"
)

// EngineMetrics instruments simulation and recomputation runs.
type EngineMetrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	verdictsTotal  *prometheus.CounterVec
	runDuration    prometheus.Histogram
	rollbacksTotal prometheus.Counter
}

// NewEngineMetrics creates and registers all engine collectors.
func NewEngineMetrics(cfg config.MetricsConfig) *EngineMetrics {
	registry := prometheus.NewRegistry()

	m := &EngineMetrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total evaluation runs by outcome.",
			},
			[]string{"outcome"},
		),
		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verdicts_total",
				Help:      "Total policy verdicts by verdict value.",
			},
			[]string{"verdict"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Evaluation run duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		rollbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rollbacks_total",
				Help:      "Total evaluation runs rolled back after a failure.",
			},
		),
	}

	registry.MustRegister(
		m.runsTotal,
		m.verdictsTotal,
		m.runDuration,
		m.rollbacksTotal,
	)

	return m
}

// RecordRun records a completed run. Failed runs carry an empty verdict and
// are counted only under the outcome label.
func (m *EngineMetrics) RecordRun(outcome string, verdict governance.Verdict, duration time.Duration) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	if verdict != "" {
		m.verdictsTotal.WithLabelValues(string(verdict)).Inc()
	}
	m.runDuration.Observe(duration.Seconds())
}

// RecordRollback records a transaction rollback.
func (m *EngineMetrics) RecordRollback() {
	m.rollbacksTotal.Inc()
}

// Handler returns an HTTP handler serving the registry in the prometheus
// exposition format.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry for additional collectors.
func (m *EngineMetrics) Registry() *prometheus.Registry {
	return m.registry
}
