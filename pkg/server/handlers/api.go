// Package handlers implements the governance engine's HTTP API.
package handlers

import (
	"log/slog"
	"net/http"

	"mercator-hq/saturn/pkg/simulation"
	"mercator-hq/saturn/pkg/store"
)

// API holds the dependencies shared by all handlers.
type API struct {
	store     *store.Store
	orch      *simulation.Orchestrator
	generator simulation.SampleGenerator
	metrics   http.Handler
	logger    *slog.Logger
}

// NewAPI creates the API handler set. metrics may be nil to disable the
// /metrics endpoint.
func NewAPI(st *store.Store, orch *simulation.Orchestrator, gen simulation.SampleGenerator, metrics http.Handler, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		store:     st,
		orch:      orch,
		generator: gen,
		metrics:   metrics,
		logger:    logger.With("component", "handlers"),
	}
}

// Routes returns the API route table.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/models", a.createModel)
	mux.HandleFunc("GET /api/v1/models", a.listModels)
	mux.HandleFunc("GET /api/v1/models/{id}", a.getModel)
	mux.HandleFunc("DELETE /api/v1/models/{id}", a.deleteModel)

	mux.HandleFunc("POST /api/v1/models/{id}/simulate", a.simulate)
	mux.HandleFunc("POST /api/v1/models/{id}/recompute", a.recompute)
	mux.HandleFunc("POST /api/v1/models/{id}/deploy", a.deploy)
	mux.HandleFunc("POST /api/v1/models/{id}/archive", a.archive)

	mux.HandleFunc("GET /api/v1/models/{id}/drift", a.driftMetrics)
	mux.HandleFunc("GET /api/v1/models/{id}/fairness", a.fairnessMetrics)
	mux.HandleFunc("GET /api/v1/models/{id}/risk-history", a.riskHistory)
	mux.HandleFunc("GET /api/v1/models/{id}/audit", a.auditTrail)

	mux.HandleFunc("POST /api/v1/policies", a.createPolicy)
	mux.HandleFunc("GET /api/v1/policies/active", a.activePolicy)
	mux.HandleFunc("GET /api/v1/policies/{id}", a.getPolicy)

	mux.HandleFunc("GET /healthz", a.healthz)
	mux.HandleFunc("GET /readyz", a.readyz)
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics)
	}

	return mux
}

// actor identifies the caller for audit entries.
func actor(r *http.Request) string {
	if v := r.Header.Get("X-Actor"); v != "" {
		return v
	}
	return "api"
}
