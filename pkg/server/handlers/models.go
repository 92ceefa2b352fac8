package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/governance"
)

type createModelRequest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (a *API) createModel(w http.ResponseWriter, r *http.Request) {
	var req createModelRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Name == "" {
		badRequest(w, "model name cannot be empty")
		return
	}
	if req.Version == "" {
		req.Version = "1"
	}

	now := time.Now().UTC()
	model := &governance.ModelRecord{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Version:   req.Version,
		Status:    governance.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateModel(r.Context(), model); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model)
}

func (a *API) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := a.store.ListModels(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	if models == nil {
		models = []governance.ModelRecord{}
	}
	writeJSON(w, http.StatusOK, models)
}

func (a *API) getModel(w http.ResponseWriter, r *http.Request) {
	model, err := a.store.GetModel(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (a *API) deleteModel(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteModel(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) driftMetrics(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("id")
	if _, err := a.store.GetModel(r.Context(), modelID); err != nil {
		a.writeError(w, err)
		return
	}
	metrics, err := a.store.ListDriftMetrics(r.Context(), modelID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if metrics == nil {
		metrics = []governance.DriftMetric{}
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (a *API) fairnessMetrics(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("id")
	if _, err := a.store.GetModel(r.Context(), modelID); err != nil {
		a.writeError(w, err)
		return
	}
	metrics, err := a.store.ListFairnessMetrics(r.Context(), modelID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if metrics == nil {
		metrics = []governance.FairnessMetric{}
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (a *API) riskHistory(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("id")
	if _, err := a.store.GetModel(r.Context(), modelID); err != nil {
		a.writeError(w, err)
		return
	}
	points, err := a.store.ListRiskHistory(r.Context(), modelID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if points == nil {
		points = []governance.RiskHistoryPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (a *API) auditTrail(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("id")
	if _, err := a.store.GetModel(r.Context(), modelID); err != nil {
		a.writeError(w, err)
		return
	}
	entries, err := a.store.ListAuditEntries(r.Context(), modelID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []governance.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
