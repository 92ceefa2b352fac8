package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/governance"
)

type createPolicyRequest struct {
	Name              string  `json:"name"`
	MaxRisk           float64 `json:"max_risk"`
	ApprovalThreshold float64 `json:"approval_threshold"`
	MaxDisparity      float64 `json:"max_disparity"`
}

// createPolicy validates and activates a new policy version. Activation is
// atomic: the previous active policy is deactivated in the same transaction.
func (a *API) createPolicy(w http.ResponseWriter, r *http.Request) {
	var req createPolicyRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	p := &governance.Policy{
		ID:                uuid.NewString(),
		Name:              req.Name,
		MaxRisk:           req.MaxRisk,
		ApprovalThreshold: req.ApprovalThreshold,
		MaxDisparity:      req.MaxDisparity,
		CreatedAt:         time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := a.store.ActivatePolicy(r.Context(), p); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) activePolicy(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.ActivePolicy(r.Context())
	if err != nil {
		if errors.Is(err, governance.ErrNoActivePolicy) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Type: "no_active_policy"})
			return
		}
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) getPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.GetPolicy(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
