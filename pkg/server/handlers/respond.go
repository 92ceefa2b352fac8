package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/saturn/pkg/governance"
)

// errorResponse is the JSON body of every non-2xx response. Type carries the
// domain error class so callers can branch without parsing messages.
type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal server error", Type: "internal"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Type: typeFor(err)})
}

// statusFor maps domain errors to HTTP status codes. Precondition failures
// that the caller can correct map to 4xx; everything else is a 500.
func statusFor(err error) int {
	var (
		notFound        *governance.NotFoundError
		invalidState    *governance.InvalidStateError
		alreadyIngested *governance.AlreadyIngestedError
		duplicate       *governance.DuplicateIngestionError
		needsOverride   *governance.OverrideRequiredError
		blocked         *governance.BlockedError
		thinData        *governance.InsufficientDataError
		thinGroup       *governance.InsufficientGroupDataError
	)
	switch {
	case errors.Is(err, governance.ErrModelNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalidState):
		return http.StatusConflict
	case errors.Is(err, governance.ErrNoActivePolicy):
		return http.StatusConflict
	case errors.As(err, &alreadyIngested), errors.As(err, &duplicate):
		return http.StatusBadRequest
	case errors.As(err, &blocked):
		return http.StatusForbidden
	case errors.As(err, &needsOverride), errors.As(err, &thinData), errors.As(err, &thinGroup):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// typeFor names the domain error class for the response body.
func typeFor(err error) string {
	var (
		notFound        *governance.NotFoundError
		invalidState    *governance.InvalidStateError
		alreadyIngested *governance.AlreadyIngestedError
		duplicate       *governance.DuplicateIngestionError
		needsOverride   *governance.OverrideRequiredError
		blocked         *governance.BlockedError
		thinData        *governance.InsufficientDataError
		thinGroup       *governance.InsufficientGroupDataError
	)
	switch {
	case errors.Is(err, governance.ErrModelNotFound), errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalidState):
		return "invalid_state"
	case errors.Is(err, governance.ErrNoActivePolicy):
		return "no_active_policy"
	case errors.As(err, &alreadyIngested):
		return "already_ingested"
	case errors.As(err, &duplicate):
		return "duplicate_ingestion"
	case errors.As(err, &blocked):
		return "blocked"
	case errors.As(err, &needsOverride):
		return "override_required"
	case errors.As(err, &thinData), errors.As(err, &thinGroup):
		return "insufficient_data"
	default:
		return "internal"
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
