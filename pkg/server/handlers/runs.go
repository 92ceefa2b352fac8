package handlers

import (
	"net/http"
)

type deployRequest struct {
	Override      bool   `json:"override"`
	Justification string `json:"justification"`
}

func (a *API) simulate(w http.ResponseWriter, r *http.Request) {
	outcome, err := a.orch.Run(r.Context(), r.PathValue("id"), actor(r), a.generator)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (a *API) recompute(w http.ResponseWriter, r *http.Request) {
	outcome, err := a.orch.Recompute(r.Context(), r.PathValue("id"), actor(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (a *API) deploy(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	entry, err := a.orch.Deploy(r.Context(), r.PathValue("id"), actor(r), req.Override, req.Justification)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *API) archive(w http.ResponseWriter, r *http.Request) {
	entry, err := a.orch.Archive(r.Context(), r.PathValue("id"), actor(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
