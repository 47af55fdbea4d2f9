package handlers

import (
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/ecelabs/lims-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type JobsHandler struct {
	Jobs *services.JobService
}

func NewJobsHandler(jobs *services.JobService) *JobsHandler {
	return &JobsHandler{Jobs: jobs}
}

func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		ClientID string `json:"client_id"`
		Title    string `json:"title"`
	}
	if err := decode(r, &req); err != nil || req.ClientID == "" || req.Title == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "client_id and title required", nil)
		return
	}
	j, err := h.Jobs.Create(r.Context(), actor, meta, req.ClientID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, j)
}

func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	j, err := h.Jobs.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, j)
}

func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	jobs, err := h.Jobs.List(r.Context(), actor, repo.JobFilter{})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, jobs)
}
