package handlers

import (
	"context"
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/ecelabs/lims-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type ReportsHandler struct {
	Reports *services.ReportService
}

func NewReportsHandler(reports *services.ReportService) *ReportsHandler {
	return &ReportsHandler{Reports: reports}
}

func (h *ReportsHandler) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		SampleID string `json:"sample_id"`
		Title    string `json:"title"`
	}
	if err := decode(r, &req); err != nil || req.SampleID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "sample_id required", nil)
		return
	}
	rep, err := h.Reports.GenerateDraft(r.Context(), actor, meta, req.SampleID, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rep)
}

type transitionFn func(ctx context.Context, actor authz.Actor, meta audit.Meta, reportID string) (models.Report, error)

func (h *ReportsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Reports.Finalize)
}

func (h *ReportsHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Reports.Release)
}

func (h *ReportsHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFn) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	rep, err := fn(r.Context(), actor, meta, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rep)
}

func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	rep, err := h.Reports.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rep)
}

func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	f := repo.ReportFilter{SampleID: r.URL.Query().Get("sample_id")}
	reports, err := h.Reports.List(r.Context(), actor, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reports)
}
