package handlers

import (
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/api/validate"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/ecelabs/lims-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type SamplesHandler struct {
	Samples *services.SampleService
	Tests   *services.TestService
}

func NewSamplesHandler(samples *services.SampleService, tests *services.TestService) *SamplesHandler {
	return &SamplesHandler{Samples: samples, Tests: tests}
}

func (h *SamplesHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		JobID          string `json:"job_id"`
		ClientID       string `json:"client_id"`
		AssignedUserID string `json:"assigned_user_id"`
		Description    string `json:"description"`
		Matrix         string `json:"matrix"`
	}
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.Required("job_id", req.JobID),
		validate.Required("client_id", req.ClientID),
		validate.Required("description", req.Description),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation", "invalid request", errs)
		return
	}

	smp, err := h.Samples.Create(r.Context(), actor, meta, services.CreateSampleInput{
		JobID:          req.JobID,
		ClientID:       req.ClientID,
		AssignedUserID: req.AssignedUserID,
		Description:    req.Description,
		Matrix:         req.Matrix,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, smp)
}

func (h *SamplesHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	smp, err := h.Samples.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, smp)
}

func (h *SamplesHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	f := repo.SampleFilter{JobID: r.URL.Query().Get("job_id")}
	samples, err := h.Samples.List(r.Context(), actor, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, samples)
}

func (h *SamplesHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		Description string `json:"description"`
		Matrix      string `json:"matrix"`
		Status      string `json:"status"`
		Reason      string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	smp, err := h.Samples.Update(r.Context(), actor, meta, chi.URLParam(r, "id"), services.UpdateSampleInput{
		Description: req.Description,
		Matrix:      req.Matrix,
		Status:      models.SampleStatus(req.Status),
		Reason:      req.Reason,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, smp)
}

func (h *SamplesHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil || req.UserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "user_id required", nil)
		return
	}
	smp, err := h.Samples.Assign(r.Context(), actor, meta, chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, smp)
}

func (h *SamplesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = decode(r, &req)
	if err := h.Samples.Delete(r.Context(), actor, meta, chi.URLParam(r, "id"), req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTestPack bulk-inserts test assignments for a sample; the response
// carries the shared audit tx id so compliance tooling can query the batch
// as one unit.
func (h *SamplesHandler) AddTestPack(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		Tests []struct {
			Method    string `json:"method"`
			Parameter string `json:"parameter"`
			Unit      string `json:"unit"`
		} `json:"tests"`
	}
	if err := decode(r, &req); err != nil || len(req.Tests) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "tests required", nil)
		return
	}
	specs := make([]services.TestSpec, 0, len(req.Tests))
	for _, t := range req.Tests {
		specs = append(specs, services.TestSpec{Method: t.Method, Parameter: t.Parameter, Unit: t.Unit})
	}
	tests, txID, err := h.Tests.AddTestPack(r.Context(), actor, meta, chi.URLParam(r, "id"), specs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"tests": tests, "tx_id": txID})
}

func (h *SamplesHandler) ListTests(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	tests, err := h.Tests.ListBySample(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tests)
}
