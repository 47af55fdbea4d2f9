package handlers

import (
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type TestsHandler struct {
	Tests *services.TestService
}

func NewTestsHandler(tests *services.TestService) *TestsHandler {
	return &TestsHandler{Tests: tests}
}

func (h *TestsHandler) EnterResult(w http.ResponseWriter, r *http.Request) {
	actor, meta, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}
	var req struct {
		Result string `json:"result"`
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	t, err := h.Tests.EnterResult(r.Context(), actor, meta, chi.URLParam(r, "id"), services.EnterResultInput{
		Result: req.Result,
		Status: req.Status,
		Reason: req.Reason,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}
