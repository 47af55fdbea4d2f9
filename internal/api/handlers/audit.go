package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/models"
	"github.com/ecelabs/lims-backend/internal/services"
)

// AuditHandler serves the compliance read endpoint over the audit trail.
type AuditHandler struct {
	Audit *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{Audit: svc}
}

func (h *AuditHandler) Query(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := actorMeta(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
		return
	}

	q := r.URL.Query()
	f := audit.Filter{
		Table:    q.Get("table"),
		RecordID: q.Get("record_id"),
		ActorID:  q.Get("actor_id"),
		Action:   models.AuditAction(q.Get("action")),
		TxID:     q.Get("tx_id"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "from must be RFC3339", nil)
			return
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "to must be RFC3339", nil)
			return
		}
		f.To = &t
	}

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	out, err := h.Audit.Query(r.Context(), actor, f, page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
