package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/api/validate"
	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/middleware"
	"github.com/jackc/pgx/v5"
)

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func actorMeta(r *http.Request) (authz.Actor, audit.Meta, bool) {
	actor, ok := authz.ActorFrom(r.Context())
	if !ok {
		return authz.Actor{}, audit.Meta{}, false
	}
	m := middleware.RequestMetaFrom(r.Context())
	return actor, audit.Meta{IP: m.IP, UserAgent: m.UserAgent}, true
}

// writeServiceError maps domain errors to HTTP. Denials carry their reason;
// audit-write and other storage faults surface as a generic server error so
// storage internals stay private while the operation still fails loudly.
func writeServiceError(w http.ResponseWriter, err error) {
	var denied *authz.DeniedError
	switch {
	case errors.As(err, &denied):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", denied.Decision.Reason, map[string]string{
			"action":   string(denied.Action),
			"resource": string(denied.Resource),
		})
	case errors.Is(err, pgx.ErrNoRows):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "record not found", nil)
	default:
		var ve validate.Errs
		if errors.As(err, &ve) {
			httpx.WriteError(w, http.StatusBadRequest, "validation", "invalid request", ve)
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
