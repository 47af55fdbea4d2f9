package authz

import (
	"net/http"

	"github.com/ecelabs/lims-backend/internal/api/httpx"
	"github.com/ecelabs/lims-backend/internal/metrics"
)

// Require is the route-level permission gate. It resolves the actor from the
// request context and runs the coarse capability check before the handler
// executes; a denial stops the request before any data access or mutation.
// Handlers performing record-scoped actions re-evaluate with the loaded
// record inside their service.
func Require(action Action, resource Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing actor context", nil)
				return
			}
			if d := Evaluate(actor, action, resource, nil); !d.Allowed {
				metrics.PermissionDenials.WithLabelValues(string(actor.Role), string(action), string(resource)).Inc()
				httpx.WriteError(w, http.StatusForbidden, "forbidden", d.Reason, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
