package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ecelabs/lims-backend/internal/api/handlers"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/metrics"
	"github.com/ecelabs/lims-backend/internal/middleware"
)

type Deps struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UsersHandler
	Jobs    *handlers.JobsHandler
	Samples *handlers.SamplesHandler
	Tests   *handlers.TestsHandler
	Reports *handlers.ReportsHandler
	Audit   *handlers.AuditHandler

	AuthMW  *middleware.AuthMiddleware
	RateRPS int
}

// NewRouter wires the HTTP surface. Every mutating route sits behind the
// auth middleware plus a coarse capability gate; context-sensitive checks
// run inside the services once the record is loaded.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover)
	r.Use(middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(d.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", d.Auth.Login)
		r.Post("/auth/refresh", d.Auth.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(d.AuthMW.Auth)

			r.With(authz.Require(authz.ActionCreate, authz.ResourceUser)).
				Post("/users", d.Users.Register)

			r.Route("/jobs", func(r chi.Router) {
				r.With(authz.Require(authz.ActionCreate, authz.ResourceJob)).Post("/", d.Jobs.Create)
				r.With(authz.Require(authz.ActionRead, authz.ResourceJob)).Get("/", d.Jobs.List)
				r.With(authz.Require(authz.ActionRead, authz.ResourceJob)).Get("/{id}", d.Jobs.Get)
			})

			r.Route("/samples", func(r chi.Router) {
				r.With(authz.Require(authz.ActionCreate, authz.ResourceSample)).Post("/", d.Samples.Create)
				r.With(authz.Require(authz.ActionRead, authz.ResourceSample)).Get("/", d.Samples.List)
				r.With(authz.Require(authz.ActionRead, authz.ResourceSample)).Get("/{id}", d.Samples.Get)
				r.With(authz.Require(authz.ActionUpdate, authz.ResourceSample)).Put("/{id}", d.Samples.Update)
				r.With(authz.Require(authz.ActionAssign, authz.ResourceSample)).Post("/{id}/assign", d.Samples.Assign)
				r.With(authz.Require(authz.ActionDelete, authz.ResourceSample)).Delete("/{id}", d.Samples.Delete)
				r.With(authz.Require(authz.ActionCreate, authz.ResourceTest)).Post("/{id}/tests", d.Samples.AddTestPack)
				r.With(authz.Require(authz.ActionRead, authz.ResourceTest)).Get("/{id}/tests", d.Samples.ListTests)
			})

			r.With(authz.Require(authz.ActionUpdate, authz.ResourceTest)).
				Put("/tests/{id}/result", d.Tests.EnterResult)

			r.Route("/reports", func(r chi.Router) {
				r.With(authz.Require(authz.ActionGenerateDraft, authz.ResourceReport)).Post("/", d.Reports.GenerateDraft)
				r.With(authz.Require(authz.ActionRead, authz.ResourceReport)).Get("/", d.Reports.List)
				r.With(authz.Require(authz.ActionRead, authz.ResourceReport)).Get("/{id}", d.Reports.Get)
				r.With(authz.Require(authz.ActionFinalize, authz.ResourceReport)).Post("/{id}/finalize", d.Reports.Finalize)
				r.With(authz.Require(authz.ActionRelease, authz.ResourceReport)).Post("/{id}/release", d.Reports.Release)
			})

			r.With(authz.Require(authz.ActionRead, authz.ResourceAuditLog)).
				Get("/audit-logs", d.Audit.Query)
		})
	})

	return r
}
