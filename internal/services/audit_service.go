package services

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	repo "github.com/ecelabs/lims-backend/internal/repository"
)

// AuditService is the compliance read surface over the trail. Strictly
// read-only; access is gated on the AUDIT_LOG resource.
type AuditService struct {
	query *audit.Query
}

func NewAuditService(store repo.Store) *AuditService {
	return &AuditService{query: audit.NewQuery(store.AuditLogs())}
}

func (s *AuditService) Query(ctx context.Context, actor authz.Actor, f audit.Filter, page, perPage int) (audit.Page, error) {
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceAuditLog, nil); !d.Allowed {
		return audit.Page{}, authz.Denied(actor, authz.ActionRead, authz.ResourceAuditLog, d)
	}
	return s.query.Query(ctx, f, page, perPage)
}
