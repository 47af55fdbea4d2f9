package services

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/metrics"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
)

type JobService struct {
	store repo.Store
}

func NewJobService(store repo.Store) *JobService { return &JobService{store: store} }

func (s *JobService) Create(ctx context.Context, actor authz.Actor, meta audit.Meta, clientID, title string) (models.Job, error) {
	if d := authz.Evaluate(actor, authz.ActionCreate, authz.ResourceJob, nil); !d.Allowed {
		return models.Job{}, authz.Denied(actor, authz.ActionCreate, authz.ResourceJob, d)
	}

	var out models.Job
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		created, err := tx.Jobs().Create(ctx, models.Job{ClientID: clientID, Title: title, Status: "open"})
		if err != nil {
			return err
		}
		out = created
		rec := audit.NewRecorder(tx.AuditLogs())
		return rec.LogCreate(ctx, TableJobs, created.ID, auditActor(actor), jobFields(created), meta, "")
	})
	if err != nil {
		return models.Job{}, err
	}
	metrics.GovernedMutations.WithLabelValues(TableJobs, "CREATE").Inc()
	return out, nil
}

func (s *JobService) Get(ctx context.Context, actor authz.Actor, id string) (models.Job, error) {
	j, err := s.store.Jobs().GetByID(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	rec := &authz.Record{ClientID: j.ClientID}
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceJob, rec); !d.Allowed {
		return models.Job{}, authz.Denied(actor, authz.ActionRead, authz.ResourceJob, d)
	}
	return j, nil
}

func (s *JobService) List(ctx context.Context, actor authz.Actor, f repo.JobFilter) ([]models.Job, error) {
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceJob, nil); !d.Allowed {
		return nil, authz.Denied(actor, authz.ActionRead, authz.ResourceJob, d)
	}
	if scope := authz.ListScope(actor, authz.ResourceJob); scope.ClientID != "" {
		f.ClientID = scope.ClientID
	}
	return s.store.Jobs().List(ctx, f)
}
