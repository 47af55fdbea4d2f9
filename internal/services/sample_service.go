package services

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/metrics"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
)

// SampleService governs sample mutations. Every mutation runs inside one
// storage transaction holding the business change, the recorder's audit
// entry and the row-trigger backstop; a failure in any aborts all three.
type SampleService struct {
	store repo.Store
}

func NewSampleService(store repo.Store) *SampleService {
	return &SampleService{store: store}
}

type CreateSampleInput struct {
	JobID          string
	ClientID       string
	AssignedUserID string
	Description    string
	Matrix         string
}

func (s *SampleService) Create(ctx context.Context, actor authz.Actor, meta audit.Meta, in CreateSampleInput) (models.Sample, error) {
	if d := authz.Evaluate(actor, authz.ActionCreate, authz.ResourceSample, nil); !d.Allowed {
		return models.Sample{}, authz.Denied(actor, authz.ActionCreate, authz.ResourceSample, d)
	}

	var out models.Sample
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		created, err := tx.Samples().Create(ctx, models.Sample{
			JobID:          in.JobID,
			ClientID:       in.ClientID,
			AssignedUserID: in.AssignedUserID,
			Description:    in.Description,
			Matrix:         in.Matrix,
			Status:         models.SampleReceived,
		})
		if err != nil {
			return err
		}
		out = created
		rec := audit.NewRecorder(tx.AuditLogs())
		return rec.LogCreate(ctx, TableSamples, created.ID, auditActor(actor), sampleFields(created), meta, "")
	})
	if err != nil {
		return models.Sample{}, err
	}
	metrics.GovernedMutations.WithLabelValues(TableSamples, "CREATE").Inc()
	return out, nil
}

func (s *SampleService) Get(ctx context.Context, actor authz.Actor, id string) (models.Sample, error) {
	smp, err := s.store.Samples().GetByID(ctx, id)
	if err != nil {
		return models.Sample{}, err
	}
	rec := &authz.Record{AssignedUserID: smp.AssignedUserID, ClientID: smp.ClientID, Status: string(smp.Status)}
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceSample, rec); !d.Allowed {
		return models.Sample{}, authz.Denied(actor, authz.ActionRead, authz.ResourceSample, d)
	}
	return smp, nil
}

// List narrows the query with the actor's row-level scope instead of
// fetching everything and rejecting per row.
func (s *SampleService) List(ctx context.Context, actor authz.Actor, f repo.SampleFilter) ([]models.Sample, error) {
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceSample, nil); !d.Allowed {
		return nil, authz.Denied(actor, authz.ActionRead, authz.ResourceSample, d)
	}
	scope := authz.ListScope(actor, authz.ResourceSample)
	if scope.AssignedUserID != "" {
		f.AssignedUserID = scope.AssignedUserID
	}
	if scope.ClientID != "" {
		f.ClientID = scope.ClientID
	}
	return s.store.Samples().List(ctx, f)
}

type UpdateSampleInput struct {
	Description string
	Matrix      string
	Status      models.SampleStatus
	Reason      string
}

func (s *SampleService) Update(ctx context.Context, actor authz.Actor, meta audit.Meta, id string, in UpdateSampleInput) (models.Sample, error) {
	if d := authz.Evaluate(actor, authz.ActionUpdate, authz.ResourceSample, nil); !d.Allowed {
		return models.Sample{}, authz.Denied(actor, authz.ActionUpdate, authz.ResourceSample, d)
	}

	meta.Reason = in.Reason
	var out models.Sample
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		cur, err := tx.Samples().GetByID(ctx, id)
		if err != nil {
			return err
		}
		rec := &authz.Record{AssignedUserID: cur.AssignedUserID, ClientID: cur.ClientID, Status: string(cur.Status)}
		if d := authz.Evaluate(actor, authz.ActionUpdate, authz.ResourceSample, rec); !d.Allowed {
			return authz.Denied(actor, authz.ActionUpdate, authz.ResourceSample, d)
		}

		next := cur
		next.Description = in.Description
		next.Matrix = in.Matrix
		if in.Status != "" {
			next.Status = in.Status
		}
		updated, err := tx.Samples().Update(ctx, next)
		if err != nil {
			return err
		}
		out = updated
		recd := audit.NewRecorder(tx.AuditLogs())
		return recd.LogUpdate(ctx, TableSamples, cur.ID, auditActor(actor), sampleFields(cur), sampleFields(updated), meta, "")
	})
	if err != nil {
		return models.Sample{}, err
	}
	metrics.GovernedMutations.WithLabelValues(TableSamples, "UPDATE").Inc()
	return out, nil
}

// Assign sets the analyst a sample belongs to. Assignment is its own action
// in the capability matrix; only lab management may do it.
func (s *SampleService) Assign(ctx context.Context, actor authz.Actor, meta audit.Meta, id, userID string) (models.Sample, error) {
	if d := authz.Evaluate(actor, authz.ActionAssign, authz.ResourceSample, nil); !d.Allowed {
		return models.Sample{}, authz.Denied(actor, authz.ActionAssign, authz.ResourceSample, d)
	}

	var out models.Sample
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		cur, err := tx.Samples().GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := cur
		next.AssignedUserID = userID
		updated, err := tx.Samples().Update(ctx, next)
		if err != nil {
			return err
		}
		out = updated
		rec := audit.NewRecorder(tx.AuditLogs())
		return rec.LogUpdate(ctx, TableSamples, cur.ID, auditActor(actor), sampleFields(cur), sampleFields(updated), meta, "")
	})
	if err != nil {
		return models.Sample{}, err
	}
	metrics.GovernedMutations.WithLabelValues(TableSamples, "UPDATE").Inc()
	return out, nil
}

func (s *SampleService) Delete(ctx context.Context, actor authz.Actor, meta audit.Meta, id, reason string) error {
	if d := authz.Evaluate(actor, authz.ActionDelete, authz.ResourceSample, nil); !d.Allowed {
		return authz.Denied(actor, authz.ActionDelete, authz.ResourceSample, d)
	}

	meta.Reason = reason
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		cur, err := tx.Samples().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Samples().Delete(ctx, id); err != nil {
			return err
		}
		rec := audit.NewRecorder(tx.AuditLogs())
		return rec.LogDelete(ctx, TableSamples, cur.ID, auditActor(actor), sampleFields(cur), meta, "")
	})
	if err != nil {
		return err
	}
	metrics.GovernedMutations.WithLabelValues(TableSamples, "DELETE").Inc()
	return nil
}
