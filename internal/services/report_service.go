package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/metrics"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/ecelabs/lims-backend/internal/worker"
)

// ReportService governs the certificate workflow DRAFT -> FINAL -> RELEASED.
// The release notification runs on the worker pool after commit; the audit
// writes themselves always stay inside the transaction.
type ReportService struct {
	store repo.Store
	wp    *worker.Pool
}

func NewReportService(store repo.Store, wp *worker.Pool) *ReportService {
	return &ReportService{store: store, wp: wp}
}

// GenerateDraft creates a DRAFT report for a sample.
func (s *ReportService) GenerateDraft(ctx context.Context, actor authz.Actor, meta audit.Meta, sampleID, title string) (models.Report, error) {
	if d := authz.Evaluate(actor, authz.ActionGenerateDraft, authz.ResourceReport, nil); !d.Allowed {
		return models.Report{}, authz.Denied(actor, authz.ActionGenerateDraft, authz.ResourceReport, d)
	}

	var out models.Report
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		smp, err := tx.Samples().GetByID(ctx, sampleID)
		if err != nil {
			return err
		}
		rec := &authz.Record{AssignedUserID: smp.AssignedUserID, ClientID: smp.ClientID}
		if d := authz.Evaluate(actor, authz.ActionGenerateDraft, authz.ResourceReport, rec); !d.Allowed {
			return authz.Denied(actor, authz.ActionGenerateDraft, authz.ResourceReport, d)
		}

		created, err := tx.Reports().Create(ctx, models.Report{
			SampleID: smp.ID,
			ClientID: smp.ClientID,
			Title:    title,
			Status:   models.ReportDraft,
		})
		if err != nil {
			return err
		}
		out = created
		recd := audit.NewRecorder(tx.AuditLogs())
		return recd.LogCreate(ctx, TableReports, created.ID, auditActor(actor), reportFields(created), meta, "")
	})
	if err != nil {
		return models.Report{}, err
	}
	metrics.GovernedMutations.WithLabelValues(TableReports, "CREATE").Inc()
	return out, nil
}

// Finalize moves DRAFT -> FINAL.
func (s *ReportService) Finalize(ctx context.Context, actor authz.Actor, meta audit.Meta, reportID string) (models.Report, error) {
	return s.transition(ctx, actor, meta, reportID, authz.ActionFinalize, models.ReportDraft, models.ReportFinal)
}

// Release moves FINAL -> RELEASED and makes the report client-visible.
func (s *ReportService) Release(ctx context.Context, actor authz.Actor, meta audit.Meta, reportID string) (models.Report, error) {
	rep, err := s.transition(ctx, actor, meta, reportID, authz.ActionRelease, models.ReportFinal, models.ReportReleased)
	if err != nil {
		return models.Report{}, err
	}
	if s.wp != nil {
		id, client := rep.ID, rep.ClientID
		s.wp.Submit(func() {
			slog.Info("report released", "report_id", id, "client_id", client)
		})
	}
	return rep, nil
}

func (s *ReportService) transition(ctx context.Context, actor authz.Actor, meta audit.Meta, reportID string, action authz.Action, from, to models.ReportStatus) (models.Report, error) {
	if d := authz.Evaluate(actor, action, authz.ResourceReport, nil); !d.Allowed {
		return models.Report{}, authz.Denied(actor, action, authz.ResourceReport, d)
	}

	var out models.Report
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		cur, err := tx.Reports().GetByID(ctx, reportID)
		if err != nil {
			return err
		}
		if cur.Status != from {
			return fmt.Errorf("report %s is %s, expected %s", cur.ID, cur.Status, from)
		}
		next := cur
		next.Status = to
		updated, err := tx.Reports().Update(ctx, next)
		if err != nil {
			return err
		}
		out = updated
		recd := audit.NewRecorder(tx.AuditLogs())
		return recd.LogUpdate(ctx, TableReports, cur.ID, auditActor(actor), reportFields(cur), reportFields(updated), meta, "")
	})
	if err != nil {
		return models.Report{}, err
	}
	metrics.GovernedMutations.WithLabelValues(TableReports, "UPDATE").Inc()
	return out, nil
}

func (s *ReportService) Get(ctx context.Context, actor authz.Actor, id string) (models.Report, error) {
	rep, err := s.store.Reports().GetByID(ctx, id)
	if err != nil {
		return models.Report{}, err
	}
	smp, err := s.store.Samples().GetByID(ctx, rep.SampleID)
	if err != nil {
		return models.Report{}, err
	}
	rec := &authz.Record{AssignedUserID: smp.AssignedUserID, ClientID: rep.ClientID, Status: string(rep.Status)}
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceReport, rec); !d.Allowed {
		return models.Report{}, authz.Denied(actor, authz.ActionRead, authz.ResourceReport, d)
	}
	return rep, nil
}

func (s *ReportService) List(ctx context.Context, actor authz.Actor, f repo.ReportFilter) ([]models.Report, error) {
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceReport, nil); !d.Allowed {
		return nil, authz.Denied(actor, authz.ActionRead, authz.ResourceReport, d)
	}
	scope := authz.ListScope(actor, authz.ResourceReport)
	if scope.AssignedUserID != "" {
		f.AssignedUserID = scope.AssignedUserID
	}
	if scope.ClientID != "" {
		f.ClientID = scope.ClientID
	}
	if scope.ReleasedOnly {
		f.ReleasedOnly = true
	}
	return s.store.Reports().List(ctx, f)
}
