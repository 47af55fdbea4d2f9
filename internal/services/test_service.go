package services

import (
	"context"
	"errors"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/metrics"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
)

var ErrEmptyTestPack = errors.New("test pack must contain at least one test")

// TestService governs test assignments on samples.
type TestService struct {
	store repo.Store
}

func NewTestService(store repo.Store) *TestService {
	return &TestService{store: store}
}

type TestSpec struct {
	Method    string
	Parameter string
	Unit      string
}

// AddTestPack inserts a batch of test assignments in one transaction sharing
// one audit tx id. The batch fully succeeds or fully rolls back; partial
// application is not a valid outcome.
func (s *TestService) AddTestPack(ctx context.Context, actor authz.Actor, meta audit.Meta, sampleID string, specs []TestSpec) ([]models.SampleTest, string, error) {
	if d := authz.Evaluate(actor, authz.ActionCreate, authz.ResourceTest, nil); !d.Allowed {
		return nil, "", authz.Denied(actor, authz.ActionCreate, authz.ResourceTest, d)
	}
	if len(specs) == 0 {
		return nil, "", ErrEmptyTestPack
	}

	txID := audit.NewTransactionID()
	var out []models.SampleTest
	err := s.store.WithTx(ctx, session(actor, meta, txID), func(tx repo.Tx) error {
		smp, err := tx.Samples().GetByID(ctx, sampleID)
		if err != nil {
			return err
		}
		rec := &authz.Record{AssignedUserID: smp.AssignedUserID, ClientID: smp.ClientID}
		if d := authz.Evaluate(actor, authz.ActionCreate, authz.ResourceTest, rec); !d.Allowed {
			return authz.Denied(actor, authz.ActionCreate, authz.ResourceTest, d)
		}

		recd := audit.NewRecorder(tx.AuditLogs())
		for _, spec := range specs {
			created, err := tx.SampleTests().Create(ctx, models.SampleTest{
				SampleID:  sampleID,
				Method:    spec.Method,
				Parameter: spec.Parameter,
				Unit:      spec.Unit,
				Status:    "pending",
			})
			if err != nil {
				return err
			}
			if err := recd.LogCreate(ctx, TableSampleTests, created.ID, auditActor(actor), sampleTestFields(created), meta, txID); err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	for range out {
		metrics.GovernedMutations.WithLabelValues(TableSampleTests, "CREATE").Inc()
	}
	return out, txID, nil
}

type EnterResultInput struct {
	Result string
	Status string
	Reason string
}

// EnterResult records a test result. Analysts may only touch tests on
// samples assigned to them.
func (s *TestService) EnterResult(ctx context.Context, actor authz.Actor, meta audit.Meta, testID string, in EnterResultInput) (models.SampleTest, error) {
	if d := authz.Evaluate(actor, authz.ActionUpdate, authz.ResourceTest, nil); !d.Allowed {
		return models.SampleTest{}, authz.Denied(actor, authz.ActionUpdate, authz.ResourceTest, d)
	}

	meta.Reason = in.Reason
	var out models.SampleTest
	err := s.store.WithTx(ctx, session(actor, meta, ""), func(tx repo.Tx) error {
		cur, err := tx.SampleTests().GetByID(ctx, testID)
		if err != nil {
			return err
		}
		smp, err := tx.Samples().GetByID(ctx, cur.SampleID)
		if err != nil {
			return err
		}
		rec := &authz.Record{AssignedUserID: smp.AssignedUserID, ClientID: smp.ClientID}
		if d := authz.Evaluate(actor, authz.ActionUpdate, authz.ResourceTest, rec); !d.Allowed {
			return authz.Denied(actor, authz.ActionUpdate, authz.ResourceTest, d)
		}

		next := cur
		next.Result = in.Result
		if in.Status != "" {
			next.Status = in.Status
		}
		updated, err := tx.SampleTests().Update(ctx, next)
		if err != nil {
			return err
		}
		out = updated
		recd := audit.NewRecorder(tx.AuditLogs())
		return recd.LogUpdate(ctx, TableSampleTests, cur.ID, auditActor(actor), sampleTestFields(cur), sampleTestFields(updated), meta, "")
	})
	if err != nil {
		return models.SampleTest{}, err
	}
	metrics.GovernedMutations.WithLabelValues(TableSampleTests, "UPDATE").Inc()
	return out, nil
}

func (s *TestService) ListBySample(ctx context.Context, actor authz.Actor, sampleID string) ([]models.SampleTest, error) {
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceTest, nil); !d.Allowed {
		return nil, authz.Denied(actor, authz.ActionRead, authz.ResourceTest, d)
	}
	smp, err := s.store.Samples().GetByID(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	rec := &authz.Record{AssignedUserID: smp.AssignedUserID, ClientID: smp.ClientID}
	if d := authz.Evaluate(actor, authz.ActionRead, authz.ResourceTest, rec); !d.Allowed {
		return nil, authz.Denied(actor, authz.ActionRead, authz.ResourceTest, d)
	}
	return s.store.SampleTests().ListBySample(ctx, sampleID)
}
