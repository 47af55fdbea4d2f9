package services

import (
	"context"
	"testing"

	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/ecelabs/lims-backend/internal/repository/memory"
	"github.com/ecelabs/lims-backend/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWorkflow(t *testing.T) {
	store := memory.NewStore()
	wp := worker.NewPool(1)
	defer wp.Stop()
	svc := NewReportService(store, wp)
	smp := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: "c-1", Status: models.SampleCompleted})

	rep, err := svc.GenerateDraft(context.Background(), manager, testMeta, smp.ID, "Certificate of Analysis")
	require.NoError(t, err)
	assert.Equal(t, models.ReportDraft, rep.Status)
	assert.Equal(t, smp.ID, rep.SampleID)
	assert.Equal(t, "c-1", rep.ClientID)

	rep, err = svc.Finalize(context.Background(), manager, testMeta, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportFinal, rep.Status)

	rep, err = svc.Release(context.Background(), manager, testMeta, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportReleased, rep.Status)

	// One CREATE plus one UPDATE per transition.
	entries := store.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, models.AuditCreate, entries[0].Action)
	assert.Equal(t, models.AuditUpdate, entries[1].Action)
	assert.Equal(t, models.AuditUpdate, entries[2].Action)
	assert.Contains(t, entries[2].Changes, "status")
}

func TestReportReleaseRequiresFinal(t *testing.T) {
	store := memory.NewStore()
	svc := NewReportService(store, nil)
	smp := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: "c-1", Status: models.SampleCompleted})

	rep, err := svc.GenerateDraft(context.Background(), manager, testMeta, smp.ID, "CoA")
	require.NoError(t, err)

	_, err = svc.Release(context.Background(), manager, testMeta, rep.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is DRAFT, expected FINAL")

	// The failed transition leaves no audit trace beyond the draft creation.
	assert.Len(t, store.Entries(), 1)
}

func TestReportTransitionsDeniedForAnalyst(t *testing.T) {
	store := memory.NewStore()
	svc := NewReportService(store, nil)
	smp := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: "c-1", AssignedUserID: analyst.ID, Status: models.SampleCompleted})

	rep, err := svc.GenerateDraft(context.Background(), analyst, testMeta, smp.ID, "CoA")
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), analyst, testMeta, rep.ID)
	require.ErrorIs(t, err, authz.ErrDenied)
	_, err = svc.Release(context.Background(), analyst, testMeta, rep.ID)
	require.ErrorIs(t, err, authz.ErrDenied)
}

func TestReportDraftDeniedForUnassignedAnalyst(t *testing.T) {
	store := memory.NewStore()
	svc := NewReportService(store, nil)
	smp := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: "c-1", AssignedUserID: "an-2", Status: models.SampleCompleted})

	_, err := svc.GenerateDraft(context.Background(), analyst, testMeta, smp.ID, "CoA")
	require.ErrorIs(t, err, authz.ErrDenied)
	assert.Empty(t, store.Entries())
}

func TestReportClientVisibility(t *testing.T) {
	store := memory.NewStore()
	svc := NewReportService(store, nil)
	smp := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: client.ID, Status: models.SampleCompleted})

	rep, err := svc.GenerateDraft(context.Background(), manager, testMeta, smp.ID, "CoA")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), client, rep.ID)
	require.ErrorIs(t, err, authz.ErrDenied)

	_, err = svc.Finalize(context.Background(), manager, testMeta, rep.ID)
	require.NoError(t, err)
	_, err = svc.Release(context.Background(), manager, testMeta, rep.ID)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), client, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportReleased, got.Status)
}

func TestReportListScopesClientsToReleased(t *testing.T) {
	store := memory.NewStore()
	svc := NewReportService(store, nil)
	mine := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: client.ID, Status: models.SampleCompleted})
	other := seedSample(t, store, models.Sample{JobID: "j-2", ClientID: "c-2", Status: models.SampleCompleted})

	draft, err := svc.GenerateDraft(context.Background(), manager, testMeta, mine.ID, "draft")
	require.NoError(t, err)
	released, err := svc.GenerateDraft(context.Background(), manager, testMeta, mine.ID, "released")
	require.NoError(t, err)
	_, err = svc.GenerateDraft(context.Background(), manager, testMeta, other.ID, "foreign")
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), manager, testMeta, released.ID)
	require.NoError(t, err)
	_, err = svc.Release(context.Background(), manager, testMeta, released.ID)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), manager, repo.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	visible, err := svc.List(context.Background(), client, repo.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, released.ID, visible[0].ID)
	assert.NotEqual(t, draft.ID, visible[0].ID)
}
