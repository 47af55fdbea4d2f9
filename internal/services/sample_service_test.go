package services

import (
	"context"
	"testing"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/ecelabs/lims-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	manager = authz.Actor{ID: "m-1", Email: "manager@lab.test", Role: authz.RoleLabManager}
	analyst = authz.Actor{ID: "an-1", Email: "analyst@lab.test", Role: authz.RoleAnalyst}
	client  = authz.Actor{ID: "c-1", Email: "client@acme.test", Role: authz.RoleClient}

	testMeta = audit.Meta{IP: "10.0.0.9", UserAgent: "go-test"}
)

func seedSample(t *testing.T, store *memory.Store, smp models.Sample) models.Sample {
	t.Helper()
	created, err := store.Samples().Create(context.Background(), smp)
	require.NoError(t, err)
	return created
}

func TestSampleCreateWritesAuditEntry(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)

	smp, err := svc.Create(context.Background(), manager, testMeta, CreateSampleInput{
		JobID: "j-1", ClientID: "c-1", Description: "inlet water", Matrix: "water",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SampleReceived, smp.Status)

	entries := store.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, models.AuditCreate, e.Action)
	assert.Equal(t, TableSamples, e.Table)
	assert.Equal(t, smp.ID, e.RecordID)
	assert.Equal(t, manager.ID, e.ActorID)
	assert.Equal(t, "10.0.0.9", e.IP)
	assert.Equal(t, models.AuditSourceApp, e.Source)
	for field, ch := range e.Changes {
		assert.Nil(t, ch.Old, field)
	}
	assert.Equal(t, "water", e.Changes["matrix"].New)
}

func TestSampleCreateHandsSessionToStorage(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)

	_, err := svc.Create(context.Background(), manager, testMeta, CreateSampleInput{
		JobID: "j-1", ClientID: "c-1", Description: "x",
	})
	require.NoError(t, err)

	// The session context rides the transaction so the row-trigger backstop
	// can attribute its own entries to the same actor.
	require.Len(t, store.Sessions, 1)
	sess := store.Sessions[0]
	assert.Equal(t, manager.ID, sess.ActorID)
	assert.Equal(t, manager.Email, sess.ActorEmail)
	assert.Equal(t, testMeta.IP, sess.IP)
	assert.Equal(t, testMeta.UserAgent, sess.UserAgent)
}

func TestSampleUpdateRecordsOnlyChangedFields(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	smp := seedSample(t, store, models.Sample{
		JobID: "j-1", ClientID: "c-1", Description: "inlet", Matrix: "water",
		Status: models.SampleReceived,
	})

	_, err := svc.Update(context.Background(), manager, testMeta, smp.ID, UpdateSampleInput{
		Description: "inlet",
		Matrix:      "water",
		Status:      models.SampleInTesting,
		Reason:      "analysis started",
	})
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, models.AuditUpdate, e.Action)
	assert.Equal(t, "analysis started", e.Reason)
	require.Len(t, e.Changes, 1)
	assert.Contains(t, e.Changes, "status")
}

func TestSampleNoOpUpdateWritesNothing(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	smp := seedSample(t, store, models.Sample{
		JobID: "j-1", ClientID: "c-1", Description: "inlet", Matrix: "water",
		Status: models.SampleReceived,
	})

	_, err := svc.Update(context.Background(), manager, testMeta, smp.ID, UpdateSampleInput{
		Description: "inlet", Matrix: "water",
	})
	require.NoError(t, err)
	assert.Empty(t, store.Entries())
}

func TestSampleUpdateDeniedForUnassignedAnalyst(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	smp := seedSample(t, store, models.Sample{
		JobID: "j-1", ClientID: "c-1", AssignedUserID: "an-2",
		Description: "inlet", Status: models.SampleReceived,
	})

	_, err := svc.Update(context.Background(), analyst, testMeta, smp.ID, UpdateSampleInput{
		Description: "tampered",
	})
	require.ErrorIs(t, err, authz.ErrDenied)

	// Denial inside the transaction rolls back: no mutation, no audit entry.
	cur, err := store.Samples().GetByID(context.Background(), smp.ID)
	require.NoError(t, err)
	assert.Equal(t, "inlet", cur.Description)
	assert.Empty(t, store.Entries())
}

func TestSampleUpdateAllowedForAssignedAnalyst(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	smp := seedSample(t, store, models.Sample{
		JobID: "j-1", ClientID: "c-1", AssignedUserID: analyst.ID,
		Description: "inlet", Status: models.SampleReceived,
	})

	updated, err := svc.Update(context.Background(), analyst, testMeta, smp.ID, UpdateSampleInput{
		Description: "inlet", Status: models.SampleInTesting,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SampleInTesting, updated.Status)
	assert.Len(t, store.Entries(), 1)
}

func TestSampleDeleteWritesDeleteEntry(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	smp := seedSample(t, store, models.Sample{
		JobID: "j-1", ClientID: "c-1", Description: "inlet", Status: models.SampleReceived,
	})

	require.NoError(t, svc.Delete(context.Background(), manager, testMeta, smp.ID, "client withdrew order"))

	entries := store.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, models.AuditDelete, e.Action)
	assert.Equal(t, "client withdrew order", e.Reason)
	for field, ch := range e.Changes {
		assert.Nil(t, ch.New, field)
	}
	assert.Equal(t, "inlet", e.Changes["description"].Old)
}

func TestSampleDeleteDeniedForAnalyst(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	smp := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: "c-1", Status: models.SampleReceived})

	err := svc.Delete(context.Background(), analyst, testMeta, smp.ID, "")
	require.ErrorIs(t, err, authz.ErrDenied)
	assert.Empty(t, store.Entries())
}

func TestSampleGetClientOwnership(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	mine := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: client.ID, Status: models.SampleReceived})
	foreign := seedSample(t, store, models.Sample{JobID: "j-2", ClientID: "c-2", Status: models.SampleReceived})

	_, err := svc.Get(context.Background(), client, mine.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), client, foreign.ID)
	require.ErrorIs(t, err, authz.ErrDenied)
}

func TestSampleListNarrowsByScope(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	seedSample(t, store, models.Sample{JobID: "j-1", ClientID: client.ID, Status: models.SampleReceived})
	seedSample(t, store, models.Sample{JobID: "j-2", ClientID: "c-2", AssignedUserID: analyst.ID, Status: models.SampleReceived})

	all, err := svc.List(context.Background(), manager, repo.SampleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	forClient, err := svc.List(context.Background(), client, repo.SampleFilter{})
	require.NoError(t, err)
	require.Len(t, forClient, 1)
	assert.Equal(t, client.ID, forClient[0].ClientID)

	forAnalyst, err := svc.List(context.Background(), analyst, repo.SampleFilter{})
	require.NoError(t, err)
	require.Len(t, forAnalyst, 1)
	assert.Equal(t, analyst.ID, forAnalyst[0].AssignedUserID)
}

func TestSampleAssignRestrictedToManagement(t *testing.T) {
	store := memory.NewStore()
	svc := NewSampleService(store)
	smp := seedSample(t, store, models.Sample{JobID: "j-1", ClientID: "c-1", Status: models.SampleReceived})

	_, err := svc.Assign(context.Background(), analyst, testMeta, smp.ID, analyst.ID)
	require.ErrorIs(t, err, authz.ErrDenied)

	updated, err := svc.Assign(context.Background(), manager, testMeta, smp.ID, analyst.ID)
	require.NoError(t, err)
	assert.Equal(t, analyst.ID, updated.AssignedUserID)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Changes, "assigned_user_id")
}
