package services

import (
	"context"
	"testing"

	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/ecelabs/lims-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCreateAudited(t *testing.T) {
	store := memory.NewStore()
	svc := NewJobService(store)

	j, err := svc.Create(context.Background(), manager, testMeta, "c-1", "Quarterly effluent monitoring")
	require.NoError(t, err)
	assert.Equal(t, "open", j.Status)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, TableJobs, entries[0].Table)
	assert.Equal(t, models.AuditCreate, entries[0].Action)
	assert.Equal(t, "Quarterly effluent monitoring", entries[0].Changes["title"].New)
}

func TestJobCreateDeniedForClient(t *testing.T) {
	store := memory.NewStore()
	svc := NewJobService(store)

	_, err := svc.Create(context.Background(), client, testMeta, client.ID, "self-service job")
	require.ErrorIs(t, err, authz.ErrDenied)
	assert.Empty(t, store.Entries())
}

func TestJobGetClientOwnership(t *testing.T) {
	store := memory.NewStore()
	svc := NewJobService(store)

	mine, err := svc.Create(context.Background(), manager, testMeta, client.ID, "mine")
	require.NoError(t, err)
	foreign, err := svc.Create(context.Background(), manager, testMeta, "c-2", "foreign")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), client, mine.ID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), client, foreign.ID)
	require.ErrorIs(t, err, authz.ErrDenied)
}

func TestJobListScopedForClient(t *testing.T) {
	store := memory.NewStore()
	svc := NewJobService(store)

	_, err := svc.Create(context.Background(), manager, testMeta, client.ID, "mine")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), manager, testMeta, "c-2", "foreign")
	require.NoError(t, err)

	jobs, err := svc.List(context.Background(), client, repo.JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, client.ID, jobs[0].ClientID)
}
