package services

import (
	"context"
	"testing"
	"time"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/auth"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/models"
	"github.com/ecelabs/lims-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditQueryGatedByRole(t *testing.T) {
	store := memory.NewStore()
	svc := NewAuditService(store)

	_, err := svc.Query(context.Background(), analyst, audit.Filter{}, 1, 50)
	require.ErrorIs(t, err, authz.ErrDenied)
	_, err = svc.Query(context.Background(), client, audit.Filter{}, 1, 50)
	require.ErrorIs(t, err, authz.ErrDenied)

	_, err = svc.Query(context.Background(), manager, audit.Filter{}, 1, 50)
	require.NoError(t, err)
}

func TestAuditQueryByTxIDReturnsWholeBatch(t *testing.T) {
	store := memory.NewStore()
	tests := NewTestService(store)
	samples := NewSampleService(store)
	auditSvc := NewAuditService(store)

	smp, err := samples.Create(context.Background(), manager, testMeta, CreateSampleInput{
		JobID: "j-1", ClientID: "c-1", Description: "inlet",
	})
	require.NoError(t, err)

	_, txID, err := tests.AddTestPack(context.Background(), manager, testMeta, smp.ID, sixTestPack())
	require.NoError(t, err)

	page, err := auditSvc.Query(context.Background(), manager, audit.Filter{TxID: txID}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	for _, e := range page.Entries {
		assert.Equal(t, txID, e.TxID)
		assert.Equal(t, TableSampleTests, e.Table)
	}

	// The sample's own CREATE entry sits outside the batch.
	byRecord, err := auditSvc.Query(context.Background(), manager, audit.Filter{Table: TableSamples, RecordID: smp.ID}, 1, 50)
	require.NoError(t, err)
	require.Equal(t, 1, byRecord.Total)
	assert.Equal(t, models.AuditCreate, byRecord.Entries[0].Action)
}

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("access-secret", "refresh-secret", "lims-test", time.Minute, time.Hour)
}

func TestUserRegisterAndLogin(t *testing.T) {
	store := memory.NewStore()
	svc := NewUserService(store, testTokenManager())

	u, err := svc.Register(context.Background(), "bkaya", "bkaya@lab.test", "s3cret-pass", string(authz.RoleLabManager))
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	access, refresh, err := svc.Login(context.Background(), "bkaya@lab.test", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	_, _, err = svc.Login(context.Background(), "bkaya@lab.test", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "nobody@lab.test", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
