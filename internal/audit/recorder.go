package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecelabs/lims-backend/internal/metrics"
	"github.com/ecelabs/lims-backend/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrImmutableEntry signals an attempt to alter a persisted audit entry.
	ErrImmutableEntry = errors.New("audit entries are immutable")
)

// Store is the append-only persistence contract for audit entries.
// No update or delete methods exist by design; the storage layer additionally
// rejects in-place mutation with a trigger.
type Store interface {
	Insert(ctx context.Context, e models.AuditEntry) error
}

// Actor identifies the initiator of a governed mutation.
type Actor struct {
	ID    string
	Email string
}

// Meta carries request-scoped context attached to every entry.
type Meta struct {
	IP        string
	UserAgent string
	Reason    string
}

// NewTransactionID returns a fresh grouping key. All entries written as part
// of one multi-record operation share it so they can be queried as one unit.
func NewTransactionID() string { return uuid.NewString() }

// Recorder builds and persists audit entries around governed mutations.
// It must run on a store bound to the same storage transaction as the
// mutation itself: a failed audit write aborts the whole operation.
type Recorder struct {
	store Store
	clock func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, clock: time.Now}
}

// LogCreate records a CREATE entry; every old value is nil.
func (r *Recorder) LogCreate(ctx context.Context, table, recordID string, actor Actor, newValues map[string]any, meta Meta, txID string) error {
	return r.persist(ctx, models.AuditCreate, table, recordID, actor, Diff(nil, newValues), meta, txID)
}

// LogUpdate records an UPDATE entry. If no field actually changed nothing is
// written: no-op updates deliberately produce no audit noise.
func (r *Recorder) LogUpdate(ctx context.Context, table, recordID string, actor Actor, oldValues, newValues map[string]any, meta Meta, txID string) error {
	changes := Diff(oldValues, newValues)
	if len(changes) == 0 {
		return nil
	}
	return r.persist(ctx, models.AuditUpdate, table, recordID, actor, changes, meta, txID)
}

// LogDelete records a DELETE entry; every new value is nil.
func (r *Recorder) LogDelete(ctx context.Context, table, recordID string, actor Actor, oldValues map[string]any, meta Meta, txID string) error {
	return r.persist(ctx, models.AuditDelete, table, recordID, actor, Diff(oldValues, nil), meta, txID)
}

func (r *Recorder) persist(ctx context.Context, action models.AuditAction, table, recordID string, actor Actor, changes map[string]models.FieldChange, meta Meta, txID string) error {
	e := models.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     action,
		Table:      table,
		RecordID:   recordID,
		Changes:    changes,
		Reason:     meta.Reason,
		TxID:       txID,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		Source:     models.AuditSourceApp,
		At:         r.clock().UTC(),
	}
	if err := r.store.Insert(ctx, e); err != nil {
		return fmt.Errorf("audit write %s %s/%s: %w", action, table, recordID, err)
	}
	metrics.AuditEntriesWritten.WithLabelValues(table, string(action)).Inc()
	return nil
}
