package audit

import (
	"context"
	"time"

	"github.com/ecelabs/lims-backend/internal/models"
)

// Filter narrows an audit query. Zero-valued fields are ignored; set fields
// combine with AND semantics. There is no default time window: leaving
// From/To unset queries the full history.
type Filter struct {
	Table    string
	RecordID string
	ActorID  string
	Action   models.AuditAction
	TxID     string
	From     *time.Time
	To       *time.Time
}

// Page is one page of query results, newest-first.
type Page struct {
	Entries []models.AuditEntry `json:"entries"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

// QueryStore is the read-side contract over persisted entries.
type QueryStore interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]models.AuditEntry, int, error)
}

const (
	defaultPerPage = 50
	maxPerPage     = 500
)

// Query is the read API over the audit trail. Read-only: no filter
// combination mutates state.
type Query struct {
	store QueryStore
}

func NewQuery(store QueryStore) *Query { return &Query{store: store} }

func (q *Query) Query(ctx context.Context, f Filter, page, perPage int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	entries, total, err := q.store.List(ctx, f, perPage, (page-1)*perPage)
	if err != nil {
		return Page{}, err
	}
	return Page{Entries: entries, Total: total, Page: page, PerPage: perPage}, nil
}

// Matches reports whether an entry satisfies the filter. Shared by the
// in-memory store; the Postgres store expresses the same predicate in SQL.
func (f Filter) Matches(e models.AuditEntry) bool {
	if f.Table != "" && e.Table != f.Table {
		return false
	}
	if f.RecordID != "" && e.RecordID != f.RecordID {
		return false
	}
	if f.ActorID != "" && e.ActorID != f.ActorID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.TxID != "" && e.TxID != f.TxID {
		return false
	}
	if f.From != nil && e.At.Before(*f.From) {
		return false
	}
	if f.To != nil && e.At.After(*f.To) {
		return false
	}
	return true
}
