package repository

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/models"
)

type Users interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type Jobs interface {
	Create(ctx context.Context, j models.Job) (models.Job, error)
	GetByID(ctx context.Context, id string) (models.Job, error)
	List(ctx context.Context, f JobFilter) ([]models.Job, error)
}

type Samples interface {
	Create(ctx context.Context, s models.Sample) (models.Sample, error)
	GetByID(ctx context.Context, id string) (models.Sample, error)
	Update(ctx context.Context, s models.Sample) (models.Sample, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f SampleFilter) ([]models.Sample, error)
}

type SampleTests interface {
	Create(ctx context.Context, t models.SampleTest) (models.SampleTest, error)
	GetByID(ctx context.Context, id string) (models.SampleTest, error)
	Update(ctx context.Context, t models.SampleTest) (models.SampleTest, error)
	ListBySample(ctx context.Context, sampleID string) ([]models.SampleTest, error)
}

type Reports interface {
	Create(ctx context.Context, r models.Report) (models.Report, error)
	GetByID(ctx context.Context, id string) (models.Report, error)
	Update(ctx context.Context, r models.Report) (models.Report, error)
	List(ctx context.Context, f ReportFilter) ([]models.Report, error)
}

// AuditLogs is append-only on the write side and filtered/paginated on the
// read side. There is deliberately no update or delete.
type AuditLogs interface {
	audit.Store
	audit.QueryStore
}

// List filters carry the row-level visibility scope derived by authz in
// addition to caller-supplied narrowing.
type JobFilter struct {
	ClientID      string
	Limit, Offset int
}

type SampleFilter struct {
	JobID          string
	ClientID       string
	AssignedUserID string
	Limit, Offset  int
}

type ReportFilter struct {
	SampleID       string
	ClientID       string
	AssignedUserID string
	ReleasedOnly   bool
	Limit, Offset  int
}

// Session is the per-transaction actor context handed to the storage layer
// so the row-trigger backstop can attribute entries without application help.
type Session struct {
	ActorID    string
	ActorEmail string
	IP         string
	UserAgent  string
	TxID       string
}

// Tx is the set of repositories bound to one unit of work.
type Tx interface {
	Users() Users
	Jobs() Jobs
	Samples() Samples
	SampleTests() SampleTests
	Reports() Reports
	AuditLogs() AuditLogs
}

// Store is the root persistence handle. Reads may run pool-scoped via the
// embedded Tx; every governed mutation must run inside WithTx so the business
// change, the recorder's audit write and the storage backstop commit or roll
// back as one.
type Store interface {
	Tx
	WithTx(ctx context.Context, s Session, fn func(tx Tx) error) error
}
