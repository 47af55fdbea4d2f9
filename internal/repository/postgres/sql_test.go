package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDB records every statement without executing it, so the repo SQL can
// be checked for uuid/text mixing that Postgres rejects at parse or plan time:
// coalesce over a bare uuid column with '' fails in uuid_in, and comparing a
// uuid column against a text-typed placeholder fails with "operator does not
// exist: uuid = text".
type captureDB struct{ stmts []string }

func (d *captureDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	d.stmts = append(d.stmts, sql)
	return pgconn.CommandTag{}, nil
}

func (d *captureDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	d.stmts = append(d.stmts, sql)
	return nil, pgx.ErrNoRows
}

func (d *captureDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	d.stmts = append(d.stmts, sql)
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

// Optional filters arrive as text with '' meaning unset; the '' guard pins the
// placeholder to text, so the uuid column side must carry a ::text cast.
func assertNoBareUUIDFilter(t *testing.T, stmts []string, columns ...string) {
	t.Helper()
	for _, q := range stmts {
		for _, col := range columns {
			assert.NotContains(t, q, col+"=$", "uuid column %s compared to a text placeholder without a cast:\n%s", col, q)
			assert.NotContains(t, q, "coalesce("+col+",", "bare uuid column %s inside coalesce with '':\n%s", col, q)
		}
	}
}

func TestSampleStatementsKeepUUIDAndTextApart(t *testing.T) {
	db := &captureDB{}
	r := &samplesRepo{db: db}
	ctx := context.Background()

	_, _ = r.Create(ctx, models.Sample{JobID: "j-1", ClientID: "c-1"})
	_, _ = r.GetByID(ctx, "s-1")
	_, _ = r.Update(ctx, models.Sample{ID: "s-1"})
	_, _ = r.List(ctx, repo.SampleFilter{JobID: "j-1", ClientID: "c-1", AssignedUserID: "u-1"})
	require.Len(t, db.stmts, 4)

	// The nullable uuid column is written through an explicit ::uuid cast and
	// read back through ::text.
	assert.Contains(t, db.stmts[0], "NULLIF($4,'')::uuid")
	assert.Contains(t, db.stmts[0], "coalesce(assigned_user_id::text,'')")
	assert.Contains(t, db.stmts[2], "assigned_user_id=NULLIF($2,'')::uuid")

	list := db.stmts[3]
	assert.Contains(t, list, "job_id::text=$1")
	assert.Contains(t, list, "client_id::text=$2")
	assert.Contains(t, list, "assigned_user_id::text=$3")

	assertNoBareUUIDFilter(t, db.stmts, "job_id", "client_id", "assigned_user_id")
}

func TestJobStatementsKeepUUIDAndTextApart(t *testing.T) {
	db := &captureDB{}
	r := &jobsRepo{db: db}

	_, _ = r.List(context.Background(), repo.JobFilter{ClientID: "c-1"})
	require.Len(t, db.stmts, 1)

	assert.Contains(t, db.stmts[0], "client_id::text=$1")
	assertNoBareUUIDFilter(t, db.stmts, "client_id")
}

func TestReportStatementsKeepUUIDAndTextApart(t *testing.T) {
	db := &captureDB{}
	r := &reportsRepo{db: db}

	_, _ = r.List(context.Background(), repo.ReportFilter{SampleID: "s-1", ClientID: "c-1", AssignedUserID: "u-1"})
	require.Len(t, db.stmts, 1)

	list := db.stmts[0]
	assert.Contains(t, list, "r.sample_id::text=$1")
	assert.Contains(t, list, "r.client_id::text=$2")
	assert.Contains(t, list, "s.assigned_user_id::text=$3")
	assertNoBareUUIDFilter(t, db.stmts, "sample_id", "client_id", "assigned_user_id")
}

func TestNoOptionalFilterComparesUUIDColumnDirectly(t *testing.T) {
	// Walk every list statement the repos emit and make sure the
	// "($n='' OR col=$n)" shape never survives without a cast.
	db := &captureDB{}
	ctx := context.Background()
	_, _ = (&samplesRepo{db: db}).List(ctx, repo.SampleFilter{})
	_, _ = (&jobsRepo{db: db}).List(ctx, repo.JobFilter{})
	_, _ = (&reportsRepo{db: db}).List(ctx, repo.ReportFilter{})

	for _, q := range db.stmts {
		for _, clause := range strings.Split(q, "OR ") {
			if i := strings.Index(clause, "=$"); i > 0 && strings.Contains(clause[:i], "_id") {
				assert.Contains(t, clause[:i], "::text",
					"optional uuid filter without ::text cast:\n%s", q)
			}
		}
	}
}
