package postgres

import (
	"context"
	"fmt"

	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repo can run
// pool-scoped or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements repository.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	repos
}

type repos struct{ db DBTX }

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, repos: repos{db: pool}}
}

func (r repos) Users() repo.Users             { return &usersRepo{db: r.db} }
func (r repos) Jobs() repo.Jobs               { return &jobsRepo{db: r.db} }
func (r repos) Samples() repo.Samples         { return &samplesRepo{db: r.db} }
func (r repos) SampleTests() repo.SampleTests { return &sampleTestsRepo{db: r.db} }
func (r repos) Reports() repo.Reports         { return &reportsRepo{db: r.db} }
func (r repos) AuditLogs() repo.AuditLogs     { return &auditLogsRepo{db: r.db} }

// WithTx runs fn inside one serializable transaction and seeds the
// session-scoped actor variables the audit row trigger reads. set_config with
// is_local=true scopes the values to this transaction only, so concurrent
// requests on pooled connections cannot observe each other's actor.
func (s *Store) WithTx(ctx context.Context, sess repo.Session, fn func(tx repo.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := applySession(ctx, tx, sess); err != nil {
		return err
	}
	if err := fn(repos{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func applySession(ctx context.Context, tx pgx.Tx, s repo.Session) error {
	_, err := tx.Exec(ctx,
		`SELECT set_config('app.actor_id',$1,true),
		        set_config('app.actor_email',$2,true),
		        set_config('app.ip',$3,true),
		        set_config('app.user_agent',$4,true),
		        set_config('app.tx_id',$5,true)`,
		s.ActorID, s.ActorEmail, s.IP, s.UserAgent, s.TxID,
	)
	if err != nil {
		return fmt.Errorf("apply session context: %w", err)
	}
	return nil
}
