// Package memory implements repository.Store on in-process maps. It backs
// unit tests; transactional atomicity is approximated with a store-wide
// mutex, and the audit log enforces the same append-only contract as the
// Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Store struct {
	mu      sync.Mutex
	users   map[string]models.User
	jobs    map[string]models.Job
	samples map[string]models.Sample
	tests   map[string]models.SampleTest
	reports map[string]models.Report
	entries []models.AuditEntry
	byID    map[string]struct{}

	// Sessions records every session context handed to WithTx, in order.
	// Tests assert on it to verify the backstop handoff.
	Sessions []repo.Session
}

func NewStore() *Store {
	return &Store{
		users:   map[string]models.User{},
		jobs:    map[string]models.Job{},
		samples: map[string]models.Sample{},
		tests:   map[string]models.SampleTest{},
		reports: map[string]models.Report{},
		byID:    map[string]struct{}{},
	}
}

func (s *Store) Users() repo.Users             { return (*usersRepo)(s) }
func (s *Store) Jobs() repo.Jobs               { return (*jobsRepo)(s) }
func (s *Store) Samples() repo.Samples         { return (*samplesRepo)(s) }
func (s *Store) SampleTests() repo.SampleTests { return (*sampleTestsRepo)(s) }
func (s *Store) Reports() repo.Reports         { return (*reportsRepo)(s) }
func (s *Store) AuditLogs() repo.AuditLogs     { return (*auditLogsRepo)(s) }

// WithTx snapshots state, runs fn, and restores the snapshot on error so a
// failed unit of work leaves no partial record or audit state.
func (s *Store) WithTx(ctx context.Context, sess repo.Session, fn func(tx repo.Tx) error) error {
	s.mu.Lock()
	s.Sessions = append(s.Sessions, sess)
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type snapshot struct {
	users   map[string]models.User
	jobs    map[string]models.Job
	samples map[string]models.Sample
	tests   map[string]models.SampleTest
	reports map[string]models.Report
	entries []models.AuditEntry
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		users:   copyMap(s.users),
		jobs:    copyMap(s.jobs),
		samples: copyMap(s.samples),
		tests:   copyMap(s.tests),
		reports: copyMap(s.reports),
		entries: append([]models.AuditEntry(nil), s.entries...),
	}
}

func (s *Store) restore(sn snapshot) {
	s.users, s.jobs, s.samples, s.tests, s.reports = sn.users, sn.jobs, sn.samples, sn.tests, sn.reports
	s.entries = sn.entries
	s.byID = map[string]struct{}{}
	for _, e := range s.entries {
		s.byID[e.ID] = struct{}{}
	}
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ---- audit log ----

type auditLogsRepo Store

func (r *auditLogsRepo) Insert(ctx context.Context, e models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[e.ID]; exists {
		return audit.ErrImmutableEntry
	}
	r.byID[e.ID] = struct{}{}
	r.entries = append(r.entries, e)
	return nil
}

func (r *auditLogsRepo) List(ctx context.Context, f audit.Filter, limit, offset int) ([]models.AuditEntry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.AuditEntry
	for _, e := range r.entries {
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].At.After(matched[j].At)
	})
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return append([]models.AuditEntry(nil), matched[offset:end]...), total, nil
}

// Entries returns a copy of everything persisted, oldest-first.
func (s *Store) Entries() []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.entries...)
}

// ---- users ----

type usersRepo Store

func (r *usersRepo) Create(ctx context.Context, username, email, hash, role string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := models.User{
		ID: uuid.NewString(), Username: username, Email: email,
		PasswordHash: hash, Role: role,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, pgx.ErrNoRows
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

// ---- jobs ----

type jobsRepo Store

func (r *jobsRepo) Create(ctx context.Context, j models.Job) (models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.CreatedAt, j.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	r.jobs[j.ID] = j
	return j, nil
}

func (r *jobsRepo) GetByID(ctx context.Context, id string) (models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return models.Job{}, pgx.ErrNoRows
	}
	return j, nil
}

func (r *jobsRepo) List(ctx context.Context, f repo.JobFilter) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Job
	for _, j := range r.jobs {
		if f.ClientID != "" && j.ClientID != f.ClientID {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

// ---- samples ----

type samplesRepo Store

func (r *samplesRepo) Create(ctx context.Context, smp models.Sample) (models.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if smp.ID == "" {
		smp.ID = uuid.NewString()
	}
	smp.CreatedAt, smp.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	r.samples[smp.ID] = smp
	return smp, nil
}

func (r *samplesRepo) GetByID(ctx context.Context, id string) (models.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	smp, ok := r.samples[id]
	if !ok {
		return models.Sample{}, pgx.ErrNoRows
	}
	return smp, nil
}

func (r *samplesRepo) Update(ctx context.Context, smp models.Sample) (models.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.samples[smp.ID]
	if !ok {
		return models.Sample{}, pgx.ErrNoRows
	}
	smp.JobID, smp.ClientID, smp.CreatedAt = cur.JobID, cur.ClientID, cur.CreatedAt
	smp.UpdatedAt = time.Now().UTC()
	r.samples[smp.ID] = smp
	return smp, nil
}

func (r *samplesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.samples, id)
	return nil
}

func (r *samplesRepo) List(ctx context.Context, f repo.SampleFilter) ([]models.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Sample
	for _, smp := range r.samples {
		if f.JobID != "" && smp.JobID != f.JobID {
			continue
		}
		if f.ClientID != "" && smp.ClientID != f.ClientID {
			continue
		}
		if f.AssignedUserID != "" && smp.AssignedUserID != f.AssignedUserID {
			continue
		}
		out = append(out, smp)
	}
	return out, nil
}

// ---- sample tests ----

type sampleTestsRepo Store

func (r *sampleTestsRepo) Create(ctx context.Context, t models.SampleTest) (models.SampleTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt, t.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	r.tests[t.ID] = t
	return t, nil
}

func (r *sampleTestsRepo) GetByID(ctx context.Context, id string) (models.SampleTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return models.SampleTest{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *sampleTestsRepo) Update(ctx context.Context, t models.SampleTest) (models.SampleTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.tests[t.ID]
	if !ok {
		return models.SampleTest{}, pgx.ErrNoRows
	}
	t.SampleID, t.CreatedAt = cur.SampleID, cur.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	r.tests[t.ID] = t
	return t, nil
}

func (r *sampleTestsRepo) ListBySample(ctx context.Context, sampleID string) ([]models.SampleTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SampleTest
	for _, t := range r.tests {
		if t.SampleID == sampleID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- reports ----

type reportsRepo Store

func (r *reportsRepo) Create(ctx context.Context, rep models.Report) (models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	rep.CreatedAt, rep.UpdatedAt = time.Now().UTC(), time.Now().UTC()
	r.reports[rep.ID] = rep
	return rep, nil
}

func (r *reportsRepo) GetByID(ctx context.Context, id string) (models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return models.Report{}, pgx.ErrNoRows
	}
	return rep, nil
}

func (r *reportsRepo) Update(ctx context.Context, rep models.Report) (models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.reports[rep.ID]
	if !ok {
		return models.Report{}, pgx.ErrNoRows
	}
	rep.SampleID, rep.ClientID, rep.CreatedAt = cur.SampleID, cur.ClientID, cur.CreatedAt
	rep.UpdatedAt = time.Now().UTC()
	r.reports[rep.ID] = rep
	return rep, nil
}

func (r *reportsRepo) List(ctx context.Context, f repo.ReportFilter) ([]models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Report
	for _, rep := range r.reports {
		if f.SampleID != "" && rep.SampleID != f.SampleID {
			continue
		}
		if f.ClientID != "" && rep.ClientID != f.ClientID {
			continue
		}
		if f.AssignedUserID != "" {
			smp, ok := r.samples[rep.SampleID]
			if !ok || smp.AssignedUserID != f.AssignedUserID {
				continue
			}
		}
		if f.ReleasedOnly && rep.Status != models.ReportReleased {
			continue
		}
		out = append(out, rep)
	}
	return out, nil
}
