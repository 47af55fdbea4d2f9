package services

import (
	"github.com/ecelabs/lims-backend/internal/audit"
	"github.com/ecelabs/lims-backend/internal/authz"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
)

// Governed table names, shared by recorder calls and audit queries.
const (
	TableJobs        = "jobs"
	TableSamples     = "samples"
	TableSampleTests = "sample_tests"
	TableReports     = "reports"
	TableUsers       = "users"
)

// Field snapshots feed the differ. Timestamps managed by the storage layer
// (created_at/updated_at) are excluded: they change on every write and would
// only add noise next to the entry's own timestamp.

func sampleFields(s models.Sample) map[string]any {
	return map[string]any{
		"job_id":           s.JobID,
		"client_id":        s.ClientID,
		"assigned_user_id": s.AssignedUserID,
		"description":      s.Description,
		"matrix":           s.Matrix,
		"status":           s.Status,
	}
}

func sampleTestFields(t models.SampleTest) map[string]any {
	return map[string]any{
		"sample_id": t.SampleID,
		"method":    t.Method,
		"parameter": t.Parameter,
		"unit":      t.Unit,
		"result":    t.Result,
		"status":    t.Status,
	}
}

func reportFields(r models.Report) map[string]any {
	return map[string]any{
		"sample_id": r.SampleID,
		"client_id": r.ClientID,
		"title":     r.Title,
		"status":    r.Status,
	}
}

func jobFields(j models.Job) map[string]any {
	return map[string]any{
		"client_id": j.ClientID,
		"title":     j.Title,
		"status":    j.Status,
	}
}

func auditActor(a authz.Actor) audit.Actor {
	return audit.Actor{ID: a.ID, Email: a.Email}
}

func session(a authz.Actor, m audit.Meta, txID string) repo.Session {
	return repo.Session{
		ActorID:    a.ID,
		ActorEmail: a.Email,
		IP:         m.IP,
		UserAgent:  m.UserAgent,
		TxID:       txID,
	}
}
