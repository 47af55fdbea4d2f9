package postgres

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/google/uuid"
)

type jobsRepo struct{ db DBTX }

func (r *jobsRepo) Create(ctx context.Context, j models.Job) (models.Job, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO jobs(id, client_id, title, status) VALUES($1,$2,$3,$4)
		 RETURNING id, client_id, title, status, created_at, updated_at`,
		j.ID, j.ClientID, j.Title, j.Status,
	).Scan(&j.ID, &j.ClientID, &j.Title, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r *jobsRepo) GetByID(ctx context.Context, id string) (models.Job, error) {
	var j models.Job
	err := r.db.QueryRow(ctx,
		`SELECT id, client_id, title, status, created_at, updated_at FROM jobs WHERE id=$1`, id,
	).Scan(&j.ID, &j.ClientID, &j.Title, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r *jobsRepo) List(ctx context.Context, f repo.JobFilter) ([]models.Job, error) {
	limit, offset := pageBounds(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT id, client_id, title, status, created_at, updated_at
		   FROM jobs
		  WHERE ($1='' OR client_id::text=$1)
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		f.ClientID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.ClientID, &j.Title, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
