package postgres

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/google/uuid"
)

type reportsRepo struct{ db DBTX }

const reportCols = `id, sample_id, client_id, title, status, created_at, updated_at`

func (r *reportsRepo) Create(ctx context.Context, rep models.Report) (models.Report, error) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO reports(id, sample_id, client_id, title, status)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING `+reportCols,
		rep.ID, rep.SampleID, rep.ClientID, rep.Title, rep.Status,
	).Scan(&rep.ID, &rep.SampleID, &rep.ClientID, &rep.Title, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}

func (r *reportsRepo) GetByID(ctx context.Context, id string) (models.Report, error) {
	var rep models.Report
	err := r.db.QueryRow(ctx,
		`SELECT `+reportCols+` FROM reports WHERE id=$1`, id,
	).Scan(&rep.ID, &rep.SampleID, &rep.ClientID, &rep.Title, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}

func (r *reportsRepo) Update(ctx context.Context, rep models.Report) (models.Report, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE reports SET title=$2, status=$3, updated_at=now() WHERE id=$1
		 RETURNING `+reportCols,
		rep.ID, rep.Title, rep.Status,
	).Scan(&rep.ID, &rep.SampleID, &rep.ClientID, &rep.Title, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}

func (r *reportsRepo) List(ctx context.Context, f repo.ReportFilter) ([]models.Report, error) {
	limit, offset := pageBounds(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.sample_id, r.client_id, r.title, r.status, r.created_at, r.updated_at
		   FROM reports r
		   JOIN samples s ON s.id = r.sample_id
		  WHERE ($1='' OR r.sample_id::text=$1)
		    AND ($2='' OR r.client_id::text=$2)
		    AND ($3='' OR s.assigned_user_id::text=$3)
		    AND (NOT $4 OR r.status='RELEASED')
		  ORDER BY r.created_at DESC
		  LIMIT $5 OFFSET $6`,
		f.SampleID, f.ClientID, f.AssignedUserID, f.ReleasedOnly, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.SampleID, &rep.ClientID, &rep.Title, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
