package postgres

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
	"github.com/google/uuid"
)

type samplesRepo struct{ db DBTX }

// assigned_user_id is a nullable uuid column; it is read back through ::text
// and written through ::uuid so the empty-string "unset" convention on the Go
// side never meets uuid_in.
const sampleCols = `id, job_id, client_id, coalesce(assigned_user_id::text,''), description, coalesce(matrix,''), status, created_at, updated_at`

func (r *samplesRepo) Create(ctx context.Context, s models.Sample) (models.Sample, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO samples(id, job_id, client_id, assigned_user_id, description, matrix, status)
		 VALUES($1,$2,$3,NULLIF($4,'')::uuid,$5,NULLIF($6,''),$7)
		 RETURNING `+sampleCols,
		s.ID, s.JobID, s.ClientID, s.AssignedUserID, s.Description, s.Matrix, s.Status,
	).Scan(&s.ID, &s.JobID, &s.ClientID, &s.AssignedUserID, &s.Description, &s.Matrix, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *samplesRepo) GetByID(ctx context.Context, id string) (models.Sample, error) {
	var s models.Sample
	err := r.db.QueryRow(ctx,
		`SELECT `+sampleCols+` FROM samples WHERE id=$1`, id,
	).Scan(&s.ID, &s.JobID, &s.ClientID, &s.AssignedUserID, &s.Description, &s.Matrix, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *samplesRepo) Update(ctx context.Context, s models.Sample) (models.Sample, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE samples
		    SET assigned_user_id=NULLIF($2,'')::uuid, description=$3, matrix=NULLIF($4,''), status=$5, updated_at=now()
		  WHERE id=$1
		 RETURNING `+sampleCols,
		s.ID, s.AssignedUserID, s.Description, s.Matrix, s.Status,
	).Scan(&s.ID, &s.JobID, &s.ClientID, &s.AssignedUserID, &s.Description, &s.Matrix, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *samplesRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM samples WHERE id=$1`, id)
	return err
}

func (r *samplesRepo) List(ctx context.Context, f repo.SampleFilter) ([]models.Sample, error) {
	limit, offset := pageBounds(f.Limit, f.Offset)
	// The optional filters arrive as text ('' means unset); comparing them
	// against the uuid columns directly would make Postgres resolve uuid=text,
	// so the columns are cast for the comparison instead.
	rows, err := r.db.Query(ctx,
		`SELECT `+sampleCols+`
		   FROM samples
		  WHERE ($1='' OR job_id::text=$1)
		    AND ($2='' OR client_id::text=$2)
		    AND ($3='' OR assigned_user_id::text=$3)
		  ORDER BY created_at DESC
		  LIMIT $4 OFFSET $5`,
		f.JobID, f.ClientID, f.AssignedUserID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Sample
	for rows.Next() {
		var s models.Sample
		if err := rows.Scan(&s.ID, &s.JobID, &s.ClientID, &s.AssignedUserID, &s.Description, &s.Matrix, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
