package postgres

import (
	"context"

	"github.com/ecelabs/lims-backend/internal/models"
	"github.com/google/uuid"
)

type sampleTestsRepo struct{ db DBTX }

const sampleTestCols = `id, sample_id, method, parameter, coalesce(unit,''), coalesce(result,''), status, created_at, updated_at`

func (r *sampleTestsRepo) Create(ctx context.Context, t models.SampleTest) (models.SampleTest, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO sample_tests(id, sample_id, method, parameter, unit, status)
		 VALUES($1,$2,$3,$4,NULLIF($5,''),$6)
		 RETURNING `+sampleTestCols,
		t.ID, t.SampleID, t.Method, t.Parameter, t.Unit, t.Status,
	).Scan(&t.ID, &t.SampleID, &t.Method, &t.Parameter, &t.Unit, &t.Result, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *sampleTestsRepo) GetByID(ctx context.Context, id string) (models.SampleTest, error) {
	var t models.SampleTest
	err := r.db.QueryRow(ctx,
		`SELECT `+sampleTestCols+` FROM sample_tests WHERE id=$1`, id,
	).Scan(&t.ID, &t.SampleID, &t.Method, &t.Parameter, &t.Unit, &t.Result, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *sampleTestsRepo) Update(ctx context.Context, t models.SampleTest) (models.SampleTest, error) {
	err := r.db.QueryRow(ctx,
		`UPDATE sample_tests
		    SET method=$2, parameter=$3, unit=NULLIF($4,''), result=NULLIF($5,''), status=$6, updated_at=now()
		  WHERE id=$1
		 RETURNING `+sampleTestCols,
		t.ID, t.Method, t.Parameter, t.Unit, t.Result, t.Status,
	).Scan(&t.ID, &t.SampleID, &t.Method, &t.Parameter, &t.Unit, &t.Result, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *sampleTestsRepo) ListBySample(ctx context.Context, sampleID string) ([]models.SampleTest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sampleTestCols+` FROM sample_tests WHERE sample_id=$1 ORDER BY created_at ASC`, sampleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SampleTest
	for rows.Next() {
		var t models.SampleTest
		if err := rows.Scan(&t.ID, &t.SampleID, &t.Method, &t.Parameter, &t.Unit, &t.Result, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
