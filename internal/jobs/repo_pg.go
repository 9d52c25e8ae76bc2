package jobs

import (
	"context"
	"database/sql"
	"errors"
)

const jobColumns = `id, user_id, title, company, description, text_key, created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new job.
func (r *PGRepo) Create(ctx context.Context, j Job) error {
	const query = `
INSERT INTO jobs (id, user_id, title, company, description, text_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`
	var company sql.NullString
	if j.Company != "" {
		company = sql.NullString{String: j.Company, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		j.ID,
		j.UserID,
		j.Title,
		company,
		j.Description,
		j.TextKey,
		j.CreatedAt,
	)
	return err
}

// GetByID fetches a job by ID regardless of owner.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	const query = `
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1
LIMIT 1`
	j, err := scanJob(r.DB.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return j, nil
}

// ListByUser lists jobs ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + jobColumns + `
FROM jobs
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Delete removes a job row. Deleting an absent row is not an error.
func (r *PGRepo) Delete(ctx context.Context, jobID string) error {
	const query = `DELETE FROM jobs WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, jobID)
	return err
}

// ClaimGuest reassigns jobs owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE jobs
SET user_id = $1, updated_at = now()
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var company sql.NullString
	if err := row.Scan(
		&j.ID,
		&j.UserID,
		&j.Title,
		&company,
		&j.Description,
		&j.TextKey,
		&j.CreatedAt,
		&j.UpdatedAt,
	); err != nil {
		return Job{}, err
	}
	if company.Valid {
		j.Company = company.String
	}
	return j, nil
}

var _ Repo = (*PGRepo)(nil)
