package resumes

import (
	"context"
	"database/sql"
	"errors"
)

const resumeColumns = `id, user_id, original_filename, mime_type, size_bytes, storage_key, text_key, style, created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, original_filename, mime_type, size_bytes, storage_key, text_key, style, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
	var storageKey sql.NullString
	if res.StorageKey != "" {
		storageKey = sql.NullString{String: res.StorageKey, Valid: true}
	}
	var style sql.NullString
	if res.Style != "" {
		style = sql.NullString{String: res.Style, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.OriginalFilename,
		res.MimeType,
		res.SizeBytes,
		storageKey,
		res.TextKey,
		style,
		res.CreatedAt,
	)
	return err
}

// GetByID fetches a resume by ID regardless of owner.
func (r *PGRepo) GetByID(ctx context.Context, resumeID string) (Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1
LIMIT 1`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, resumeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListByUser lists resumes ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
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
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// SetStyle updates the preferred style for a resume.
func (r *PGRepo) SetStyle(ctx context.Context, resumeID, style string) error {
	const query = `
UPDATE resumes
SET style = $1, updated_at = now()
WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, style, resumeID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a resume row. Deleting an absent row is not an error.
func (r *PGRepo) Delete(ctx context.Context, resumeID string) error {
	const query = `DELETE FROM resumes WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, resumeID)
	return err
}

// ClaimGuest reassigns resumes owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE resumes
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

func scanResume(row rowScanner) (Resume, error) {
	var res Resume
	var storageKey sql.NullString
	var style sql.NullString
	if err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.OriginalFilename,
		&res.MimeType,
		&res.SizeBytes,
		&storageKey,
		&res.TextKey,
		&style,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return Resume{}, err
	}
	if storageKey.Valid {
		res.StorageKey = storageKey.String
	}
	if style.Valid {
		res.Style = style.String
	}
	return res, nil
}

var _ Repo = (*PGRepo)(nil)
