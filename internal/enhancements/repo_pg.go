package enhancements

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const enhancementColumns = `id, user_id, resume_id, job_id, kind, style, industry, cover_letter, status, task_dir, docx_key, pdf_key, analysis, created_at, updated_at, completed_at, cover_letter_seen_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new enhancement.
func (r *PGRepo) Create(ctx context.Context, e Enhancement) error {
	const query = `
INSERT INTO enhancements (id, user_id, resume_id, job_id, kind, style, industry, cover_letter, status, task_dir, analysis, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

	var analysis any
	if e.Analysis != nil {
		payload, err := json.Marshal(e.Analysis)
		if err != nil {
			return fmt.Errorf("marshal analysis: %w", err)
		}
		analysis = payload
	}

	_, err := r.DB.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.ResumeID,
		nullableString(e.JobID),
		e.Kind,
		e.Style,
		nullableString(e.Industry),
		e.CoverLetter,
		e.Status,
		e.TaskDir,
		analysis,
		e.CreatedAt,
	)
	return err
}

// GetByID fetches an enhancement by ID regardless of owner.
func (r *PGRepo) GetByID(ctx context.Context, enhancementID string) (Enhancement, error) {
	const query = `
SELECT ` + enhancementColumns + `
FROM enhancements
WHERE id = $1
LIMIT 1`
	e, err := scanEnhancement(r.DB.QueryRowContext(ctx, query, enhancementID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enhancement{}, ErrNotFound
		}
		return Enhancement{}, err
	}
	return e, nil
}

// ListByUser lists enhancements ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Enhancement, error) {
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
SELECT ` + enhancementColumns + `
FROM enhancements
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnhancements(rows)
}

// ListByResume lists a user's enhancements derived from one resume, oldest
// first. Feeds the resume-delete cascade.
func (r *PGRepo) ListByResume(ctx context.Context, userID, resumeID string) ([]Enhancement, error) {
	const query = `
SELECT ` + enhancementColumns + `
FROM enhancements
WHERE user_id = $1 AND resume_id = $2
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, userID, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnhancements(rows)
}

// ListPending lists enhancements that still wait on at least one artifact,
// oldest first. Used by the background sweep.
func (r *PGRepo) ListPending(ctx context.Context, limit int) ([]Enhancement, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT ` + enhancementColumns + `
FROM enhancements
WHERE status = 'pending' OR (cover_letter AND cover_letter_seen_at IS NULL)
ORDER BY created_at ASC
LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnhancements(rows)
}

// MarkCompleted performs the only legal status transition. The WHERE clause is
// the race guard: of N concurrent callers exactly one sees rows-affected 1.
func (r *PGRepo) MarkCompleted(ctx context.Context, enhancementID string, at time.Time) (bool, error) {
	const query = `
UPDATE enhancements
SET status = 'completed', completed_at = $2, updated_at = $2
WHERE id = $1 AND status = 'pending'`
	res, err := r.DB.ExecContext(ctx, query, enhancementID, at)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}
	return false, r.exists(ctx, enhancementID)
}

// MarkCoverLetterSeen records the cover letter sighting once.
func (r *PGRepo) MarkCoverLetterSeen(ctx context.Context, enhancementID string, at time.Time) (bool, error) {
	const query = `
UPDATE enhancements
SET cover_letter_seen_at = $2, updated_at = $2
WHERE id = $1 AND cover_letter_seen_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, enhancementID, at)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}
	return false, r.exists(ctx, enhancementID)
}

// SetRenderedKey caches the path of a rendered artifact on the row.
func (r *PGRepo) SetRenderedKey(ctx context.Context, enhancementID, format, key string) error {
	var column string
	switch format {
	case FormatDocx:
		column = "docx_key"
	case FormatPDF:
		column = "pdf_key"
	default:
		return fmt.Errorf("%w: unknown rendered format %q", ErrInvalidInput, format)
	}
	query := `UPDATE enhancements SET ` + column + ` = $1, updated_at = now() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, key, enhancementID)
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

// Delete removes an enhancement row. Deleting an absent row is not an error.
func (r *PGRepo) Delete(ctx context.Context, enhancementID string) error {
	const query = `DELETE FROM enhancements WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, enhancementID)
	return err
}

// ClaimGuest reassigns enhancements owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE enhancements
SET user_id = $1, updated_at = now()
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

func (r *PGRepo) exists(ctx context.Context, enhancementID string) error {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM enhancements WHERE id = $1`, enhancementID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnhancement(row rowScanner) (Enhancement, error) {
	var e Enhancement
	var jobID, industry, docxKey, pdfKey sql.NullString
	var analysis []byte
	var completedAt, coverLetterSeenAt sql.NullTime
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.ResumeID,
		&jobID,
		&e.Kind,
		&e.Style,
		&industry,
		&e.CoverLetter,
		&e.Status,
		&e.TaskDir,
		&docxKey,
		&pdfKey,
		&analysis,
		&e.CreatedAt,
		&e.UpdatedAt,
		&completedAt,
		&coverLetterSeenAt,
	); err != nil {
		return Enhancement{}, err
	}
	if jobID.Valid {
		e.JobID = jobID.String
	}
	if industry.Valid {
		e.Industry = industry.String
	}
	if docxKey.Valid {
		e.DocxKey = docxKey.String
	}
	if pdfKey.Valid {
		e.PdfKey = pdfKey.String
	}
	if len(analysis) > 0 {
		var a Analysis
		if err := json.Unmarshal(analysis, &a); err == nil {
			e.Analysis = &a
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		e.CompletedAt = &t
	}
	if coverLetterSeenAt.Valid {
		t := coverLetterSeenAt.Time
		e.CoverLetterSeenAt = &t
	}
	return e, nil
}

func collectEnhancements(rows *sql.Rows) ([]Enhancement, error) {
	var out []Enhancement
	for rows.Next() {
		e, err := scanEnhancement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
