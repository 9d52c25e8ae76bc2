package enhancements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateNullsOptionalColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	e := Enhancement{
		ID:          "enh-1",
		UserID:      "user-1",
		ResumeID:    "resume-1",
		Kind:        KindIndustryRevamp,
		Style:       "modern",
		Industry:    "software_engineering",
		CoverLetter: true,
		Status:      StatusPending,
		TaskDir:     "resumes/enhanced/enh-1",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO enhancements").
		WithArgs(
			e.ID,
			e.UserID,
			e.ResumeID,
			nil, // job_id
			e.Kind,
			e.Style,
			e.Industry,
			e.CoverLetter,
			e.Status,
			e.TaskDir,
			nil, // analysis
			e.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkCompletedRaceGuard(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE enhancements").
		WithArgs("enh-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.MarkCompleted(context.Background(), "enh-1", at)
	if err != nil {
		t.Fatalf("MarkCompleted winner: %v", err)
	}
	if !won {
		t.Fatalf("expected rows-affected 1 to report the win")
	}

	// Zero rows with an existing row is a benign lost race, not an error.
	mock.ExpectExec("UPDATE enhancements").
		WithArgs("enh-1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM enhancements").
		WithArgs("enh-1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	won, err = repo.MarkCompleted(context.Background(), "enh-1", at)
	if err != nil {
		t.Fatalf("MarkCompleted loser: %v", err)
	}
	if won {
		t.Fatalf("expected lost race to report false")
	}

	// Zero rows with no row at all is ErrNotFound.
	mock.ExpectExec("UPDATE enhancements").
		WithArgs("enh-missing", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM enhancements").
		WithArgs("enh-missing").
		WillReturnRows(sqlmock.NewRows([]string{"one"}))

	if _, err = repo.MarkCompleted(context.Background(), "enh-missing", at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListPendingScansNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Now().UTC().Truncate(time.Second)

	columns := []string{
		"id", "user_id", "resume_id", "job_id", "kind", "style", "industry",
		"cover_letter", "status", "task_dir", "docx_key", "pdf_key", "analysis",
		"created_at", "updated_at", "completed_at", "cover_letter_seen_at",
	}
	rows := sqlmock.NewRows(columns).AddRow(
		"enh-1", "user-1", "resume-1", nil, KindJobTailoring, "modern", nil,
		true, StatusPending, "resumes/enhanced/enh-1", nil, nil, nil,
		created, created, nil, nil,
	)
	mock.ExpectQuery("FROM enhancements").WithArgs(50).WillReturnRows(rows)

	list, err := repo.ListPending(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 row, got %d", len(list))
	}
	e := list[0]
	if e.JobID != "" || e.Industry != "" || e.DocxKey != "" || e.PdfKey != "" {
		t.Fatalf("expected NULL columns to scan as empty strings: %+v", e)
	}
	if e.CompletedAt != nil || e.CoverLetterSeenAt != nil {
		t.Fatalf("expected NULL timestamps to scan as nil")
	}
	if !e.CoverLetter || e.Status != StatusPending {
		t.Fatalf("unexpected row: %+v", e)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteMissingRowSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("DELETE FROM enhancements").
		WithArgs("enh-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "enh-gone"); err != nil {
		t.Fatalf("Delete of a missing row should succeed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
