package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"enhancehub-backend/internal/enhancements"
	"enhancehub-backend/internal/jobs"
	"enhancehub-backend/internal/resumes"
)

type Service struct {
	ResumeRepo      resumes.Repo
	JobRepo         jobs.Repo
	EnhancementRepo enhancements.Repo
}

type ClaimResult struct {
	MigratedResumes      int `json:"migratedResumes"`
	MigratedJobs         int `json:"migratedJobs"`
	MigratedEnhancements int `json:"migratedEnhancements"`
}

func NewService(resumeRepo resumes.Repo, jobRepo jobs.Repo, enhancementRepo enhancements.Repo) *Service {
	return &Service{ResumeRepo: resumeRepo, JobRepo: jobRepo, EnhancementRepo: enhancementRepo}
}

// ClaimGuest reassigns everything a guest created to the authenticated user.
// Workspace directories are keyed by record ID, not user, so only rows move.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if resumePG, ok := s.ResumeRepo.(*resumes.PGRepo); ok && resumePG != nil && resumePG.DB != nil {
		if _, ok := s.JobRepo.(*jobs.PGRepo); ok {
			if _, ok := s.EnhancementRepo.(*enhancements.PGRepo); ok {
				return claimWithTx(ctx, resumePG.DB, guestUserID, authedUserID)
			}
		}
	}

	resumeCount, err := s.ResumeRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	jobCount, err := s.JobRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	enhancementCount, err := s.EnhancementRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{
		MigratedResumes:      resumeCount,
		MigratedJobs:         jobCount,
		MigratedEnhancements: enhancementCount,
	}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	resumeRes, err := tx.ExecContext(ctx, `UPDATE resumes SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	resumeCount, _ := resumeRes.RowsAffected()

	jobRes, err := tx.ExecContext(ctx, `UPDATE jobs SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	jobCount, _ := jobRes.RowsAffected()

	enhancementRes, err := tx.ExecContext(ctx, `UPDATE enhancements SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	enhancementCount, _ := enhancementRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{
		MigratedResumes:      int(resumeCount),
		MigratedJobs:         int(jobCount),
		MigratedEnhancements: int(enhancementCount),
	}, nil
}
