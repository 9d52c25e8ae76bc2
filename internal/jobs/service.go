package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"enhancehub-backend/internal/shared/telemetry"
	"enhancehub-backend/internal/workspace"
)

const maxDescriptionLen = 50_000

// Service contains business logic for jobs.
type Service struct {
	Repo  Repo
	Files *workspace.Workspace
}

// Create records the job and mirrors the posting text into the workspace so
// the generator can read it. The directory is rolled back if the insert fails.
func (s *Service) Create(ctx context.Context, userID, title, company, description string) (Job, error) {
	if userID == "" {
		return Job{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	title = strings.TrimSpace(title)
	company = strings.TrimSpace(company)
	description = strings.TrimSpace(description)
	if title == "" {
		return Job{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if description == "" {
		return Job{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if len(description) > maxDescriptionLen {
		return Job{}, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, maxDescriptionLen)
	}

	id := uuid.NewString()
	textKey := s.Files.JobTextPath(id)
	if err := s.Files.WriteFile(ctx, textKey, []byte(postingText(title, company, description))); err != nil {
		return Job{}, err
	}

	now := time.Now().UTC()
	j := Job{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Company:     company,
		Description: description,
		TextKey:     textKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, j); err != nil {
		if rbErr := s.Files.RemoveJobDir(context.Background(), id); rbErr != nil {
			telemetry.Error("job create rollback failed", map[string]any{
				"jobId": id,
				"error": rbErr.Error(),
			})
		}
		return Job{}, err
	}
	return j, nil
}

// Get returns a job by ID. Jobs owned by other users are reported as absent.
func (s *Service) Get(ctx context.Context, userID, jobID string) (Job, error) {
	if userID == "" || jobID == "" {
		return Job{}, ErrInvalidInput
	}
	j, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if j.UserID != userID {
		return Job{}, ErrNotFound
	}
	return j, nil
}

// List returns jobs for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes the job row and then its workspace directory.
func (s *Service) Delete(ctx context.Context, userID, jobID string) error {
	if userID == "" || jobID == "" {
		return ErrInvalidInput
	}
	j, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if j.UserID != userID {
		return ErrForbidden
	}
	if err := s.Repo.Delete(ctx, jobID); err != nil {
		return err
	}
	if err := s.Files.RemoveJobDir(ctx, jobID); err != nil {
		telemetry.Warn("job dir removal failed", map[string]any{
			"jobId": jobID,
			"error": err.Error(),
		})
	}
	return nil
}

func postingText(title, company, description string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if company != "" {
		b.WriteString(company)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(description)
	b.WriteString("\n")
	return b.String()
}
