package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"

	"enhancehub-backend/internal/extract"
	"enhancehub-backend/internal/shared/storage/object"
	"enhancehub-backend/internal/shared/telemetry"
	"enhancehub-backend/internal/workspace"
)

// DependentRemover deletes work derived from a resume together with its files.
type DependentRemover interface {
	DeleteByResume(ctx context.Context, userID, resumeID string) error
}

// Service contains business logic for resumes.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	Files *workspace.Workspace
	// Dependents cascades resume deletion into derived enhancements. Nil skips
	// the cascade.
	Dependents DependentRemover
}

// Upload extracts text from the uploaded file, archives the original in object
// storage, writes the text into the workspace and records the resume. A failed
// insert rolls back the workspace directory and the archived object so nothing
// exists without a row.
func (s *Service) Upload(ctx context.Context, userID, fileName, mimeType string, data []byte) (Resume, error) {
	if userID == "" {
		return Resume{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if strings.TrimSpace(fileName) == "" {
		return Resume{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}
	if len(data) == 0 {
		return Resume{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	text, err := extract.Text(ctx, data, mimeType, fileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return Resume{}, fmt.Errorf("%w: only PDF and DOCX uploads are supported", ErrInvalidInput)
		}
		return Resume{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Resume{}, fmt.Errorf("%w: no extractable text in file", ErrInvalidInput)
	}

	storageKey, size, detectedMime, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Resume{}, err
	}
	if mimeType == "" {
		mimeType = detectedMime
	}

	id := uuid.NewString()
	textKey := s.Files.ResumeTextPath(id)
	if err := s.Files.WriteFile(ctx, textKey, []byte(text)); err != nil {
		s.discardObject(storageKey)
		return Resume{}, err
	}

	now := time.Now().UTC()
	res := Resume{
		ID:               id,
		UserID:           userID,
		OriginalFilename: fileName,
		MimeType:         mimeType,
		SizeBytes:        size,
		StorageKey:       storageKey,
		TextKey:          textKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		if rbErr := s.Files.RemoveResumeDir(context.Background(), id); rbErr != nil {
			telemetry.Error("resume upload rollback failed", map[string]any{
				"resumeId": id,
				"error":    rbErr.Error(),
			})
		}
		s.discardObject(storageKey)
		return Resume{}, err
	}
	return res, nil
}

// discardObject removes an archived original during rollback, best effort.
// Rollback runs even when the request context is already canceled.
func (s *Service) discardObject(storageKey string) {
	if err := s.Store.Delete(context.Background(), storageKey); err != nil {
		telemetry.Warn("stored object removal failed", map[string]any{
			"storageKey": storageKey,
			"error":      err.Error(),
		})
	}
}

// Get returns a resume by ID. Resumes owned by other users are reported as
// absent so IDs cannot be probed.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if userID == "" || resumeID == "" {
		return Resume{}, ErrInvalidInput
	}
	res, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		return Resume{}, err
	}
	if res.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return res, nil
}

// List returns resumes for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// SetStyle records the preferred enhancement style. Changing someone else's
// resume is forbidden rather than hidden.
func (s *Service) SetStyle(ctx context.Context, userID, resumeID, style string) (Resume, error) {
	if userID == "" || resumeID == "" {
		return Resume{}, ErrInvalidInput
	}
	if !ValidStyle(style) {
		return Resume{}, fmt.Errorf("%w: style must be one of %s", ErrInvalidInput, StyleNames())
	}
	res, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		return Resume{}, err
	}
	if res.UserID != userID {
		return Resume{}, ErrForbidden
	}
	if err := s.Repo.SetStyle(ctx, resumeID, style); err != nil {
		return Resume{}, err
	}
	res.Style = style
	res.UpdatedAt = time.Now().UTC()
	return res, nil
}

// Text loads the extracted plain text for a resume the user owns. A recorded
// resume whose text file has gone missing is a storage fault, not a 404.
func (s *Service) Text(ctx context.Context, userID, resumeID string) (Resume, string, error) {
	res, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, "", err
	}
	data, found, err := s.Files.ReadIfPresent(ctx, res.TextKey)
	if err != nil {
		return Resume{}, "", err
	}
	if !found {
		return Resume{}, "", &workspace.StorageError{Op: "read", Path: res.TextKey, Err: fs.ErrNotExist}
	}
	return res, string(data), nil
}

// OpenOriginal streams the uploaded file as it was received. The caller closes
// the reader. Like Text, a recorded resume whose archived object is gone is a
// storage fault.
func (s *Service) OpenOriginal(ctx context.Context, userID, resumeID string) (Resume, io.ReadCloser, error) {
	res, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, nil, err
	}
	rc, err := s.Store.Open(ctx, res.StorageKey)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Resume{}, nil, &workspace.StorageError{Op: "open", Path: res.StorageKey, Err: fs.ErrNotExist}
		}
		return Resume{}, nil, err
	}
	return res, rc, nil
}

// Delete purges enhancements derived from the resume, then removes the row,
// the workspace directory and the archived original. A missing file is fine;
// a file that fails to delete is logged and left in place, since the row is
// already gone.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	if userID == "" || resumeID == "" {
		return ErrInvalidInput
	}
	res, err := s.Repo.GetByID(ctx, resumeID)
	if err != nil {
		return err
	}
	if res.UserID != userID {
		return ErrForbidden
	}
	if s.Dependents != nil {
		if err := s.Dependents.DeleteByResume(ctx, userID, resumeID); err != nil {
			return err
		}
	}
	if err := s.Repo.Delete(ctx, resumeID); err != nil {
		return err
	}
	if err := s.Files.RemoveResumeDir(ctx, resumeID); err != nil {
		telemetry.Warn("resume dir removal failed", map[string]any{
			"resumeId": resumeID,
			"error":    err.Error(),
		})
	}
	if err := s.Store.Delete(ctx, res.StorageKey); err != nil {
		telemetry.Warn("stored object removal failed", map[string]any{
			"resumeId": resumeID,
			"error":    err.Error(),
		})
	}
	return nil
}
