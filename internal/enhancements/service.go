package enhancements

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"

	"enhancehub-backend/internal/jobs"
	"enhancehub-backend/internal/render"
	"enhancehub-backend/internal/resumes"
	"enhancehub-backend/internal/shared/metrics"
	"enhancehub-backend/internal/shared/telemetry"
	"enhancehub-backend/internal/usage"
	"enhancehub-backend/internal/workspace"
)

const (
	ArtifactResume      = "resume"
	ArtifactCoverLetter = "cover_letter"

	FormatMarkdown = "md"
	FormatDocx     = "docx"
	FormatPDF      = "pdf"
)

// ResumeSource loads resume records and their extracted text.
type ResumeSource interface {
	Text(ctx context.Context, userID, resumeID string) (resumes.Resume, string, error)
}

// JobSource loads job records.
type JobSource interface {
	Get(ctx context.Context, userID, jobID string) (jobs.Job, error)
}

// Service contains business logic for enhancements.
type Service struct {
	Repo    Repo
	Resumes ResumeSource
	Jobs    JobSource
	Usage   *usage.Service
	Files   *workspace.Workspace
	Printer *render.PDFPrinter

	limiter *probeLimiter
}

// SetProbeThrottle sets the minimum interval between filesystem checks per
// enhancement. Zero or negative disables throttling; the default is off.
func (s *Service) SetProbeThrottle(window time.Duration) {
	s.limiter = newProbeLimiter(window, nil)
}

// CreateInput carries the request to create an enhancement.
type CreateInput struct {
	ResumeID    string
	JobID       string
	Kind        string
	Industry    string
	CoverLetter bool
}

// Create validates the request, writes the instruction file into a fresh task
// directory and records the enhancement as pending. Creation is orphan-free:
// a failed instruction write removes the directory and inserts nothing; a
// failed insert removes the directory.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Enhancement, error) {
	if userID == "" {
		return Enhancement{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if in.ResumeID == "" {
		return Enhancement{}, fmt.Errorf("%w: resumeId is required", ErrInvalidInput)
	}
	if !ValidKind(in.Kind) {
		return Enhancement{}, fmt.Errorf("%w: kind must be %s or %s", ErrInvalidInput, KindJobTailoring, KindIndustryRevamp)
	}

	var jobText string
	switch in.Kind {
	case KindJobTailoring:
		if in.JobID == "" {
			return Enhancement{}, fmt.Errorf("%w: jobId is required for %s", ErrInvalidInput, KindJobTailoring)
		}
		if in.Industry != "" {
			return Enhancement{}, fmt.Errorf("%w: industry is only valid for %s", ErrInvalidInput, KindIndustryRevamp)
		}
	case KindIndustryRevamp:
		if in.JobID != "" {
			return Enhancement{}, fmt.Errorf("%w: jobId is only valid for %s", ErrInvalidInput, KindJobTailoring)
		}
		if _, ok := IndustryByName(in.Industry); !ok {
			return Enhancement{}, fmt.Errorf("%w: industry must be one of %s", ErrInvalidInput, IndustryNames())
		}
	}

	res, resumeText, err := s.Resumes.Text(ctx, userID, in.ResumeID)
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrNotFound):
			return Enhancement{}, fmt.Errorf("resume %s: %w", in.ResumeID, ErrNotFound)
		case errors.Is(err, resumes.ErrInvalidInput):
			return Enhancement{}, fmt.Errorf("%w: bad resume reference", ErrInvalidInput)
		default:
			return Enhancement{}, err
		}
	}
	if res.Style == "" {
		return Enhancement{}, fmt.Errorf("%w: choose a style for the resume first", ErrInvalidInput)
	}

	if in.Kind == KindJobTailoring {
		job, err := s.Jobs.Get(ctx, userID, in.JobID)
		if err != nil {
			switch {
			case errors.Is(err, jobs.ErrNotFound):
				return Enhancement{}, fmt.Errorf("job %s: %w", in.JobID, ErrNotFound)
			case errors.Is(err, jobs.ErrInvalidInput):
				return Enhancement{}, fmt.Errorf("%w: bad job reference", ErrInvalidInput)
			default:
				return Enhancement{}, err
			}
		}
		jobText = job.Description
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Enhancement{}, err
		}
		if !ok {
			return Enhancement{}, usage.ErrLimitReached
		}
	}

	now := time.Now().UTC()
	e := Enhancement{
		ID:          uuid.NewString(),
		UserID:      userID,
		ResumeID:    in.ResumeID,
		JobID:       in.JobID,
		Kind:        in.Kind,
		Style:       res.Style,
		Industry:    in.Industry,
		CoverLetter: in.CoverLetter,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	instructions, err := BuildInstructions(e, resumeText, jobText)
	if err != nil {
		return Enhancement{}, err
	}

	taskDir, err := s.Files.AllocTaskDir(ctx, e.ID)
	if err != nil {
		return Enhancement{}, err
	}
	e.TaskDir = taskDir
	if err := s.Files.WriteFile(ctx, s.Files.InstructionsPath(e.ID), instructions); err != nil {
		s.rollbackTaskDir(e.ID, "instruction write")
		return Enhancement{}, err
	}

	switch in.Kind {
	case KindJobTailoring:
		a := AnalyzeJob(resumeText, jobText)
		e.Analysis = &a
	case KindIndustryRevamp:
		profile, _ := IndustryByName(in.Industry)
		a := AnalyzeIndustry(resumeText, profile)
		e.Analysis = &a
	}

	if err := s.Repo.Create(ctx, e); err != nil {
		s.rollbackTaskDir(e.ID, "row insert")
		return Enhancement{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil && !errors.Is(err, usage.ErrLimitReached) {
			telemetry.Warn("usage consume failed", map[string]any{
				"enhancement_id": e.ID,
				"error":          err.Error(),
			})
		}
	}

	metrics.IncEnhancementRequested()
	telemetry.Info("enhancement.created", map[string]any{
		"enhancement_id": e.ID,
		"user_id":        userID,
		"kind":           e.Kind,
		"cover_letter":   e.CoverLetter,
	})
	return e, nil
}

func (s *Service) rollbackTaskDir(enhancementID, stage string) {
	if err := s.Files.RemoveTaskDir(context.Background(), enhancementID); err != nil {
		telemetry.Error("enhancement rollback failed", map[string]any{
			"enhancement_id": enhancementID,
			"stage":          stage,
			"error":          err.Error(),
		})
	}
}

// Get returns an enhancement by ID after a completion check. Enhancements
// owned by other users are reported as absent.
func (s *Service) Get(ctx context.Context, userID, enhancementID string) (Enhancement, error) {
	if userID == "" || enhancementID == "" {
		return Enhancement{}, ErrInvalidInput
	}
	e, err := s.Repo.GetByID(ctx, enhancementID)
	if err != nil {
		return Enhancement{}, err
	}
	if e.UserID != userID {
		return Enhancement{}, ErrNotFound
	}
	return s.refresh(ctx, e, false)
}

// List returns enhancements for a user ordered newest-first, refreshing any
// that still wait on artifacts. A failed probe on one row degrades to its
// stored status rather than failing the listing.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Enhancement, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	list, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, e := range list {
		refreshed, err := s.refresh(ctx, e, false)
		if err != nil {
			telemetry.Warn("list refresh failed", map[string]any{
				"enhancement_id": e.ID,
				"error":          err.Error(),
			})
			continue
		}
		list[i] = refreshed
	}
	return list, nil
}

// refresh performs the lazy completion check: look for the expected output
// files and advance the record when they have appeared. Forced refreshes skip
// the probe throttle. The generator writing a file and the service observing
// it are deliberately decoupled; absence is a normal state, never an error.
func (s *Service) refresh(ctx context.Context, e Enhancement, force bool) (Enhancement, error) {
	if e.AllArtifactsSeen() {
		return e, nil
	}
	if !force && !s.limiter.Allow(e.ID) {
		return e, nil
	}

	now := time.Now().UTC()
	changed := false
	sawOutput := false
	metrics.IncCompletionCheck()

	if e.Status == StatusPending {
		found, err := s.Files.Exists(ctx, s.Files.OutputPath(e.ID))
		if err != nil {
			if errors.Is(err, workspace.ErrPathEscapesRoot) {
				return Enhancement{}, err
			}
			telemetry.Warn("completion probe failed", map[string]any{
				"enhancement_id": e.ID,
				"error":          err.Error(),
			})
		} else if found {
			sawOutput = true
			won, err := s.Repo.MarkCompleted(ctx, e.ID, now)
			if err != nil {
				return Enhancement{}, err
			}
			if won {
				metrics.IncEnhancementCompleted()
				metrics.ObserveCompletionLatencyMs(float64(now.Sub(e.CreatedAt).Milliseconds()))
				telemetry.Info("enhancement.status", map[string]any{
					"enhancement_id":    e.ID,
					"user_id":           e.UserID,
					"status":            StatusCompleted,
					"status_transition": "pending->completed",
				})
			}
			changed = true
		}
	}

	if e.CoverLetter && e.CoverLetterSeenAt == nil {
		found, err := s.Files.Exists(ctx, s.Files.CoverLetterPath(e.ID))
		if err != nil {
			if errors.Is(err, workspace.ErrPathEscapesRoot) {
				return Enhancement{}, err
			}
			telemetry.Warn("cover letter probe failed", map[string]any{
				"enhancement_id": e.ID,
				"error":          err.Error(),
			})
		} else if found {
			if _, err := s.Repo.MarkCoverLetterSeen(ctx, e.ID, now); err != nil {
				return Enhancement{}, err
			}
			changed = true
		}
	}

	if !changed {
		return e, nil
	}
	reloaded, err := s.Repo.GetByID(ctx, e.ID)
	if err != nil {
		return Enhancement{}, err
	}
	if sawOutput && reloaded.Status != StatusCompleted {
		telemetry.Error("status transition refused", map[string]any{
			"enhancement_id": e.ID,
			"status":         reloaded.Status,
		})
		return Enhancement{}, ErrIllegalTransition
	}
	return reloaded, nil
}

// RefreshPending runs a completion sweep over enhancements that still wait on
// artifacts. Returns how many main documents were newly observed.
func (s *Service) RefreshPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.Repo.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	completed := 0
	for _, e := range pending {
		refreshed, err := s.refresh(ctx, e, true)
		if err != nil {
			telemetry.Warn("sweep refresh failed", map[string]any{
				"enhancement_id": e.ID,
				"error":          err.Error(),
			})
			continue
		}
		if e.Status == StatusPending && refreshed.Status == StatusCompleted {
			completed++
		}
	}
	return completed, nil
}

// Finalize renders the enhanced document into the requested format inside the
// task directory and caches the rendered path on the row. Idempotent: a second
// call returns the cached artifact without re-rendering.
func (s *Service) Finalize(ctx context.Context, userID, enhancementID, format string) (Enhancement, string, error) {
	if format != FormatDocx && format != FormatPDF {
		return Enhancement{}, "", fmt.Errorf("%w: format must be %s or %s", ErrInvalidInput, FormatDocx, FormatPDF)
	}
	e, err := s.Get(ctx, userID, enhancementID)
	if err != nil {
		return Enhancement{}, "", err
	}
	if !e.ResumeReady() {
		return Enhancement{}, "", ErrNotReady
	}

	cachedKey := e.DocxKey
	if format == FormatPDF {
		cachedKey = e.PdfKey
	}
	if cachedKey != "" {
		if found, err := s.Files.Exists(ctx, cachedKey); err == nil && found {
			return e, cachedKey, nil
		}
	}

	_, key, err := s.renderArtifact(ctx, e, ArtifactResume, format)
	if err != nil {
		return Enhancement{}, "", err
	}
	if err := s.Repo.SetRenderedKey(ctx, e.ID, format, key); err != nil {
		return Enhancement{}, "", err
	}
	if format == FormatDocx {
		e.DocxKey = key
	} else {
		e.PdfKey = key
	}
	return e, key, nil
}

// Artifact is a downloadable file.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Download returns the requested artifact in the requested format, running a
// completion check first. The main document of a pending enhancement and a
// requested-but-unseen cover letter are both 409 material, distinct from 404.
func (s *Service) Download(ctx context.Context, userID, enhancementID, artifact, format string) (Artifact, error) {
	if artifact == "" {
		artifact = ArtifactResume
	}
	if format == "" {
		format = FormatMarkdown
	}
	if artifact != ArtifactResume && artifact != ArtifactCoverLetter {
		return Artifact{}, fmt.Errorf("%w: artifact must be %s or %s", ErrInvalidInput, ArtifactResume, ArtifactCoverLetter)
	}
	if format != FormatMarkdown && format != FormatDocx && format != FormatPDF {
		return Artifact{}, fmt.Errorf("%w: format must be %s, %s or %s", ErrInvalidInput, FormatMarkdown, FormatDocx, FormatPDF)
	}

	e, err := s.Get(ctx, userID, enhancementID)
	if err != nil {
		return Artifact{}, err
	}

	var sourceKey, base string
	switch artifact {
	case ArtifactResume:
		if !e.ResumeReady() {
			return Artifact{}, ErrNotReady
		}
		sourceKey = s.Files.OutputPath(e.ID)
		base = "enhanced"
	case ArtifactCoverLetter:
		if !e.CoverLetter {
			// Never requested: the artifact does not exist for this
			// enhancement, which is a 404, not a 409.
			return Artifact{}, fmt.Errorf("cover letter not requested: %w", ErrNotFound)
		}
		if !e.CoverLetterReady() {
			return Artifact{}, ErrNotReady
		}
		sourceKey = s.Files.CoverLetterPath(e.ID)
		base = "cover_letter"
	}

	var out Artifact
	switch format {
	case FormatMarkdown:
		data, found, err := s.Files.ReadIfPresent(ctx, sourceKey)
		if err != nil {
			return Artifact{}, err
		}
		if !found {
			return Artifact{}, &workspace.StorageError{Op: "read", Path: sourceKey, Err: fs.ErrNotExist}
		}
		out = Artifact{FileName: base + ".md", ContentType: "text/markdown; charset=utf-8", Data: data}
	case FormatDocx:
		data, _, err := s.renderArtifact(ctx, e, artifact, FormatDocx)
		if err != nil {
			return Artifact{}, err
		}
		out = Artifact{
			FileName:    base + ".docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:        data,
		}
	case FormatPDF:
		data, _, err := s.renderArtifact(ctx, e, artifact, FormatPDF)
		if err != nil {
			return Artifact{}, err
		}
		out = Artifact{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}
	}

	metrics.IncDownload()
	return out, nil
}

// renderArtifact converts an artifact's markdown into docx or pdf, caching the
// result next to the source so repeated downloads reuse it.
func (s *Service) renderArtifact(ctx context.Context, e Enhancement, artifact, format string) ([]byte, string, error) {
	sourceKey := s.Files.OutputPath(e.ID)
	base := "enhanced"
	title := "Enhanced Resume"
	if artifact == ArtifactCoverLetter {
		sourceKey = s.Files.CoverLetterPath(e.ID)
		base = "cover_letter"
		title = "Cover Letter"
	}
	key := s.Files.RenderedPath(e.ID, base, format)

	if cached, found, err := s.Files.ReadIfPresent(ctx, key); err == nil && found {
		return cached, key, nil
	}

	md, found, err := s.Files.ReadIfPresent(ctx, sourceKey)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", &workspace.StorageError{Op: "read", Path: sourceKey, Err: fs.ErrNotExist}
	}

	var data []byte
	switch format {
	case FormatDocx:
		data, err = render.MarkdownDocx(md)
		if err != nil {
			metrics.IncRenderFailed()
			return nil, "", fmt.Errorf("render docx: %w", err)
		}
	case FormatPDF:
		if s.Printer == nil {
			return nil, "", ErrRendererUnavailable
		}
		data, err = s.Printer.Render(ctx, md, title)
		if err != nil {
			metrics.IncRenderFailed()
			return nil, "", fmt.Errorf("%w: %s", ErrRendererUnavailable, sanitizeRenderError(err))
		}
	default:
		return nil, "", fmt.Errorf("%w: unknown rendered format %q", ErrInvalidInput, format)
	}

	if err := s.Files.WriteFile(ctx, key, data); err != nil {
		telemetry.Warn("rendered artifact cache write failed", map[string]any{
			"enhancement_id": e.ID,
			"key":            key,
			"error":          err.Error(),
		})
	}
	return data, key, nil
}

// Delete removes the enhancement row and then its task directory. Deleting a
// pending enhancement is allowed; a missing directory is success.
func (s *Service) Delete(ctx context.Context, userID, enhancementID string) error {
	if userID == "" || enhancementID == "" {
		return ErrInvalidInput
	}
	e, err := s.Repo.GetByID(ctx, enhancementID)
	if err != nil {
		return err
	}
	if e.UserID != userID {
		return ErrForbidden
	}
	if err := s.Repo.Delete(ctx, enhancementID); err != nil {
		return err
	}
	if err := s.Files.RemoveTaskDir(ctx, enhancementID); err != nil {
		telemetry.Warn("task dir removal failed", map[string]any{
			"enhancement_id": enhancementID,
			"error":          err.Error(),
		})
	}
	s.limiter.Forget(enhancementID)
	metrics.IncEnhancementDeleted()
	return nil
}

// DeleteByResume removes every enhancement derived from a resume, rows and
// task directories both. The resume service calls this before deleting the
// resume itself.
func (s *Service) DeleteByResume(ctx context.Context, userID, resumeID string) error {
	if userID == "" || resumeID == "" {
		return ErrInvalidInput
	}
	list, err := s.Repo.ListByResume(ctx, userID, resumeID)
	if err != nil {
		return err
	}
	for _, e := range list {
		if err := s.Repo.Delete(ctx, e.ID); err != nil {
			return err
		}
		if err := s.Files.RemoveTaskDir(ctx, e.ID); err != nil {
			telemetry.Warn("task dir removal failed", map[string]any{
				"enhancement_id": e.ID,
				"error":          err.Error(),
			})
		}
		s.limiter.Forget(e.ID)
		metrics.IncEnhancementDeleted()
	}
	return nil
}

// sanitizeRenderError strips newlines and truncates so renderer output cannot
// splatter logs or responses.
func sanitizeRenderError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 200
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
