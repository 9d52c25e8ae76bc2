package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// The directory layout below is shared with the external generator and is a
// public contract. File and directory names must never change.
//
//	root/
//	  resumes/original/{resume_id}/resume.txt
//	  jobs/{job_id}/job.txt
//	  resumes/enhanced/{enhancement_id}/INSTRUCTIONS.md
//	                                    enhanced.md
//	                                    cover_letter.md
const (
	originalTree = "resumes/original"
	jobTree      = "jobs"
	enhancedTree = "resumes/enhanced"

	InstructionsFile = "INSTRUCTIONS.md"
	OutputFile       = "enhanced.md"
	CoverLetterFile  = "cover_letter.md"
	ResumeTextFile   = "resume.txt"
	JobTextFile      = "job.txt"
)

// Workspace is the filesystem layer for the generator handoff. All methods
// take workspace-relative keys; resolution against the root enforces
// containment.
type Workspace struct {
	root string
}

// New creates a Workspace anchored at root. The directory itself is created
// lazily by EnsureLayout.
func New(root string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, storageErr("init", root, err)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string { return w.root }

// EnsureLayout creates the top-level trees. Safe to call repeatedly.
func (w *Workspace) EnsureLayout() error {
	for _, dir := range []string{originalTree, jobTree, enhancedTree} {
		if err := os.MkdirAll(filepath.Join(w.root, dir), 0o755); err != nil {
			return storageErr("init", dir, err)
		}
	}
	return nil
}

// Probe verifies the root is present and writable. Used by health checks.
func (w *Workspace) Probe() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return storageErr("probe", ".", err)
	}
	if !info.IsDir() {
		return storageErr("probe", ".", errors.New("root is not a directory"))
	}
	return nil
}

// Relative key builders. Keys use forward slashes; resolve maps them to the
// host separator. IDs are embedded verbatim, never cleaned, so an ID that
// smuggles ".." fails the containment check instead of being normalized away.

func (w *Workspace) ResumeDir(resumeID string) string {
	return originalTree + "/" + resumeID
}

func (w *Workspace) ResumeTextPath(resumeID string) string {
	return originalTree + "/" + resumeID + "/" + ResumeTextFile
}

func (w *Workspace) JobDir(jobID string) string {
	return jobTree + "/" + jobID
}

func (w *Workspace) JobTextPath(jobID string) string {
	return jobTree + "/" + jobID + "/" + JobTextFile
}

func (w *Workspace) TaskDir(enhancementID string) string {
	return enhancedTree + "/" + enhancementID
}

func (w *Workspace) InstructionsPath(enhancementID string) string {
	return enhancedTree + "/" + enhancementID + "/" + InstructionsFile
}

func (w *Workspace) OutputPath(enhancementID string) string {
	return enhancedTree + "/" + enhancementID + "/" + OutputFile
}

func (w *Workspace) CoverLetterPath(enhancementID string) string {
	return enhancedTree + "/" + enhancementID + "/" + CoverLetterFile
}

// RenderedPath names a converted artifact inside the task directory, e.g.
// enhanced.docx or cover_letter.pdf.
func (w *Workspace) RenderedPath(enhancementID, base, ext string) string {
	return enhancedTree + "/" + enhancementID + "/" + base + "." + ext
}

// PathWithinRoot reports whether relPath stays inside the workspace root.
// Absolute paths and any ".." segment are rejected, even when cleaning would
// keep the result under the root. Every open and write goes through this check.
func (w *Workspace) PathWithinRoot(relPath string) bool {
	if strings.TrimSpace(relPath) == "" || filepath.IsAbs(relPath) {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(relPath), "/") {
		if seg == ".." {
			return false
		}
	}
	resolved := filepath.Join(w.root, filepath.Clean(filepath.FromSlash(relPath)))
	return resolved == w.root || strings.HasPrefix(resolved, w.root+string(filepath.Separator))
}

func (w *Workspace) resolve(op, relPath string) (string, error) {
	if !w.PathWithinRoot(relPath) {
		return "", storageErr(op, relPath, ErrPathEscapesRoot)
	}
	return filepath.Join(w.root, filepath.Clean(filepath.FromSlash(relPath))), nil
}

// AllocTaskDir creates the task directory for an enhancement and returns its
// relative key.
func (w *Workspace) AllocTaskDir(ctx context.Context, enhancementID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := w.TaskDir(enhancementID)
	abs, err := w.resolve("alloc", dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", storageErr("alloc", dir, err)
	}
	return dir, nil
}

// WriteFile writes data at the relative path, creating parent directories.
func (w *Workspace) WriteFile(ctx context.Context, relPath string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := w.resolve("write", relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return storageErr("write", relPath, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return storageErr("write", relPath, err)
	}
	return nil
}

// Exists reports whether a regular file is present at the relative path.
func (w *Workspace) Exists(ctx context.Context, relPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	abs, err := w.resolve("stat", relPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storageErr("stat", relPath, err)
	}
	return info.Mode().IsRegular(), nil
}

// ReadIfPresent returns the file contents and whether the file exists. Absence
// is not an error; it is the expected state while a generator has not finished.
func (w *Workspace) ReadIfPresent(ctx context.Context, relPath string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	abs, err := w.resolve("read", relPath)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, storageErr("read", relPath, err)
	}
	return data, true, nil
}

// RemoveTaskDir deletes an enhancement's task directory recursively. A missing
// directory is success.
func (w *Workspace) RemoveTaskDir(ctx context.Context, enhancementID string) error {
	return w.removeDir(ctx, w.TaskDir(enhancementID))
}

// RemoveResumeDir deletes a resume's source directory recursively.
func (w *Workspace) RemoveResumeDir(ctx context.Context, resumeID string) error {
	return w.removeDir(ctx, w.ResumeDir(resumeID))
}

// RemoveJobDir deletes a job's directory recursively.
func (w *Workspace) RemoveJobDir(ctx context.Context, jobID string) error {
	return w.removeDir(ctx, w.JobDir(jobID))
}

func (w *Workspace) removeDir(ctx context.Context, relDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := w.resolve("remove", relDir)
	if err != nil {
		return err
	}
	// Refuse to remove the root or the trees themselves; only per-record
	// directories may go.
	if abs == w.root {
		return storageErr("remove", relDir, errors.New("refusing to remove workspace root"))
	}
	switch filepath.ToSlash(strings.TrimPrefix(abs, w.root+string(filepath.Separator))) {
	case originalTree, jobTree, enhancedTree:
		return storageErr("remove", relDir, errors.New("refusing to remove layout directory"))
	}
	if err := os.RemoveAll(abs); err != nil {
		return storageErr("remove", relDir, err)
	}
	return nil
}
