package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	return w
}

func TestEnsureLayoutCreatesTrees(t *testing.T) {
	w := newTestWorkspace(t)
	for _, dir := range []string{"resumes/original", "jobs", "resumes/enhanced"} {
		info, err := os.Stat(filepath.Join(w.Root(), filepath.FromSlash(dir)))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", dir)
		}
	}
}

func TestPathWithinRoot(t *testing.T) {
	w := newTestWorkspace(t)

	good := []string{
		"resumes/enhanced/abc/enhanced.md",
		"jobs/j1/job.txt",
		"resumes/original/r1/resume.txt",
	}
	for _, p := range good {
		if !w.PathWithinRoot(p) {
			t.Fatalf("expected %q to be within root", p)
		}
	}

	bad := []string{
		"",
		"..",
		"../outside",
		"resumes/../../etc/passwd",
		"/etc/passwd",
		"resumes/enhanced/../../../x",
	}
	for _, p := range bad {
		if w.PathWithinRoot(p) {
			t.Fatalf("expected %q to be rejected", p)
		}
	}
}

func TestReadIfPresentAbsentIsNotError(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	data, ok, err := w.ReadIfPresent(ctx, w.OutputPath("nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected absent, got ok=%v data=%q", ok, data)
	}
}

func TestWriteThenReadIfPresent(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	rel := w.InstructionsPath("e1")
	if err := w.WriteFile(ctx, rel, []byte("# Task\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, ok, err := w.ReadIfPresent(ctx, rel)
	if err != nil {
		t.Fatalf("ReadIfPresent: %v", err)
	}
	if !ok || string(data) != "# Task\n" {
		t.Fatalf("expected content back, got ok=%v data=%q", ok, data)
	}
}

func TestReadRejectsEscapingPath(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	_, _, err := w.ReadIfPresent(ctx, "../secret")
	if err == nil {
		t.Fatal("expected containment error")
	}
	if !errors.Is(err, ErrPathEscapesRoot) {
		t.Fatalf("expected ErrPathEscapesRoot, got %v", err)
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %T", err)
	}
}

func TestCraftedIDCannotEscape(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	if err := w.WriteFile(ctx, w.InstructionsPath("../../../../tmp/evil"), []byte("x")); err == nil {
		t.Fatal("expected write with crafted id to fail")
	}
	if _, err := w.AllocTaskDir(ctx, "../../escape"); err == nil {
		t.Fatal("expected alloc with crafted id to fail")
	}
}

func TestAllocAndRemoveTaskDir(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	dir, err := w.AllocTaskDir(ctx, "e42")
	if err != nil {
		t.Fatalf("AllocTaskDir: %v", err)
	}
	if dir != "resumes/enhanced/e42" {
		t.Fatalf("unexpected task dir key %q", dir)
	}
	if err := w.WriteFile(ctx, w.OutputPath("e42"), []byte("done")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := w.RemoveTaskDir(ctx, "e42"); err != nil {
		t.Fatalf("RemoveTaskDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.Root(), "resumes", "enhanced", "e42")); !os.IsNotExist(err) {
		t.Fatalf("expected task dir gone, got %v", err)
	}

	// Removing an already-missing directory succeeds.
	if err := w.RemoveTaskDir(ctx, "e42"); err != nil {
		t.Fatalf("second RemoveTaskDir: %v", err)
	}
}

func TestRemoveRefusesLayoutDirs(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	if err := w.removeDir(ctx, "resumes/enhanced"); err == nil {
		t.Fatal("expected removal of layout dir to be refused")
	}
	if err := w.removeDir(ctx, "."); err == nil {
		t.Fatal("expected removal of root to be refused")
	}
}
