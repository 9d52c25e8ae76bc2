package workspace

import (
	"errors"
	"fmt"
)

// ErrPathEscapesRoot indicates a candidate path resolved outside the workspace.
var ErrPathEscapesRoot = errors.New("path escapes workspace root")

// StorageError wraps a filesystem failure with the operation and the
// workspace-relative path. The absolute root never appears in the message, so
// the error is safe to log; client responses should still use a generic
// message.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("workspace %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, relPath string, err error) error {
	return &StorageError{Op: op, Path: relPath, Err: err}
}
