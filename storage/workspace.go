// Package storage manages the per-request scratch directory used by bulk
// uploads: the staged input file and the generated results file live there
// and are removed together when the request ends.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is a private temporary directory owned by a single bulk run.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh directory under baseDir. An empty baseDir
// uses the system temp directory. The base is created if missing.
func NewWorkspace(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base dir: %w", err)
	}
	dir, err := os.MkdirTemp(baseDir, "batch-")
	if err != nil {
		return nil, fmt.Errorf("storage: create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Path returns the workspace directory.
func (w *Workspace) Path() string {
	return w.dir
}

// Stage copies r into a uniquely named upload file and returns its path.
// ext should include the leading dot.
func (w *Workspace) Stage(r io.Reader, ext string) (string, error) {
	f, err := w.Create("upload", ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("storage: stage upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: stage upload: %w", err)
	}
	return f.Name(), nil
}

// Create opens a new file named <prefix>_<uuid><ext> inside the workspace.
// The caller closes it; Close on the workspace removes it.
func (w *Workspace) Create(prefix, ext string) (*os.File, error) {
	name := fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), ext)
	f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", name, err)
	}
	return f, nil
}

// Close removes the workspace and everything in it. It is safe to call more
// than once.
func (w *Workspace) Close() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove workspace: %w", err)
	}
	w.dir = ""
	return nil
}
