// Package fsxlocal stores bucket objects under a directory on disk. The
// server exposes that directory as static files when STORAGE_MODE=local.
package fsxlocal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type LocalFileSystem struct {
	root string
}

// NewLocalFileSystem creates root when missing and pins it to an absolute path.
func NewLocalFileSystem(root string) (*LocalFileSystem, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", abs, err)
	}
	return &LocalFileSystem{root: abs}, nil
}

func (l *LocalFileSystem) WriteFile(_ context.Context, name string, data []byte, _ string) error {
	p, err := l.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	// write then rename so the static handler never serves a partial PNG
	tmp := p + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// DeleteFile ignores objects that are already gone.
func (l *LocalFileSystem) DeleteFile(_ context.Context, name string) error {
	p, err := l.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (l *LocalFileSystem) GetBasePath() string { return l.root }

// Path maps an object name to its file, refusing names that leave the root.
func (l *LocalFileSystem) Path(name string) (string, error) {
	p := filepath.Join(l.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(l.root, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object name %q escapes the upload dir", name)
	}
	return p, nil
}
