// Package fs provides filesystem utilities for tixmail.
// All durable writes go through WriteFileAtomic so a crash never leaves a
// half-written ledger where the next run would read it.
package fs

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// FS is the filesystem surface used by tixmail. Tests substitute stubs.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Stat(path string) (iofs.FileInfo, error)
	Rename(oldpath, newpath string) error
	Remove(path string) error
	Chmod(path string, perm os.FileMode) error
	CreateTemp(dir, pattern string) (string, io.WriteCloser, error)
}

// RealFS implements FS on top of package os.
type RealFS struct{}

// NewRealFS returns the os-backed FS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

func (RealFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (RealFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (RealFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (RealFS) Stat(path string) (iofs.FileInfo, error) { return os.Stat(path) }

func (RealFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (RealFS) Remove(path string) error { return os.Remove(path) }

func (RealFS) Chmod(path string, perm os.FileMode) error { return os.Chmod(path, perm) }

func (RealFS) CreateTemp(dir, pattern string) (string, io.WriteCloser, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, err
	}
	return f.Name(), &syncCloser{f}, nil
}

// syncCloser fsyncs before close so the rename publishes complete content.
type syncCloser struct {
	*os.File
}

func (s *syncCloser) Close() error {
	if err := s.File.Sync(); err != nil {
		_ = s.File.Close()
		return err
	}
	return s.File.Close()
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename. The parent directory is created if missing.
// On any failure the temp file is removed and path is left untouched.
func WriteFileAtomic(fsys FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpPath, w, err := fsys.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		_ = fsys.Remove(tmpPath)
		return err
	}
	if err := w.Close(); err != nil {
		_ = fsys.Remove(tmpPath)
		return err
	}
	if err := fsys.Chmod(tmpPath, perm); err != nil {
		_ = fsys.Remove(tmpPath)
		return err
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		_ = fsys.Remove(tmpPath)
		return err
	}
	return nil
}
