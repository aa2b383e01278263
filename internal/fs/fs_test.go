package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_CreatesParentAndWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state", "ledger.csv")

	if err := WriteFileAtomic(NewRealFS(), path, []byte("name,email\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "name,email\n" {
		t.Errorf("content = %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteFileAtomic_OverwriteReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sent.json")
	if err := os.WriteFile(path, []byte("old content that is longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(NewRealFS(), path, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}

// failingRenameFS wraps RealFS and fails the final rename.
type failingRenameFS struct {
	RealFS
	tmpPaths []string
}

func (f *failingRenameFS) CreateTemp(dir, pattern string) (string, io.WriteCloser, error) {
	p, w, err := f.RealFS.CreateTemp(dir, pattern)
	f.tmpPaths = append(f.tmpPaths, p)
	return p, w, err
}

func (f *failingRenameFS) Rename(oldpath, newpath string) error {
	return errors.New("rename refused")
}

func TestWriteFileAtomic_RenameFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "failed.csv")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	fsys := &failingRenameFS{}
	if err := WriteFileAtomic(fsys, path, []byte("replacement"), 0o644); err == nil {
		t.Fatal("expected error from failing rename")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("original file modified: %q", got)
	}
	for _, p := range fsys.tmpPaths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("temp file %s not cleaned up", p)
		}
	}
}
