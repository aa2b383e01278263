package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isTicket(name string) bool { return strings.HasSuffix(name, "_ticket.png") }

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRemoveMatching_RemovesOnlyMatches(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "tickets")
	writeFiles(t, out, "Ann_ticket.png", "Bo_ticket.png", "notes.txt")
	if err := os.MkdirAll(filepath.Join(out, "nested_ticket.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	removed, err := RemoveMatching(out, root, isTicket)
	if err != nil {
		t.Fatalf("RemoveMatching() error = %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("removed = %v, want 2 files", removed)
	}
	if !strings.HasSuffix(removed[0], "Ann_ticket.png") || !strings.HasSuffix(removed[1], "Bo_ticket.png") {
		t.Errorf("removed not sorted: %v", removed)
	}
	if _, err := os.Stat(filepath.Join(out, "notes.txt")); err != nil {
		t.Error("non-matching file was removed")
	}
	if _, err := os.Stat(filepath.Join(out, "nested_ticket.png")); err != nil {
		t.Error("directory was removed")
	}
}

func TestRemoveMatching_OutsidePrefix(t *testing.T) {
	tmp := t.TempDir()
	prefix := filepath.Join(tmp, "workspace")
	outside := filepath.Join(tmp, "elsewhere")
	writeFiles(t, prefix)
	writeFiles(t, outside, "Ann_ticket.png")

	_, err := RemoveMatching(outside, prefix, isTicket)
	if _, ok := err.(*ErrNotUnderPrefix); !ok {
		t.Fatalf("expected ErrNotUnderPrefix, got %T: %v", err, err)
	}
	if _, err := os.Stat(filepath.Join(outside, "Ann_ticket.png")); err != nil {
		t.Error("file outside prefix was removed")
	}
}

func TestRemoveMatching_PrefixItselfRefused(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "Ann_ticket.png")

	if _, err := RemoveMatching(root, root, isTicket); err == nil {
		t.Fatal("expected refusal when dir equals prefix")
	}
}

func TestRemoveMatching_ParentTraversal(t *testing.T) {
	tmp := t.TempDir()
	prefix := filepath.Join(tmp, "workspace")
	writeFiles(t, prefix)
	writeFiles(t, tmp, "Ann_ticket.png")

	if _, err := RemoveMatching(filepath.Join(prefix, ".."), prefix, isTicket); err == nil {
		t.Fatal("expected refusal for traversal outside prefix")
	}
}

func TestRemoveMatching_MissingDir(t *testing.T) {
	root := t.TempDir()
	removed, err := RemoveMatching(filepath.Join(root, "nope"), root, isTicket)
	if err != nil || removed != nil {
		t.Errorf("missing dir: removed=%v err=%v", removed, err)
	}
}

func TestIsSubpath(t *testing.T) {
	tests := []struct {
		target, prefix string
		want           bool
	}{
		{"/a/b/c", "/a/b", true},
		{"/a/b", "/a/b", false},
		{"/a/bc", "/a/b", false},
		{"/a", "/a/b", false},
		{"/a/b/c", "/a/b/", true},
	}
	for _, tt := range tests {
		if got := IsSubpath(tt.target, tt.prefix); got != tt.want {
			t.Errorf("IsSubpath(%q, %q) = %v, want %v", tt.target, tt.prefix, got, tt.want)
		}
	}
}
