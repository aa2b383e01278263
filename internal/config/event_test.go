package config

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// stubFS is a test stub for the fs.FS interface.
type stubFS struct {
	files map[string][]byte
}

func newStubFS() *stubFS {
	return &stubFS{files: make(map[string][]byte)}
}

func (s *stubFS) ReadFile(path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (s *stubFS) MkdirAll(path string, perm os.FileMode) error         { return nil }
func (s *stubFS) WriteFile(path string, d []byte, p os.FileMode) error { return nil }
func (s *stubFS) Stat(path string) (iofs.FileInfo, error)              { return nil, nil }
func (s *stubFS) Rename(o, n string) error                             { return nil }
func (s *stubFS) Remove(path string) error                             { return nil }
func (s *stubFS) Chmod(path string, perm os.FileMode) error            { return nil }
func (s *stubFS) CreateTemp(dir, pattern string) (string, io.WriteCloser, error) {
	return "", nil, nil
}

var _ fs.FS = (*stubFS)(nil)

func TestLoadEvent_MissingFileReturnsResolvedDefaults(t *testing.T) {
	cfg, found, err := LoadEvent(newStubFS(), "/event/tixmail.yaml")
	if err != nil {
		t.Fatalf("LoadEvent() error = %v", err)
	}
	if found {
		t.Error("found should be false for a missing file")
	}
	if cfg.BaseToken != 1000 || !cfg.RetryFailed {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Roster != filepath.Join("/event", "participants.xlsx") {
		t.Errorf("Roster = %q", cfg.Roster)
	}
	if cfg.Dir != "/event" {
		t.Errorf("Dir = %q", cfg.Dir)
	}
	if cfg.EventsPath() != filepath.Join("/event", ".tixmail", "events.jsonl") {
		t.Errorf("EventsPath() = %q", cfg.EventsPath())
	}
}

func TestLoadEvent_OverridesKeepDefaults(t *testing.T) {
	stub := newStubFS()
	stub.files["/event/tixmail.yaml"] = []byte(`version: 1
event:
  title: GameCraft Hackathon 2024
base_token: 2000
roster: /data/roster.csv
ledger:
  format: json
  success: state/sent.json
  failure: state/failed.json
artifact:
  kind: pdf
`)

	cfg, found, err := LoadEvent(stub, "/event/tixmail.yaml")
	if err != nil {
		t.Fatalf("LoadEvent() error = %v", err)
	}
	if !found {
		t.Error("found should be true")
	}
	if cfg.BaseToken != 2000 {
		t.Errorf("BaseToken = %d", cfg.BaseToken)
	}
	if cfg.Roster != "/data/roster.csv" {
		t.Errorf("absolute roster path changed: %q", cfg.Roster)
	}
	if cfg.Ledger.Success != filepath.Join("/event", "state", "sent.json") {
		t.Errorf("Ledger.Success = %q", cfg.Ledger.Success)
	}
	if cfg.LedgerFormat() != FormatJSON {
		t.Errorf("LedgerFormat() = %q", cfg.LedgerFormat())
	}
	if cfg.Artifact.TitleSize != 70 || cfg.Artifact.OutputDir != filepath.Join("/event", "tickets") {
		t.Errorf("artifact defaults lost: %+v", cfg.Artifact)
	}
	if cfg.Message.Subject != DefaultSubject {
		t.Errorf("Subject = %q", cfg.Message.Subject)
	}
	if !cfg.RetryFailed {
		t.Error("retry_failed default lost")
	}
}

func TestLoadEvent_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"bad yaml", "version: [1", "invalid yaml"},
		{"unknown key", "version: 1\nsmtp_password: hunter2\n", "invalid yaml"},
		{"wrong version", "version: 2\n", "version must be 1"},
		{"negative base", "base_token: -1\n", "base_token"},
		{"bad format", "ledger:\n  format: parquet\n", "unsupported ledger format"},
		{"same csv paths", "ledger:\n  success: a.csv\n  failure: a.csv\n", "must differ"},
		{"bad kind", "artifact:\n  kind: gif\n", "artifact.kind"},
		{"empty subject", "message:\n  subject: \"  \"\n", "subject"},
		{"bad template", "message:\n  body: \"{{.Name\"\n", "not a valid template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubFS()
			stub.files["/event/tixmail.yaml"] = []byte(tt.content)

			_, _, err := LoadEvent(stub, "/event/tixmail.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.GetCode(err) != errors.EInvalidEventConfig {
				t.Errorf("code = %s, want E_INVALID_EVENT_CONFIG", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
			te, _ := errors.AsTixError(err)
			if te.Details["config"] != "/event/tixmail.yaml" {
				t.Errorf("config detail = %q", te.Details["config"])
			}
		})
	}
}

func TestLoadEvent_SQLiteMayShareFile(t *testing.T) {
	stub := newStubFS()
	stub.files["/event/tixmail.yaml"] = []byte("ledger:\n  success: state/ledger.db\n  failure: state/ledger.db\n")

	cfg, _, err := LoadEvent(stub, "/event/tixmail.yaml")
	if err != nil {
		t.Fatalf("LoadEvent() error = %v", err)
	}
	if cfg.LedgerFormat() != FormatSQLite {
		t.Errorf("LedgerFormat() = %q, want sqlite", cfg.LedgerFormat())
	}
}

func TestLedgerFormatInference(t *testing.T) {
	tests := map[string]string{
		"sent.csv":     FormatCSV,
		"sent.XLSX":    FormatXLSX,
		"sent.json":    FormatJSON,
		"sent.sqlite3": FormatSQLite,
		"sent":         FormatCSV,
	}
	for path, want := range tests {
		cfg := DefaultEvent()
		cfg.Ledger.Success = path
		if got := cfg.LedgerFormat(); got != want {
			t.Errorf("LedgerFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDefaultEventMarshalRoundTrips(t *testing.T) {
	data, err := DefaultEvent().Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	cfg, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v\n%s", err, data)
	}
	if cfg.Message.Body != DefaultBody {
		t.Errorf("body changed through yaml:\n%q", cfg.Message.Body)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "dir:") {
			t.Errorf("Dir must not be serialised:\n%s", data)
		}
	}
}
