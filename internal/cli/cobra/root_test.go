package cobra

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
)

// executeCmd runs the root command with the given args and returns stdout, stderr, and error.
func executeCmd(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_Help(t *testing.T) {
	tests := []string{"--help", "-h"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			stdout, _, err := executeCmd(arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, "tixmail") {
				t.Error("expected 'tixmail' in help output")
			}
			if !strings.Contains(stdout, "Available Commands") {
				t.Error("expected 'Available Commands' in help output")
			}
			for _, cmd := range []string{"init", "doctor", "send", "status", "show", "clean", "completion", "version"} {
				if !strings.Contains(stdout, cmd) {
					t.Errorf("expected '%s' command in help output", cmd)
				}
			}
			for _, flag := range []string{"--config", "--verbose", "--log-format"} {
				if !strings.Contains(stdout, flag) {
					t.Errorf("expected '%s' global flag in help output", flag)
				}
			}
		})
	}
}

func TestRoot_Version(t *testing.T) {
	tests := []string{"--version", "-v", "version"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			stdout, _, err := executeCmd(arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, "tixmail") {
				t.Error("expected 'tixmail' in version output")
			}
		})
	}
}

func TestVersionCmd_ListsSupportedFormats(t *testing.T) {
	stdout, _, err := executeCmd("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"ledger_formats: csv, xlsx, json, sqlite\n", "ticket_kinds: image, pdf\n", "go: go"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("version output missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	stdout, _, err := executeCmd("version", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got buildInfo
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("version --json is not JSON: %v\n%s", err, stdout)
	}
	if got.Version == "" || !strings.HasPrefix(got.Go, "go") {
		t.Errorf("info = %+v", got)
	}
	if len(got.LedgerFormats) != 4 || got.LedgerFormats[3] != "sqlite" {
		t.Errorf("ledger_formats = %v", got.LedgerFormats)
	}
	if len(got.TicketKinds) != 2 {
		t.Errorf("ticket_kinds = %v", got.TicketKinds)
	}
}

func TestRoot_UnknownCommand(t *testing.T) {
	_, _, err := executeCmd("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected 'unknown command' in error, got: %v", err)
	}
}

func TestSendCmd_Help(t *testing.T) {
	stdout, _, err := executeCmd("send", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, flag := range []string{"--only", "--limit", "--dry-run", "--checkpoint", "--strict"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("expected '%s' in send help output", flag)
		}
	}
	if !strings.Contains(stdout, "EMAIL_PASSWORD") {
		t.Error("expected the SMTP environment to be documented")
	}
}

func TestShowCmd_RequiresSelector(t *testing.T) {
	_, _, err := executeCmd("show")
	if err == nil {
		t.Fatal("expected error when neither --token nor --email is given")
	}

	_, _, err = executeCmd("show", "--token", "1000", "--email", "a@x.com")
	if err == nil {
		t.Fatal("expected error when both --token and --email are given")
	}
}

func TestInitThenStatus(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tixmail.yaml")

	stdout, _, err := executeCmd("init", "--config", cfg)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(stdout, "created") {
		t.Errorf("unexpected init output %q", stdout)
	}

	// The template points at participants.xlsx, which does not exist yet
	_, _, err = executeCmd("status", "--config", cfg)
	if errors.GetCode(err) != errors.ERosterNotFound {
		t.Fatalf("status error = %v, want E_ROSTER_NOT_FOUND", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "participants.csv"), []byte("name,email\nAnn,ann@x.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(cfg)
	if err != nil {
		t.Fatal(err)
	}
	patched := strings.Replace(string(data), "roster: participants.xlsx", "roster: participants.csv", 1)
	if err := os.WriteFile(cfg, []byte(patched), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err = executeCmd("status", "--config", cfg, "--json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(stdout, `"status": "pending"`) {
		t.Errorf("unexpected status output:\n%s", stdout)
	}
}

func TestRoot_BadLogFormat(t *testing.T) {
	_, _, err := executeCmd("status", "--log-format", "xml")
	if errors.GetCode(err) != errors.EUsage {
		t.Fatalf("error = %v, want E_USAGE", err)
	}
}

func TestCompletionCmd(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCmd("completion", shell)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, "tixmail") {
				t.Error("expected 'tixmail' in completion script")
			}
		})
	}

	out := filepath.Join(t.TempDir(), "completions", "tixmail")
	if _, _, err := executeCmd("completion", "--output", out, "bash"); err != nil {
		t.Fatalf("completion --output: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("completion script not written: %v", err)
	}

	_, _, err := executeCmd("completion", "tcsh")
	if errors.GetCode(err) != errors.EUsage {
		t.Errorf("completion tcsh error = %v, want E_USAGE", err)
	}
}
