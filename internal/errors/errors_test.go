package errors

import (
	"bytes"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(EUsage, "test message")

	if err.Error() != "E_USAGE: test message" {
		t.Errorf("Error() = %q, want %q", err.Error(), "E_USAGE: test message")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(ESessionFailed, "wrapped message", cause)

	if err.Error() != "E_SESSION_FAILED: wrapped message" {
		t.Errorf("Error() = %q, want %q", err.Error(), "E_SESSION_FAILED: wrapped message")
	}

	var te *TixError
	if !errors.As(err, &te) {
		t.Fatal("errors.As failed")
	}
	if te.Cause != cause {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil error", nil, ""},
		{"tix error", New(EUsage, "x"), EUsage},
		{"wrapped tix error", Wrap(ELedgerCorrupt, "y", errors.New("z")), ELedgerCorrupt},
		{"exit code wrapper", WithExitCode(New(EPersistFailed, "p"), 4), EPersistFailed},
		{"plain error", errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetCode(tt.err)
			if got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"E_USAGE", New(EUsage, "x"), 2},
		{"E_PARTIAL_FAILURE", New(EPartialFailure, "x"), 3},
		{"E_SESSION_FAILED", New(ESessionFailed, "x"), 1},
		{"explicit exit code", WithExitCode(New(EUsage, "x"), 7), 7},
		{"plain error", errors.New("x"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExitCode(tt.err)
			if got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"E_USAGE", New(EUsage, "bad args"), "error_code: E_USAGE\nbad args\n"},
		{"E_CONFIG_MISSING", New(EConfigMissing, "EMAIL_ADDRESS is required"), "error_code: E_CONFIG_MISSING\nEMAIL_ADDRESS is required\n"},
		{"plain", errors.New("boom"), "boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Print(&buf, tt.err)
			if got := buf.String(); got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewWithDetails_DefensiveCopy(t *testing.T) {
	details := map[string]string{"email": "ann@x.com"}
	err := NewWithDetails(EParticipantNotFound, "test", details)

	details["email"] = "modified"

	te, ok := AsTixError(err)
	if !ok {
		t.Fatal("AsTixError failed")
	}
	if te.Details["email"] != "ann@x.com" {
		t.Errorf("Details should be copied, got %q", te.Details["email"])
	}
}

func TestNewWithDetails_NilDetails(t *testing.T) {
	te, ok := AsTixError(NewWithDetails(EUsage, "test", map[string]string{}))
	if !ok {
		t.Fatal("AsTixError failed")
	}
	if te.Details != nil {
		t.Errorf("Details should be nil, got %v", te.Details)
	}
}

func TestAsTixError_NonTix(t *testing.T) {
	te, ok := AsTixError(errors.New("regular error"))
	if ok || te != nil {
		t.Error("should return nil, false for non-TixError")
	}
}
