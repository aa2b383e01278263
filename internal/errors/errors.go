// Package errors defines the stable error code system for tixmail.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract: scripts may match on them.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// Configuration errors (fatal before any participant is touched)
	EConfigMissing      Code = "E_CONFIG_MISSING"       // required environment variable unset or empty
	EConfigInvalid      Code = "E_CONFIG_INVALID"       // environment variable present but unparsable
	EInvalidEventConfig Code = "E_INVALID_EVENT_CONFIG" // tixmail.yaml unreadable or invalid
	EEventConfigExists  Code = "E_EVENT_CONFIG_EXISTS"  // init refused to overwrite tixmail.yaml

	// Input errors
	ERosterNotFound Code = "E_ROSTER_NOT_FOUND" // roster file missing
	ERosterInvalid  Code = "E_ROSTER_INVALID"   // roster unreadable, malformed, or missing required columns
	ELedgerCorrupt  Code = "E_LEDGER_CORRUPT"   // ledger exists but cannot be parsed; never treated as empty

	// Persistence errors
	EPersistFailed  Code = "E_PERSIST_FAILED"  // atomic ledger/snapshot write failed
	ESnapshotFailed Code = "E_SNAPSHOT_FAILED" // snapshot export failed (ledgers already durable)

	// Delivery session errors (fatal for the whole run)
	ESessionFailed Code = "E_SESSION_FAILED" // auth rejected / transport unreachable / connection lost

	// Per-participant errors; recorded as failures, only surfaced by single-participant commands
	EInvalidEmail   Code = "E_INVALID_EMAIL"
	ERenderFailed   Code = "E_RENDER_FAILED"
	EDeliveryFailed Code = "E_DELIVERY_FAILED"

	// Batch result
	EPartialFailure Code = "E_PARTIAL_FAILURE" // --strict run finished with failures
	EInterrupted    Code = "E_INTERRUPTED"     // run cancelled between participants (SIGINT)

	// Lookup errors
	EParticipantNotFound Code = "E_PARTICIPANT_NOT_FOUND"

	// Clean/doctor errors
	EUnsafePath           Code = "E_UNSAFE_PATH"           // refused to remove a path outside the workspace
	EConfirmationRequired Code = "E_CONFIRMATION_REQUIRED" // destructive command needs --yes in non-interactive mode
	EAborted              Code = "E_ABORTED"               // user declined confirmation
	EArtifactResource     Code = "E_ARTIFACT_RESOURCE"     // ticket template or font missing
)

// TixError is the standard error type for tixmail errors.
type TixError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *TixError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TixError) Unwrap() error {
	return e.Cause
}

// ExitCodeError wraps an error with an explicit process exit code.
type ExitCodeError struct {
	Err  error
	Code int
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

func (e *ExitCodeError) ExitCode() int {
	return e.Code
}

// WithExitCode wraps err with a specific process exit code.
func WithExitCode(err error, code int) error {
	return &ExitCodeError{Err: err, Code: code}
}

// New creates a new TixError with the given code and message.
func New(code Code, msg string) error {
	return &TixError{Code: code, Msg: msg}
}

// NewWithDetails creates a new TixError with code, message, and details.
// Details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &TixError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new TixError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &TixError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new TixError wrapping an underlying error with details.
// Details map is copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &TixError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a TixError.
func GetCode(err error) Code {
	var te *TixError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// AsTixError returns (*TixError, true) if err is or wraps a TixError.
func AsTixError(err error) (*TixError, bool) {
	var te *TixError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 3 for E_PARTIAL_FAILURE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(interface{ ExitCode() int }); ok {
		return ec.ExitCode()
	}
	switch GetCode(err) {
	case EUsage:
		return 2
	case EPartialFailure:
		return 3
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var te *TixError
	if errors.As(err, &te) {
		_, _ = fmt.Fprintf(w, "error_code: %s\n", te.Code)
		_, _ = fmt.Fprintln(w, te.Msg)
	} else {
		_, _ = fmt.Fprintln(w, err.Error())
	}
}
