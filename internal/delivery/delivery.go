// Package delivery sends rendered tickets to participants.
//
// A Channel opens one Session per batch run. Session.Send failures that
// concern only the current recipient are returned as plain errors; failures
// that invalidate the whole session (authentication rejected, transport
// unreachable, connection lost) wrap ErrSession.
package delivery

import (
	"context"
	"errors"
)

// ErrSession marks errors that make the delivery session unusable.
var ErrSession = errors.New("delivery session failed")

// SessionError is a session-level failure. errors.Is(err, ErrSession)
// reports true for it.
type SessionError struct {
	Op  string // open, send, close
	Err error
}

func (e *SessionError) Error() string {
	return "delivery session " + e.Op + ": " + e.Err.Error()
}

func (e *SessionError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrSession.
func (e *SessionError) Is(target error) bool { return target == ErrSession }

// IsSessionError reports whether err is fatal for the whole run.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrSession)
}

// Message is one outgoing email with a single attachment.
type Message struct {
	From           string
	To             string
	Subject        string
	Body           string
	AttachmentPath string
	AttachmentName string // file name shown to the recipient
}

// Channel opens delivery sessions.
type Channel interface {
	// Open establishes the session. Errors are session errors.
	Open(ctx context.Context) (Session, error)
}

// Session delivers messages over an established connection.
// Close must be called on every exit path.
type Session interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}
