package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/NielsdaWheelz/tixmail/internal/config"
)

// SMTPChannel delivers over one authenticated SMTP connection per run.
type SMTPChannel struct {
	Env config.Env
}

// NewSMTPChannel returns a channel for the validated environment.
func NewSMTPChannel(env config.Env) *SMTPChannel {
	return &SMTPChannel{Env: env}
}

// clientOptions maps the environment to go-mail client options.
func (c *SMTPChannel) clientOptions() []mail.Option {
	return []mail.Option{
		mail.WithPort(c.Env.Port),
		mail.WithSMTPAuth(smtpAuth(c.Env.Auth)),
		mail.WithUsername(c.Env.SenderAddress),
		mail.WithPassword(c.Env.SenderPassword),
		mail.WithTLSPortPolicy(tlsPolicy(c.Env.TLSPolicy)),
		mail.WithTimeout(c.Env.Timeout),
	}
}

func tlsPolicy(p string) mail.TLSPolicy {
	switch p {
	case config.TLSOpportunistic:
		return mail.TLSOpportunistic
	case config.TLSNone:
		return mail.NoTLS
	}
	return mail.TLSMandatory
}

// smtpAuth maps SMTP_AUTH to a go-mail mechanism. Auto discovery only
// offers challenge-response mechanisms on an unencrypted connection.
func smtpAuth(a string) mail.SMTPAuthType {
	switch a {
	case config.AuthPlain:
		return mail.SMTPAuthPlain
	case config.AuthLogin:
		return mail.SMTPAuthLogin
	case config.AuthCramMD5:
		return mail.SMTPAuthCramMD5
	}
	return mail.SMTPAuthAutoDiscover
}

// Open dials the server and authenticates. Any failure is a session error.
func (c *SMTPChannel) Open(ctx context.Context) (Session, error) {
	client, err := mail.NewClient(c.Env.Host, c.clientOptions()...)
	if err != nil {
		return nil, &SessionError{Op: "open", Err: err}
	}
	if err := client.DialWithContext(ctx); err != nil {
		return nil, &SessionError{Op: "open", Err: fmt.Errorf("connect to %s:%d: %w", c.Env.Host, c.Env.Port, err)}
	}
	return &smtpSession{client: client}, nil
}

type smtpSession struct {
	client *mail.Client
}

func (s *smtpSession) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := build(m)
	if err != nil {
		return err
	}
	if err := s.client.Send(msg); err != nil {
		return classifySendError(err)
	}
	return nil
}

func (s *smtpSession) Close() error {
	if err := s.client.Close(); err != nil {
		return &SessionError{Op: "close", Err: err}
	}
	return nil
}

// classifySendError separates recipient-level rejections from failures of
// the connection itself. A lost connection surfaces from go-mail as a
// SendError with reason ErrConnCheck; anything that is not a SendError did
// not reach the per-message protocol exchange.
func classifySendError(err error) error {
	var se *mail.SendError
	if !errors.As(err, &se) {
		return &SessionError{Op: "send", Err: err}
	}
	switch se.Reason {
	case mail.ErrConnCheck, mail.ErrSMTPReset:
		return &SessionError{Op: "send", Err: err}
	}
	if isAuthFailure(err) {
		return &SessionError{Op: "send", Err: err}
	}
	return err
}

// isAuthFailure detects servers that revoke authentication mid-session
// (SMTP 530/535 replies).
func isAuthFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "535 ") || strings.Contains(msg, "530 ")
}
