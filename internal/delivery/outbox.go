package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutboxChannel writes each message as an RFC 5322 .eml file instead of
// sending it. Used by dry runs and for previewing a batch.
type OutboxChannel struct {
	Dir string
}

// NewOutboxChannel returns a channel writing into dir.
func NewOutboxChannel(dir string) *OutboxChannel {
	return &OutboxChannel{Dir: dir}
}

// Open creates the outbox directory.
func (c *OutboxChannel) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SessionError{Op: "open", Err: err}
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, &SessionError{Op: "open", Err: err}
	}
	return &outboxSession{dir: c.Dir}, nil
}

type outboxSession struct {
	dir string
	seq int
}

func (s *outboxSession) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := build(m)
	if err != nil {
		return err
	}
	s.seq++
	path := filepath.Join(s.dir, fmt.Sprintf("%04d_%s.eml", s.seq, mailboxFileName(m.To)))
	if err := msg.WriteToFile(path); err != nil {
		return fmt.Errorf("write outbox message: %w", err)
	}
	return nil
}

func (s *outboxSession) Close() error { return nil }

// mailboxFileName turns an address into a safe file name component.
func mailboxFileName(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	return strings.Map(func(r rune) rune {
		switch {
		case r == '@':
			return '_'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			return r
		}
		return -1
	}, addr)
}
