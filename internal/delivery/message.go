package delivery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/wneessen/go-mail"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/core"
)

// BodyData is what the message body template sees.
type BodyData struct {
	Name        string
	Email       string
	Token       int
	Affiliation string
	Cohort      string
	Event       config.EventInfo
}

// Composer builds messages from the configured subject and body template.
type Composer struct {
	from    string
	subject string
	body    *template.Template
	event   config.EventInfo
}

// NewComposer parses the body template once for the whole run.
func NewComposer(from string, spec config.MessageSpec, event config.EventInfo) (*Composer, error) {
	body, err := template.New("body").Option("missingkey=error").Parse(spec.Body)
	if err != nil {
		return nil, fmt.Errorf("parse message body: %w", err)
	}
	return &Composer{from: from, subject: spec.Subject, body: body, event: event}, nil
}

// Compose returns the message carrying attachmentPath to p.
func (c *Composer) Compose(p core.Participant, token int, attachmentPath string) (Message, error) {
	var buf bytes.Buffer
	err := c.body.Execute(&buf, BodyData{
		Name:        p.Name,
		Email:       p.Email,
		Token:       token,
		Affiliation: p.Affiliation,
		Cohort:      p.Cohort,
		Event:       c.event,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render message body: %w", err)
	}
	return Message{
		From:           c.from,
		To:             p.Email,
		Subject:        c.subject,
		Body:           buf.String(),
		AttachmentPath: attachmentPath,
		AttachmentName: filepath.Base(attachmentPath),
	}, nil
}

// build converts a Message to a go-mail message. Errors here concern the
// message itself (bad address, unreadable attachment), never the session.
func build(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	if m.AttachmentPath != "" {
		if _, err := os.Stat(m.AttachmentPath); err != nil {
			return nil, fmt.Errorf("attachment: %w", err)
		}
		name := m.AttachmentName
		if name == "" {
			name = filepath.Base(m.AttachmentPath)
		}
		msg.AttachFile(m.AttachmentPath, mail.WithFileName(name))
	}
	return msg, nil
}
