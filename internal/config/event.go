package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// DefaultEventFile is the event config file name looked up by default.
const DefaultEventFile = "tixmail.yaml"

// Event is the parsed event configuration.
type Event struct {
	Version     int          `yaml:"version"`
	Info        EventInfo    `yaml:"event"`
	BaseToken   int          `yaml:"base_token"`
	RetryFailed bool         `yaml:"retry_failed"`
	Roster      string       `yaml:"roster"`
	Ledger      LedgerSpec   `yaml:"ledger"`
	Artifact    ArtifactSpec `yaml:"artifact"`
	Message     MessageSpec  `yaml:"message"`
	StateDir    string       `yaml:"state_dir"`

	// Dir is the directory relative paths were resolved against. Not read from YAML.
	Dir string `yaml:"-"`
}

// EventInfo describes the event printed on tickets.
type EventInfo struct {
	Title string `yaml:"title"`
	Dates string `yaml:"dates"`
}

// LedgerSpec locates the outcome ledgers and the snapshot.
type LedgerSpec struct {
	// Format is csv, xlsx, json or sqlite. Empty means infer from the success path extension.
	Format                   string `yaml:"format"`
	Success                  string `yaml:"success"`
	Failure                  string `yaml:"failure"`
	Snapshot                 string `yaml:"snapshot"`
	RetainSupersededFailures bool   `yaml:"retain_superseded_failures"`
}

// ArtifactSpec selects and parameterises the ticket renderer.
type ArtifactSpec struct {
	Kind       string `yaml:"kind"` // image or pdf
	Template   string `yaml:"template"`
	Font       string `yaml:"font"`
	OutputDir  string `yaml:"output_dir"`
	TitleSize  int    `yaml:"title_size"`
	DetailSize int    `yaml:"detail_size"`
}

// MessageSpec is the email subject and the text/template body.
// The body template sees .Name, .Email, .Token, .Affiliation, .Cohort, .Event.
type MessageSpec struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// Artifact kinds.
const (
	ArtifactImage = "image"
	ArtifactPDF   = "pdf"
)

// DefaultSubject is the default email subject.
const DefaultSubject = "Your Hackathon Participation Token"

// DefaultBody is the default plain-text message body.
const DefaultBody = `Hi {{.Name}},

Your token is: {{.Token}}.

Please find your ticket attached.

Best regards,
Team
`

// DefaultEvent returns built-in defaults used when tixmail.yaml is missing.
// Paths are relative until resolved by LoadEvent.
func DefaultEvent() Event {
	return Event{
		Version:     1,
		Info:        EventInfo{Title: "Hackathon"},
		BaseToken:   1000,
		RetryFailed: true,
		Roster:      "participants.xlsx",
		Ledger: LedgerSpec{
			Success:  "sent_participants.csv",
			Failure:  "failed_email_participants.csv",
			Snapshot: "participants_snapshot.json",
		},
		Artifact: ArtifactSpec{
			Kind:       ArtifactImage,
			Template:   "ticket.png",
			OutputDir:  "tickets",
			TitleSize:  70,
			DetailSize: 60,
		},
		Message: MessageSpec{
			Subject: DefaultSubject,
			Body:    DefaultBody,
		},
		StateDir: ".tixmail",
	}
}

// LoadEvent loads and validates the event config at path.
// If the file is missing, returns defaults resolved against the file's
// directory with found=false. If the file exists but is invalid, returns
// E_INVALID_EVENT_CONFIG.
func LoadEvent(filesystem fs.FS, path string) (Event, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Event{}, false, errors.Wrap(errors.EInternal, "failed to resolve config path", err)
	}
	dir := filepath.Dir(absPath)

	data, err := filesystem.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultEvent()
			cfg.resolve(dir)
			return cfg, false, nil
		}
		return Event{}, false, errors.WrapWithDetails(errors.EInvalidEventConfig, "failed to read event config", err,
			map[string]string{"config": absPath})
	}

	cfg, err := ParseEvent(data)
	if err != nil {
		return Event{}, false, withConfigPath(err, absPath)
	}
	cfg.resolve(dir)

	if err := ValidateEvent(cfg); err != nil {
		return Event{}, false, withConfigPath(err, absPath)
	}
	return cfg, true, nil
}

// ParseEvent decodes YAML over the defaults. Unknown keys are rejected.
// Paths are left unresolved.
func ParseEvent(data []byte) (Event, error) {
	cfg := DefaultEvent()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Event{}, errors.Wrap(errors.EInvalidEventConfig, "invalid yaml: "+err.Error(), err)
	}
	return cfg, nil
}

// Marshal renders the config as YAML (used by init).
func (e Event) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Event) resolve(dir string) {
	e.Dir = dir
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	e.Roster = abs(e.Roster)
	e.Ledger.Success = abs(e.Ledger.Success)
	e.Ledger.Failure = abs(e.Ledger.Failure)
	e.Ledger.Snapshot = abs(e.Ledger.Snapshot)
	e.Artifact.Template = abs(e.Artifact.Template)
	e.Artifact.Font = abs(e.Artifact.Font)
	e.Artifact.OutputDir = abs(e.Artifact.OutputDir)
	e.StateDir = abs(e.StateDir)
}

// EventsPath returns the run event log location.
func (e Event) EventsPath() string {
	return filepath.Join(e.StateDir, "events.jsonl")
}

// OutboxDir returns where dry runs write messages.
func (e Event) OutboxDir() string {
	return filepath.Join(e.StateDir, "outbox")
}

func withConfigPath(err error, path string) error {
	te, ok := errors.AsTixError(err)
	if !ok {
		return errors.WrapWithDetails(errors.EInvalidEventConfig, err.Error(), err, map[string]string{"config": path})
	}
	details := map[string]string{"config": path}
	for k, v := range te.Details {
		details[k] = v
	}
	return errors.WrapWithDetails(te.Code, te.Msg, te.Cause, details)
}
