// Package events provides the per-event audit log for tixmail runs.
// Events are stored in an append-only JSONL file under the state dir.
package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/NielsdaWheelz/tixmail/internal/core"
)

// SchemaVersion is the events.jsonl record version.
const SchemaVersion = "1.0"

// Event names.
const (
	BatchStart         = "batch_start"
	ParticipantOutcome = "participant_outcome"
	BatchEnd           = "batch_end"
	BatchAborted       = "batch_aborted"
)

// Event represents a single event in events.jsonl.
// This is the public contract for the events file format.
type Event struct {
	SchemaVersion string         `json:"schema_version"`
	Timestamp     string         `json:"timestamp"` // RFC3339
	RunID         string         `json:"run_id"`
	Event         string         `json:"event"`
	Data          map[string]any `json:"data,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// AppendEvent appends a single event to the events.jsonl file.
// The file is created lazily if it doesn't exist.
// Each event is written as a single JSON line followed by newline.
//
// Best-effort: errors are returned but callers should typically ignore them
// and continue with the main operation.
func AppendEvent(path string, e Event) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// ReadEvents returns every well-formed event in path, oldest first.
// A missing file yields no events. Lines that fail to parse (a write cut
// short by a crash) are skipped.
func ReadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Event
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// Recorder stamps events with one run ID and appends them to a log.
// The zero Path disables recording.
type Recorder struct {
	Path  string
	RunID string
	Now   func() time.Time
}

// NewRecorder returns a recorder for a new run.
func NewRecorder(path string, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{Path: path, RunID: NewRunID(), Now: now}
}

// Emit appends one event. Best-effort, like AppendEvent.
func (r *Recorder) Emit(name string, data map[string]any) error {
	if r == nil || r.Path == "" {
		return nil
	}
	return AppendEvent(r.Path, Event{
		SchemaVersion: SchemaVersion,
		Timestamp:     r.Now().UTC().Format(time.RFC3339),
		RunID:         r.RunID,
		Event:         name,
		Data:          data,
	})
}

// BatchStartData returns the data map for a batch_start event.
func BatchStartData(roster string, participants, runBase int, dryRun bool) map[string]any {
	return map[string]any{
		"roster":       roster,
		"participants": participants,
		"run_base":     runBase,
		"dry_run":      dryRun,
	}
}

// OutcomeData returns the data map for a participant_outcome event.
// Error messages are bounded to 512 bytes.
func OutcomeData(o core.Outcome) map[string]any {
	const maxErrLen = 512

	data := map[string]any{
		"position": o.Position,
		"email":    o.Participant.Email,
		"outcome":  string(o.Kind),
	}
	if o.Token != nil {
		data["token"] = *o.Token
	}
	if o.Reason != "" {
		data["reason"] = o.Reason
	}
	if o.ArtifactPath != "" {
		data["artifact"] = o.ArtifactPath
	}
	if o.Digest != "" {
		data["blake3"] = o.Digest
	}
	if o.Err != nil {
		msg := o.Err.Error()
		if len(msg) > maxErrLen {
			msg = msg[:maxErrLen]
		}
		data["error"] = msg
	}
	return data
}

// BatchEndData returns the data map for a batch_end event.
func BatchEndData(skipped, succeeded, failed int, durationMS int64) map[string]any {
	return map[string]any{
		"skipped":     skipped,
		"succeeded":   succeeded,
		"failed":      failed,
		"duration_ms": durationMS,
	}
}

// BatchAbortedData returns the data map for a batch_aborted event.
func BatchAbortedData(errorCode string, processed int, reason string) map[string]any {
	data := map[string]any{
		"error_code": errorCode,
		"processed":  processed,
	}
	if reason != "" {
		data["reason"] = reason
	}
	return data
}
