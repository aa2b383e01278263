package store

import (
	"encoding/json"

	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// SnapshotStatus is the per-participant state shown in the snapshot.
type SnapshotStatus string

const (
	SnapshotSent    SnapshotStatus = "sent"
	SnapshotFailed  SnapshotStatus = "failed"
	SnapshotPending SnapshotStatus = "pending"
)

// SnapshotRecord is one roster participant as seen after a run.
type SnapshotRecord struct {
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Affiliation string         `json:"university_id,omitempty"`
	Cohort      string         `json:"year,omitempty"`
	Token       *int           `json:"token"`
	Status      SnapshotStatus `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	EmailSent   bool           `json:"emailSent"`
	Artifact    string         `json:"artifact,omitempty"`
	Digest      string         `json:"blake3,omitempty"`
}

// BuildSnapshot joins the roster with the merged ledgers. Artifact path and
// digest come from this run's outcomes, when the participant was processed.
// Roster order is kept; a duplicate roster email appears once.
func BuildSnapshot(roster []core.Participant, merged Ledgers, outcomes []core.Outcome) []SnapshotRecord {
	idx := merged.Index()

	produced := make(map[string]core.Outcome, len(outcomes))
	for _, o := range outcomes {
		if o.Kind == core.OutcomeSkipped {
			continue
		}
		produced[o.Participant.Key()] = o
	}

	seen := make(map[string]bool, len(roster))
	records := make([]SnapshotRecord, 0, len(roster))
	for _, p := range roster {
		key := p.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		rec := SnapshotRecord{
			Name:        p.Name,
			Email:       p.Email,
			Affiliation: p.Affiliation,
			Cohort:      p.Cohort,
			Status:      SnapshotPending,
		}
		if e, ok := idx.LookupParticipant(p); ok {
			rec.Token = e.Token
			rec.Reason = e.Reason
			rec.Status = SnapshotFailed
			if e.Status == core.StatusSent {
				rec.Status = SnapshotSent
				rec.EmailSent = true
			}
		}
		if o, ok := produced[key]; ok {
			rec.Artifact = o.ArtifactPath
			rec.Digest = o.Digest
		}
		records = append(records, rec)
	}
	return records
}

// ExportSnapshot writes the snapshot as an indented JSON array. It is
// observational only and never read back for resume.
// An unset snapshot path disables the export.
// Returns E_SNAPSHOT_FAILED on error.
func (s *Store) ExportSnapshot(records []SnapshotRecord) error {
	path := s.cfg.Ledger.Snapshot
	if path == "" {
		return nil
	}
	details := map[string]string{"path": path}

	if records == nil {
		records = []SnapshotRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.WrapWithDetails(errors.ESnapshotFailed, "failed to encode snapshot", err, details)
	}
	data = append(data, '\n')

	if err := fs.WriteFileAtomic(s.FS, path, data, 0o644); err != nil {
		return errors.WrapWithDetails(errors.ESnapshotFailed, "failed to write snapshot", err, details)
	}
	return nil
}
