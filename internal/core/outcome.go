package core

// OutcomeKind classifies what happened to a participant in one run.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
	OutcomeSkipped OutcomeKind = "skipped"
)

// Outcome is produced exactly once per participant per run.
//
// Success carries Token and ArtifactPath. Failure carries Reason and, for
// render and delivery failures, the Token that was issued. Skipped carries
// neither.
type Outcome struct {
	Kind         OutcomeKind
	Position     int
	Participant  Participant
	Token        *int
	ArtifactPath string
	Digest       string
	Reason       string
	Err          error
}

// Success builds a delivered outcome.
func Success(position int, p Participant, token int, artifactPath, digest string) Outcome {
	t := token
	return Outcome{
		Kind:         OutcomeSuccess,
		Position:     position,
		Participant:  p,
		Token:        &t,
		ArtifactPath: artifactPath,
		Digest:       digest,
	}
}

// Failure builds a failed outcome. token is nil when none was issued.
func Failure(position int, p Participant, token *int, reason string, err error) Outcome {
	var t *int
	if token != nil {
		v := *token
		t = &v
	}
	return Outcome{
		Kind:        OutcomeFailure,
		Position:    position,
		Participant: p,
		Token:       t,
		Reason:      reason,
		Err:         err,
	}
}

// Skipped builds an outcome for a participant already processed.
func Skipped(position int, p Participant) Outcome {
	return Outcome{Kind: OutcomeSkipped, Position: position, Participant: p}
}

// Entry converts a non-skipped outcome to the ledger entry it records.
// The second result is false for skipped outcomes.
func (o Outcome) Entry() (LedgerEntry, bool) {
	switch o.Kind {
	case OutcomeSuccess:
		return SentEntry(o.Participant, *o.Token), true
	case OutcomeFailure:
		return FailedEntry(o.Participant, o.Token, o.Reason), true
	}
	return LedgerEntry{}, false
}
