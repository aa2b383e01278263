// Package core holds the tixmail domain types and the pure rules applied to
// them: email validation, token issuance and artifact naming.
package core

import "strings"

// Participant is one roster row. Immutable for the duration of a run.
type Participant struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Affiliation string `json:"university_id,omitempty"`
	Cohort      string `json:"year,omitempty"`
}

// Key returns the identity used for ledger membership: the email address,
// trimmed and lowercased. Rows without an email fall back to the name.
func (p Participant) Key() string {
	return identityKey(p.Name, p.Email)
}

func identityKey(name, email string) string {
	if k := EmailKey(email); k != "" {
		return k
	}
	return "name:" + strings.ToLower(strings.TrimSpace(name))
}

// EmailKey normalises an email address for ledger lookups.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Status is the persisted processing state of a ledger entry.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Failure reasons recorded in the failure ledger.
const (
	ReasonInvalidEmail    = "invalid email"
	ReasonRenderFailure   = "render failure"
	ReasonDeliveryFailure = "delivery failure"
)

// LedgerEntry is a persisted record in the success or failure ledger.
// Token is nil when none was issued (invalid email).
type LedgerEntry struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Affiliation string `json:"university_id,omitempty"`
	Cohort      string `json:"year,omitempty"`
	Token       *int   `json:"token"`
	Status      Status `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

// Key returns the identity used for ledger membership, as Participant.Key.
func (e LedgerEntry) Key() string {
	return identityKey(e.Name, e.Email)
}

// Participant returns the identity fields of the entry.
func (e LedgerEntry) Participant() Participant {
	return Participant{Name: e.Name, Email: e.Email, Affiliation: e.Affiliation, Cohort: e.Cohort}
}

// SentEntry builds a success ledger entry.
func SentEntry(p Participant, token int) LedgerEntry {
	t := token
	return LedgerEntry{
		Name:        p.Name,
		Email:       p.Email,
		Affiliation: p.Affiliation,
		Cohort:      p.Cohort,
		Token:       &t,
		Status:      StatusSent,
	}
}

// FailedEntry builds a failure ledger entry. token may be nil.
func FailedEntry(p Participant, token *int, reason string) LedgerEntry {
	var t *int
	if token != nil {
		v := *token
		t = &v
	}
	return LedgerEntry{
		Name:        p.Name,
		Email:       p.Email,
		Affiliation: p.Affiliation,
		Cohort:      p.Cohort,
		Token:       t,
		Status:      StatusFailed,
		Reason:      reason,
	}
}
