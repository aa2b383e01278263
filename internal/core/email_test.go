package core

import "testing"

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ann@x.com", true},
		{"first.last+tag@sub.example.org", true},
		{"  padded@example.com  ", true},
		{"not-an-email", false},
		{"", false},
		{"@x.com", false},
		{"ann@", false},
		{"ann@localhost", false},
		{"ann@x.", false},
		{"ann@@x.com", false},
		{"a b@x.com", false},
		{"ann@x.com@y.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestEmailKey(t *testing.T) {
	if got := EmailKey("  Ann@X.com "); got != "ann@x.com" {
		t.Errorf("EmailKey() = %q", got)
	}
	p := Participant{Email: "BO@Example.com"}
	if p.Key() != "bo@example.com" {
		t.Errorf("Participant.Key() = %q", p.Key())
	}
}

func TestKey_BlankEmailFallsBackToName(t *testing.T) {
	p := Participant{Name: " Di Ng "}
	if p.Key() != "name:di ng" {
		t.Errorf("Participant.Key() = %q", p.Key())
	}
	e := FailedEntry(p, nil, ReasonInvalidEmail)
	if e.Key() != p.Key() {
		t.Errorf("LedgerEntry.Key() = %q, want %q", e.Key(), p.Key())
	}
}
