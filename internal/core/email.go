package core

import (
	"regexp"
	"strings"
)

// emailPattern is a syntactic check only: local part, "@", and a domain
// containing a dot with something on both sides. Deliverability is not checked.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether email is syntactically well formed.
// Surrounding whitespace is ignored.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
