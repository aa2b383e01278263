package store

import (
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/tixmail/internal/core"
)

// LedgerColumns is the canonical tabular ledger header.
var LedgerColumns = []string{"name", "email", "university_id", "year", "token", "status", "reason"}

// field identifies a logical column regardless of how the header spells it.
type field int

const (
	fieldUnknown field = iota
	fieldName
	fieldEmail
	fieldAffiliation
	fieldCohort
	fieldToken
	fieldStatus
	fieldReason
)

// headerAliases maps normalised header spellings to fields.
// Normalisation lowercases and drops spaces, underscores, hyphens and dots.
var headerAliases = map[string]field{
	"name":            fieldName,
	"fullname":        fieldName,
	"participantname": fieldName,
	"email":           fieldEmail,
	"emailaddress":    fieldEmail,
	"mail":            fieldEmail,
	"universityid":    fieldAffiliation,
	"affiliation":     fieldAffiliation,
	"affiliationid":   fieldAffiliation,
	"idno":            fieldAffiliation,
	"year":            fieldCohort,
	"cohort":          fieldCohort,
	"token":           fieldToken,
	"status":          fieldStatus,
	"reason":          fieldReason,
}

func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, h)
}

// headerMap resolves header cells to column indexes per field.
// The first occurrence of a field wins.
type headerMap map[field]int

func newHeaderMap(header []string) headerMap {
	m := make(headerMap)
	for i, h := range header {
		f, ok := headerAliases[normaliseHeader(h)]
		if !ok {
			continue
		}
		if _, seen := m[f]; !seen {
			m[f] = i
		}
	}
	return m
}

func (m headerMap) has(fields ...field) bool {
	for _, f := range fields {
		if _, ok := m[f]; !ok {
			return false
		}
	}
	return true
}

func (m headerMap) get(row []string, f field) string {
	i, ok := m[f]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// participant builds a participant from a tabular row.
func (m headerMap) participant(row []string) core.Participant {
	return core.Participant{
		Name:        m.get(row, fieldName),
		Email:       m.get(row, fieldEmail),
		Affiliation: m.get(row, fieldAffiliation),
		Cohort:      m.get(row, fieldCohort),
	}
}

// entryToRow renders a ledger entry in LedgerColumns order.
func entryToRow(e core.LedgerEntry) []string {
	token := ""
	if e.Token != nil {
		token = strconv.Itoa(*e.Token)
	}
	return []string{e.Name, e.Email, e.Affiliation, e.Cohort, token, string(e.Status), e.Reason}
}

// rowsToEntries parses tabular ledger rows (header first) for kind.
// A header lacking name, email, token or status is a schema error.
func rowsToEntries(kind Kind, rows [][]string) ([]core.LedgerEntry, error) {
	if len(rows) == 0 {
		return []core.LedgerEntry{}, nil
	}
	hm := newHeaderMap(rows[0])
	if !hm.has(fieldName, fieldEmail, fieldToken, fieldStatus) {
		return nil, &schemaError{Msg: "header must contain name, email, token and status", Row: 1}
	}

	entries := make([]core.LedgerEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		entry, err := parseRowEntry(kind, hm, row)
		if err != nil {
			if se, ok := err.(*schemaError); ok {
				se.Row = i + 2
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRowEntry(kind Kind, hm headerMap, row []string) (core.LedgerEntry, error) {
	e := core.LedgerEntry{
		Name:        hm.get(row, fieldName),
		Email:       hm.get(row, fieldEmail),
		Affiliation: hm.get(row, fieldAffiliation),
		Cohort:      hm.get(row, fieldCohort),
		Status:      core.Status(hm.get(row, fieldStatus)),
		Reason:      hm.get(row, fieldReason),
	}
	if token := hm.get(row, fieldToken); token != "" {
		v, err := strconv.Atoi(token)
		if err != nil {
			return e, &schemaError{Msg: "token is not an integer: " + token, Column: "token"}
		}
		e.Token = &v
	}
	return checkEntry(kind, e)
}

// checkEntry validates an entry against the ledger it was read from.
// A blank status takes the ledger's status.
func checkEntry(kind Kind, e core.LedgerEntry) (core.LedgerEntry, error) {
	if e.Email == "" && kind == KindSuccess {
		return e, &schemaError{Msg: "success entry without email", Column: "email"}
	}
	if e.Email == "" && e.Name == "" {
		return e, &schemaError{Msg: "entry without name or email", Column: "email"}
	}
	want := kind.Status()
	if e.Status == "" {
		e.Status = want
	}
	if e.Status != want {
		return e, &schemaError{Msg: "status " + string(e.Status) + " does not belong in the " + string(kind) + " ledger", Column: "status"}
	}
	if kind == KindSuccess && e.Token == nil {
		return e, &schemaError{Msg: "success entry without token", Column: "token"}
	}
	return e, nil
}

// schemaError describes a ledger or roster content problem.
type schemaError struct {
	Msg    string
	Row    int
	Column string
}

func (e *schemaError) Error() string {
	if e.Row > 0 {
		return "row " + strconv.Itoa(e.Row) + ": " + e.Msg
	}
	return e.Msg
}
