// Package render provides output formatting for tixmail commands.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/NielsdaWheelz/tixmail/internal/store"
)

// Constants for human output formatting.
const (
	// NameMaxLen is the maximum display length for names in human output.
	NameMaxLen = 40

	// NoToken is displayed when no token was issued.
	NoToken = "-"
)

// StatusRow holds the fields for a single human-output row.
// This is separate from SnapshotRecord to allow formatting before display.
type StatusRow struct {
	Name   string
	Email  string
	Token  string
	Status string
	Reason string
}

// WriteStatusHuman writes the status table in human-readable format.
// Fields are separated by whitespace columns for easy scanning.
func WriteStatusHuman(w io.Writer, rows []StatusRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "roster is empty")
		return err
	}

	widths := columnWidths(rows)

	header := formatRow(widths, StatusRow{Name: "NAME", Email: "EMAIL", Token: "TOKEN", Status: "STATUS", Reason: "REASON"})
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, formatRow(widths, row)); err != nil {
			return err
		}
	}
	return nil
}

// colWidths holds the calculated column widths.
type colWidths struct {
	name   int
	email  int
	token  int
	status int
}

// columnWidths calculates the maximum width for each column.
func columnWidths(rows []StatusRow) colWidths {
	widths := colWidths{
		name:   len("NAME"),
		email:  len("EMAIL"),
		token:  len("TOKEN"),
		status: len("STATUS"),
	}
	for _, row := range rows {
		widths.name = max(widths.name, len([]rune(row.Name)))
		widths.email = max(widths.email, len(row.Email))
		widths.token = max(widths.token, len(row.Token))
		widths.status = max(widths.status, len(row.Status))
	}
	return widths
}

// formatRow formats a row with the given column widths. The last column is
// not padded.
func formatRow(widths colWidths, row StatusRow) string {
	return fmt.Sprintf("%s  %-*s  %-*s  %-*s  %s",
		padRunes(row.Name, widths.name),
		widths.email, row.Email,
		widths.token, row.Token,
		widths.status, row.Status,
		row.Reason,
	)
}

// padRunes pads s with spaces to width runes.
func padRunes(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + fmt.Sprintf("%*s", width-n, "")
}

// FormatStatusRow converts a snapshot record to a StatusRow for display.
func FormatStatusRow(r store.SnapshotRecord) StatusRow {
	row := StatusRow{
		Name:   TruncateForDisplay(r.Name, NameMaxLen),
		Email:  r.Email,
		Token:  NoToken,
		Status: string(r.Status),
		Reason: r.Reason,
	}
	if r.Token != nil {
		row.Token = strconv.Itoa(*r.Token)
	}
	return row
}

// FormatStatusRows converts snapshot records to StatusRows.
func FormatStatusRows(records []store.SnapshotRecord) []StatusRow {
	rows := make([]StatusRow, len(records))
	for i, r := range records {
		rows[i] = FormatStatusRow(r)
	}
	return rows
}

// WriteStatusJSON writes records as an indented JSON array.
func WriteStatusJSON(w io.Writer, records []store.SnapshotRecord) error {
	if records == nil {
		records = []store.SnapshotRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// TruncateForDisplay safely truncates any string for display.
func TruncateForDisplay(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
