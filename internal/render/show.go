package render

import (
	"fmt"
	"io"
	"strconv"
)

// ShowData holds the data for human show output.
type ShowData struct {
	Name        string
	Email       string
	Affiliation string
	Cohort      string
	Token       *int
	Status      string // sent, failed, pending
	Reason      string
	Artifact    string // may be empty if not rendered yet
}

// WriteShowHuman writes a single participant as plain key/value lines in
// a fixed order. Empty values print as "none".
func WriteShowHuman(w io.Writer, data ShowData) error {
	token := "none"
	if data.Token != nil {
		token = strconv.Itoa(*data.Token)
	}

	lines := []struct {
		key   string
		value string
	}{
		{"name", data.Name},
		{"email", data.Email},
		{"university_id", data.Affiliation},
		{"year", data.Cohort},
		{"token", token},
		{"status", data.Status},
		{"reason", data.Reason},
		{"artifact", data.Artifact},
	}

	for _, line := range lines {
		value := line.value
		if value == "" {
			value = "none"
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", line.key, value); err != nil {
			return err
		}
	}
	return nil
}
