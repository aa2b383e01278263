package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/xuri/excelize/v2"

	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
)

// LoadRoster reads the roster. The format follows the file extension:
// .csv, .xlsx, or .json (comments and trailing commas allowed).
// Returns E_ROSTER_NOT_FOUND if the file is missing and E_ROSTER_INVALID
// if it cannot be parsed or lacks the name/email columns.
func (s *Store) LoadRoster() ([]core.Participant, error) {
	path := s.cfg.Roster
	details := map[string]string{"roster": path}

	data, err := s.FS.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWithDetails(errors.ERosterNotFound, "roster not found: "+path, details)
		}
		return nil, errors.WrapWithDetails(errors.ERosterInvalid, "failed to read roster", err, details)
	}

	var participants []core.Participant
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		participants, err = decodeRosterXLSX(data)
	case ".json", ".jsonc":
		participants, err = decodeRosterJSON(data)
	default:
		participants, err = decodeRosterCSV(data)
	}
	if err != nil {
		if se, ok := err.(*schemaError); ok && se.Row > 0 {
			details["row"] = fmt.Sprint(se.Row)
		}
		return nil, errors.WrapWithDetails(errors.ERosterInvalid, "invalid roster: "+err.Error(), err, details)
	}
	if len(participants) == 0 {
		return nil, errors.NewWithDetails(errors.ERosterInvalid, "invalid roster: roster is empty", details)
	}
	return participants, nil
}

func decodeRosterCSV(data []byte) ([]core.Participant, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return rowsToParticipants(rows)
}

func decodeRosterXLSX(data []byte) ([]core.Participant, error) {
	rows, err := readXLSXRows(data)
	if err != nil {
		return nil, err
	}
	return rowsToParticipants(rows)
}

func rowsToParticipants(rows [][]string) ([]core.Participant, error) {
	if len(rows) == 0 {
		return nil, &schemaError{Msg: "roster is empty"}
	}
	hm := newHeaderMap(rows[0])
	if !hm.has(fieldName, fieldEmail) {
		return nil, &schemaError{Msg: "header must contain name and email columns", Row: 1}
	}
	participants := make([]core.Participant, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		participants = append(participants, hm.participant(row))
	}
	return participants, nil
}

// decodeRosterJSON reads an array of objects, e.g. the participants.json
// written by earlier tooling: [{"name": ..., "email": ..., "universityId": ..., "year": ...}].
func decodeRosterJSON(data []byte) ([]core.Participant, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	participants := make([]core.Participant, 0, len(raw))
	for i, obj := range raw {
		values := make(map[field]string)
		for k, v := range obj {
			f, ok := headerAliases[normaliseHeader(k)]
			if !ok || v == nil {
				continue
			}
			if _, seen := values[f]; !seen {
				values[f] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		if _, ok := values[fieldEmail]; !ok {
			if _, ok := values[fieldName]; !ok {
				return nil, &schemaError{Msg: "object has neither name nor email", Row: i + 1}
			}
		}
		participants = append(participants, core.Participant{
			Name:        values[fieldName],
			Email:       values[fieldEmail],
			Affiliation: values[fieldAffiliation],
			Cohort:      values[fieldCohort],
		})
	}
	return participants, nil
}

// readXLSXRows returns the rows of the first sheet.
func readXLSXRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &schemaError{Msg: "workbook has no sheets"}
	}
	return f.GetRows(sheets[0])
}
