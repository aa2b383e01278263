package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// Kind selects one of the two outcome ledgers.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Status returns the entry status stored in ledgers of this kind.
func (k Kind) Status() core.Status {
	if k == KindSuccess {
		return core.StatusSent
	}
	return core.StatusFailed
}

// Backend persists ledgers in one concrete format.
type Backend interface {
	// Load returns the ledger's entries; found is false when no ledger exists yet.
	Load(kind Kind) (entries []core.LedgerEntry, found bool, err error)
	// Save atomically replaces the ledger with entries.
	Save(kind Kind, entries []core.LedgerEntry) error
	Close() error
}

// codec converts a whole ledger to and from file bytes.
type codec interface {
	decode(kind Kind, data []byte) ([]core.LedgerEntry, error)
	encode(kind Kind, entries []core.LedgerEntry) ([]byte, error)
}

// fileBackend stores each ledger in its own file, written via WriteFileAtomic.
type fileBackend struct {
	fsys  fs.FS
	paths map[Kind]string
	codec codec
}

func (b *fileBackend) Load(kind Kind) ([]core.LedgerEntry, bool, error) {
	data, err := b.fsys.ReadFile(b.paths[kind])
	if err != nil {
		if os.IsNotExist(err) {
			return []core.LedgerEntry{}, false, nil
		}
		return nil, true, err
	}
	// Every format this store writes has a header or body, even with no
	// entries, so an empty file was truncated outside tixmail
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true, &schemaError{Msg: "ledger file is empty"}
	}
	entries, err := b.codec.decode(kind, data)
	if err != nil {
		return nil, true, err
	}
	return entries, true, nil
}

func (b *fileBackend) Save(kind Kind, entries []core.LedgerEntry) error {
	data, err := b.codec.encode(kind, entries)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(b.fsys, b.paths[kind], data, 0o644)
}

func (b *fileBackend) Close() error { return nil }

// csvCodec is the tabular text format.
type csvCodec struct{}

func (csvCodec) decode(kind Kind, data []byte) ([]core.LedgerEntry, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return rowsToEntries(kind, rows)
}

func (csvCodec) encode(kind Kind, entries []core.LedgerEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(LedgerColumns); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write(entryToRow(e)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xlsxCodec is the spreadsheet format; one sheet named after the ledger kind.
type xlsxCodec struct{}

func (xlsxCodec) decode(kind Kind, data []byte) ([]core.LedgerEntry, error) {
	rows, err := readXLSXRows(data)
	if err != nil {
		return nil, err
	}
	return rowsToEntries(kind, rows)
}

func (xlsxCodec) encode(kind Kind, entries []core.LedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := string(kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(LedgerColumns))
	for i, c := range LedgerColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		var token interface{} = ""
		if e.Token != nil {
			token = *e.Token
		}
		row := []interface{}{e.Name, e.Email, e.Affiliation, e.Cohort, token, string(e.Status), e.Reason}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// jsonCodec is the structured-record format: an indented array of entries.
type jsonCodec struct{}

func (jsonCodec) decode(kind Kind, data []byte) ([]core.LedgerEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw []core.LedgerEntry
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	entries := make([]core.LedgerEntry, 0, len(raw))
	for i, e := range raw {
		checked, err := checkEntry(kind, e)
		if err != nil {
			if se, ok := err.(*schemaError); ok {
				se.Row = i + 1
			}
			return nil, err
		}
		entries = append(entries, checked)
	}
	return entries, nil
}

func (jsonCodec) encode(kind Kind, entries []core.LedgerEntry) ([]byte, error) {
	if entries == nil {
		entries = []core.LedgerEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
