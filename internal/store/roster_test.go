package store

import (
	"os"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

func rosterStore(t *testing.T, name string, data []byte) *Store {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultEvent()
	cfg.Roster = dir + "/" + name
	cfg.Ledger.Success = dir + "/sent.csv"
	cfg.Ledger.Failure = dir + "/failed.csv"
	if data != nil {
		if err := os.WriteFile(cfg.Roster, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return NewStore(fs.NewRealFS(), cfg)
}

func TestLoadRoster_CSV(t *testing.T) {
	data := "\ufeffName,Email,universityId,Year,Notes\n" +
		"Ann Lee,ann@x.com,U-1,2,hi\n" +
		",,,,\n" +
		"Bo,not-an-email,,,\n"
	s := rosterStore(t, "participants.csv", []byte(data))

	got, err := s.LoadRoster()
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	want := []core.Participant{
		{Name: "Ann Lee", Email: "ann@x.com", Affiliation: "U-1", Cohort: "2"},
		{Name: "Bo", Email: "not-an-email"},
	}
	assertParticipants(t, got, want)
}

func TestLoadRoster_XLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"name", "email", "universityId", "Year"},
		{"Ann Lee", "ann@x.com", "U-1", 2},
		{"Bo", "bo@x.com"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	s := rosterStore(t, "participants.xlsx", buf.Bytes())
	got, err := s.LoadRoster()
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	want := []core.Participant{
		{Name: "Ann Lee", Email: "ann@x.com", Affiliation: "U-1", Cohort: "2"},
		{Name: "Bo", Email: "bo@x.com"},
	}
	assertParticipants(t, got, want)
}

func TestLoadRoster_JSONC(t *testing.T) {
	data := `[
  // exported from the registration form
  {"name": "Ann Lee", "email": "ann@x.com", "universityId": "U-1", "year": 2, "Token": 1000, "emailSent": true},
  {"name": "Bo", "email": "bo@x.com",},
]`
	s := rosterStore(t, "participants.json", []byte(data))

	got, err := s.LoadRoster()
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	want := []core.Participant{
		{Name: "Ann Lee", Email: "ann@x.com", Affiliation: "U-1", Cohort: "2"},
		{Name: "Bo", Email: "bo@x.com"},
	}
	assertParticipants(t, got, want)
}

func TestLoadRoster_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     []byte
		wantCode errors.Code
	}{
		{"missing file", "participants.csv", nil, errors.ERosterNotFound},
		{"missing email column", "participants.csv", []byte("name,phone\nAnn,1\n"), errors.ERosterInvalid},
		{"empty csv", "participants.csv", []byte(""), errors.ERosterInvalid},
		{"header-only csv", "participants.csv", []byte("name,email\n"), errors.ERosterInvalid},
		{"empty json array", "participants.json", []byte("[]"), errors.ERosterInvalid},
		{"bad json", "participants.json", []byte(`{"name": "Ann"}`), errors.ERosterInvalid},
		{"bad xlsx", "participants.xlsx", []byte("nope"), errors.ERosterInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rosterStore(t, tt.file, tt.data)
			_, err := s.LoadRoster()
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Fatalf("error code = %q, want %q (err = %v)", got, tt.wantCode, err)
			}
			te, _ := errors.AsTixError(err)
			if te.Details["roster"] == "" {
				t.Error("roster detail missing")
			}
		})
	}
}

func TestNormaliseHeader(t *testing.T) {
	tests := map[string]string{
		"Email Address": "emailaddress",
		"university_id": "universityid",
		"\ufeffName":    "name",
		"ID No.":        "idno",
		" Year ":        "year",
	}
	for in, want := range tests {
		if got := normaliseHeader(in); got != want {
			t.Errorf("normaliseHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func assertParticipants(t *testing.T, got, want []core.Participant) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
