package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/NielsdaWheelz/tixmail/internal/batch"
	"github.com/NielsdaWheelz/tixmail/internal/store"
)

func intPtr(v int) *int { return &v }

func TestWriteStatusHuman(t *testing.T) {
	records := []store.SnapshotRecord{
		{Name: "Zoë Åberg", Email: "zoe@x.com", Token: intPtr(1000), Status: store.SnapshotSent, EmailSent: true},
		{Name: "Bo", Email: "not-an-email", Status: store.SnapshotFailed, Reason: "invalid email"},
		{Name: "Cy", Email: "cy@x.com", Status: store.SnapshotPending},
	}

	var buf bytes.Buffer
	if err := WriteStatusHuman(&buf, FormatStatusRows(records)); err != nil {
		t.Fatal(err)
	}

	want := "" +
		"NAME       EMAIL         TOKEN  STATUS   REASON\n" +
		"Zoë Åberg  zoe@x.com     1000   sent     \n" +
		"Bo         not-an-email  -      failed   invalid email\n" +
		"Cy         cy@x.com      -      pending  \n"
	if buf.String() != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteStatusHuman_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatusHuman(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "roster is empty\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteStatusJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatusJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	var out []any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil || out == nil || len(out) != 0 {
		t.Errorf("WriteStatusJSON(nil) = %q", buf.String())
	}
}

func TestTruncateForDisplay(t *testing.T) {
	if got := TruncateForDisplay("abcdef", 4); got != "abc…" {
		t.Errorf("got %q", got)
	}
	if got := TruncateForDisplay("abc", 4); got != "abc" {
		t.Errorf("got %q", got)
	}
}

func TestWriteShowHuman(t *testing.T) {
	var buf bytes.Buffer
	err := WriteShowHuman(&buf, ShowData{Name: "Ann", Email: "ann@x.com", Token: intPtr(1000), Status: "sent"})
	if err != nil {
		t.Fatal(err)
	}
	want := "name: Ann\nemail: ann@x.com\nuniversity_id: none\nyear: none\ntoken: 1000\nstatus: sent\nreason: none\nartifact: none\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteSummary(t *testing.T) {
	sum := &batch.Summary{
		RunID:     "run-1",
		Skipped:   1,
		Succeeded: 2,
		Failed:    2,
		Reasons:   map[string]int{"invalid email": 1, "delivery failure": 1},
	}

	var buf bytes.Buffer
	WriteSummary(&buf, sum, NewStyles(&buf))

	out := buf.String()
	for _, want := range []string{
		"run: run-1\n",
		"skipped: 1\n",
		"succeeded: 2\n",
		"failed: 2\n  delivery failure: 1\n  invalid email: 1\n",
		"pending: 0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour codes written to a non-terminal")
	}
	if strings.Contains(out, "not_selected") {
		t.Error("not_selected shown without --only")
	}
}
