package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	entries := []DailyEntry{
		{Date: NewDate(2024, 6, 1), Shifts: []Shift{{Start: "08:00", End: "16:00"}}},
		{Date: NewDate(2024, 6, 2), Shifts: []Shift{{Start: "22:00", End: "06:00"}}, Comment: "nočna"},
		{Date: NewDate(2024, 6, 3), Comment: "prost dan"}, // zero hours, must not appear
	}
	summary := Summarize(entries, WorkMonth{Year: 2024, Month: 6}, Money{Cents: 1000})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, summary, slFormatter(t)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"Date;Hours;Comment;Amount",
		"1. 6. 2024;8,0;;80,00",
		"2. 6. 2024;8,0;nočna;80,00",
		"Total;16,0;;160,00",
	}
	if len(lines) != len(want) {
		t.Fatalf("CSV has %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestBackupValidate(t *testing.T) {
	good := NewBackup("mojca", Money{Cents: 900}, []DailyEntry{{Date: NewDate(2024, 6, 1), Comment: "x"}})
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if good.Version != BackupVersion || good.HourlyRate != 9 {
		t.Fatalf("unexpected backup header: %+v", good)
	}

	if err := (Backup{Entries: []DailyEntry{}}).Validate(); err != ErrBackupUsername {
		t.Fatalf("missing username: got %v", err)
	}
	if err := (Backup{Username: "mojca"}).Validate(); err != ErrBackupEntries {
		t.Fatalf("missing entries: got %v", err)
	}
}

func TestBackupJSONRoundTrip(t *testing.T) {
	entries := []DailyEntry{
		{Date: NewDate(2024, 6, 1), Shifts: []Shift{NewShift("08:00", "16:00")}},
		{Date: NewDate(2024, 6, 2), Shifts: []Shift{NewShift("22:00", "06:00")}, Comment: "nočna"},
	}
	raw, err := json.Marshal(NewBackup("mojca", Money{Cents: 900}, entries))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Backup
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := back.Validate(); err != nil {
		t.Fatalf("re-imported backup invalid: %v", err)
	}
	if len(back.Entries) != len(entries) {
		t.Fatalf("entry count changed: %d -> %d", len(entries), len(back.Entries))
	}
	for i, e := range back.Entries {
		orig := entries[i]
		if e.Date.String() != orig.Date.String() || e.Comment != orig.Comment {
			t.Fatalf("entry %d changed: %+v vs %+v", i, e, orig)
		}
		if len(e.Shifts) != len(orig.Shifts) {
			t.Fatalf("entry %d shift count changed", i)
		}
		for j, s := range e.Shifts {
			if s != orig.Shifts[j] {
				t.Fatalf("entry %d shift %d changed: %+v vs %+v", i, j, s, orig.Shifts[j])
			}
		}
	}

	// The entries array must be present even when empty.
	empty, _ := json.Marshal(NewBackup("mojca", Money{}, nil))
	if !strings.Contains(string(empty), `"entries":[]`) {
		t.Fatalf("empty backup must serialize an entries array: %s", empty)
	}
}
