package sheets

import (
	"testing"

	"evidenca/internal/core"
)

func TestEntryRowRoundTrip(t *testing.T) {
	e := core.DailyEntry{
		Date:    core.NewDate(2024, 6, 2),
		Shifts:  []core.Shift{{ID: "a", Start: "22:00", End: "06:00"}},
		Comment: "nočna",
	}
	row, err := entryToRow(e)
	if err != nil {
		t.Fatalf("entryToRow: %v", err)
	}
	back, err := entryFromRow(row)
	if err != nil {
		t.Fatalf("entryFromRow: %v", err)
	}
	if back.Date.String() != "2024-06-02" || back.Comment != "nočna" {
		t.Fatalf("round trip changed entry: %+v", back)
	}
	if len(back.Shifts) != 1 || back.Shifts[0] != e.Shifts[0] {
		t.Fatalf("round trip changed shifts: %+v", back.Shifts)
	}
}

func TestEntryFromRowMalformed(t *testing.T) {
	cases := [][]interface{}{
		{},
		{"not-a-date", "[]", ""},
		{"2024-06-01", "{broken", ""},
	}
	for i, row := range cases {
		if _, err := entryFromRow(row); err == nil {
			t.Fatalf("case %d should fail", i)
		}
	}
}

func TestProfileRowRoundTrip(t *testing.T) {
	p := core.Profile{
		Username:     "aleks",
		PasswordHash: "$2a$10$x",
		HourlyRate:   core.Money{Cents: 900},
		Admin:        true,
	}
	back, err := profileFromRow(profileToRow(p))
	if err != nil {
		t.Fatalf("profileFromRow: %v", err)
	}
	if back != p {
		t.Fatalf("round trip changed profile: %+v vs %+v", back, p)
	}

	// Short rows fall back to zero values instead of failing.
	short, err := profileFromRow([]interface{}{"mojca"})
	if err != nil {
		t.Fatalf("short row: %v", err)
	}
	if short.Username != "mojca" || short.HourlyRate.Cents != 0 || short.Admin {
		t.Fatalf("unexpected short-row profile: %+v", short)
	}

	if _, err := profileFromRow([]interface{}{""}); err == nil {
		t.Fatal("empty username row should fail")
	}
}
