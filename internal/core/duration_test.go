package core

import (
	"fmt"
	"testing"
)

func TestShiftHours(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  float64
	}{
		{"regular day shift", "08:00", "16:00", 8},
		{"half hour granularity", "08:00", "16:30", 8.5},
		{"overnight", "22:00", "06:00", 8},
		{"overnight short", "23:30", "00:15", 0.75},
		{"zero length is zero not a full day", "09:00", "09:00", 0},
		{"midnight to midnight", "00:00", "00:00", 0},
		{"one minute before wrap", "00:00", "23:59", 23.0 + 59.0/60.0},
		{"missing start", "", "16:00", 0},
		{"missing end", "08:00", "", 0},
		{"garbage start", "8am", "16:00", 0},
		{"hour out of range", "24:00", "01:00", 0},
		{"minute out of range", "08:60", "09:00", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShiftHours(Shift{Start: tc.start, End: tc.end})
			if got != tc.want {
				t.Fatalf("ShiftHours(%q, %q) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestShiftHoursRange(t *testing.T) {
	// Every valid pair must land in [0, 24).
	for startH := 0; startH < 24; startH += 3 {
		for endH := 0; endH < 24; endH += 3 {
			for _, m := range []string{"00", "30", "59"} {
				s := Shift{
					Start: fmt.Sprintf("%02d:00", startH),
					End:   fmt.Sprintf("%02d:%s", endH, m),
				}
				h := ShiftHours(s)
				if h < 0 || h >= 24 {
					t.Fatalf("ShiftHours(%q, %q) = %v, out of [0,24)", s.Start, s.End, h)
				}
			}
		}
	}
}

func TestDailyHoursAdditivity(t *testing.T) {
	empty := DailyEntry{Date: NewDate(2024, 6, 1)}
	if got := DailyHours(empty); got != 0 {
		t.Fatalf("DailyHours of empty entry = %v, want 0", got)
	}

	entry := DailyEntry{
		Date: NewDate(2024, 6, 1),
		Shifts: []Shift{
			{Start: "06:00", End: "10:00"},
			{Start: "14:00", End: "18:30"},
			{Start: "bad", End: "20:00"}, // degrades to 0, never errors
		},
	}
	want := ShiftHours(entry.Shifts[0]) + ShiftHours(entry.Shifts[1]) + ShiftHours(entry.Shifts[2])
	if got := DailyHours(entry); got != want {
		t.Fatalf("DailyHours = %v, want sum of shifts %v", got, want)
	}
	if got := DailyHours(entry); got != 8.5 {
		t.Fatalf("DailyHours = %v, want 8.5", got)
	}
}
