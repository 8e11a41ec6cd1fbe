package core

import (
	"testing"
)

func june2024Entries() []DailyEntry {
	return []DailyEntry{
		{Date: NewDate(2024, 6, 1), Shifts: []Shift{{Start: "08:00", End: "16:00"}}},
		{Date: NewDate(2024, 6, 2), Shifts: []Shift{{Start: "22:00", End: "06:00"}}},
	}
}

func TestMonthHoursScenario(t *testing.T) {
	m := WorkMonth{Year: 2024, Month: 6}
	if got := MonthHours(june2024Entries(), m); got != 16 {
		t.Fatalf("MonthHours = %v, want 16", got)
	}
	rate := Money{Cents: 1000} // 10.00/h
	if got := MonthEarnings(june2024Entries(), m, rate); got.Cents != 16000 {
		t.Fatalf("MonthEarnings = %d cents, want 16000", got.Cents)
	}
}

func TestMonthHoursBoundary(t *testing.T) {
	entries := append(june2024Entries(),
		DailyEntry{Date: NewDate(2024, 5, 31), Shifts: []Shift{{Start: "08:00", End: "12:00"}}},
		DailyEntry{Date: NewDate(2024, 7, 1), Shifts: []Shift{{Start: "08:00", End: "12:00"}}},
	)
	if got := MonthHours(entries, WorkMonth{Year: 2024, Month: 6}); got != 16 {
		t.Fatalf("entries one day outside the month leaked in: got %v hours, want 16", got)
	}
}

func TestMonthEarningsRates(t *testing.T) {
	m := WorkMonth{Year: 2024, Month: 6}
	entries := june2024Entries()
	cases := []struct {
		rateCents int64
		want      int64
	}{
		{0, 0},
		{900, 14400},  // 9.00/h
		{1250, 20000}, // 12.50/h
	}
	for _, tc := range cases {
		got := MonthEarnings(entries, m, Money{Cents: tc.rateCents})
		if got.Cents != tc.want {
			t.Fatalf("rate %d: earnings = %d, want %d", tc.rateCents, got.Cents, tc.want)
		}
	}
}

func TestSummarizeWholeMonth(t *testing.T) {
	entries := []DailyEntry{
		{Date: NewDate(2024, 6, 15), Shifts: []Shift{{Start: "09:00", End: "17:00"}}, Comment: "inventura"},
		// Explicit zero-hour day: recorded, but contributes nothing.
		{Date: NewDate(2024, 6, 16), Comment: "prost dan"},
	}
	s := Summarize(entries, WorkMonth{Year: 2024, Month: 6}, Money{Cents: 900})

	if len(s.Days) != 30 {
		t.Fatalf("June summary has %d rows, want 30", len(s.Days))
	}
	for i, day := range s.Days {
		if day.Date.Day() != i+1 {
			t.Fatalf("row %d is %s, rows must ascend from the 1st", i, day.Date)
		}
	}
	if s.TotalHours != 8 {
		t.Fatalf("TotalHours = %v, want 8", s.TotalHours)
	}
	if s.Total.Cents != 7200 {
		t.Fatalf("Total = %d cents, want 7200", s.Total.Cents)
	}

	day15 := s.Days[14]
	if !day15.Recorded || day15.Hours != 8 || day15.Comment != "inventura" {
		t.Fatalf("unexpected row for the 15th: %+v", day15)
	}
	if day16 := s.Days[15]; !day16.Recorded || day16.Hours != 0 {
		t.Fatalf("explicit zero-hour day must stay recorded: %+v", day16)
	}
	if day1 := s.Days[0]; day1.Recorded || day1.Hours != 0 {
		t.Fatalf("untouched day must be unrecorded with zero hours: %+v", day1)
	}
}

func TestMonthlyTotals(t *testing.T) {
	entries := []DailyEntry{
		{Date: NewDate(2024, 6, 1), Shifts: []Shift{{Start: "08:00", End: "16:00"}}},
		{Date: NewDate(2024, 6, 2), Shifts: []Shift{{Start: "22:00", End: "06:00"}}},
		{Date: NewDate(2024, 7, 1), Shifts: []Shift{{Start: "08:00", End: "12:00"}}},
		// December of the previous year must sort before both.
		{Date: NewDate(2023, 12, 31), Shifts: []Shift{{Start: "10:00", End: "12:00"}}},
	}
	got := MonthlyTotals(entries, Money{Cents: 1000})

	if len(got) != 3 {
		t.Fatalf("MonthlyTotals returned %d rows, want 3", len(got))
	}
	want := []MonthTotal{
		{Month: WorkMonth{Year: 2023, Month: 12}, Hours: 2, Total: Money{Cents: 2000}},
		{Month: WorkMonth{Year: 2024, Month: 6}, Hours: 16, Total: Money{Cents: 16000}},
		{Month: WorkMonth{Year: 2024, Month: 7}, Hours: 4, Total: Money{Cents: 4000}},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMonthlyTotalsEmpty(t *testing.T) {
	if got := MonthlyTotals(nil, Money{Cents: 1000}); len(got) != 0 {
		t.Fatalf("MonthlyTotals(nil) = %+v, want no rows", got)
	}
}

func TestParseWorkMonth(t *testing.T) {
	m, err := ParseWorkMonth("2024-06")
	if err != nil {
		t.Fatalf("ParseWorkMonth: %v", err)
	}
	if m.Year != 2024 || m.Month != 6 {
		t.Fatalf("got %+v", m)
	}
	if m.String() != "2024-06" {
		t.Fatalf("String() = %q", m.String())
	}
	if m.DayCount() != 30 {
		t.Fatalf("DayCount = %d", m.DayCount())
	}
	if leap := (WorkMonth{Year: 2024, Month: 2}).DayCount(); leap != 29 {
		t.Fatalf("Feb 2024 DayCount = %d, want 29", leap)
	}
	for _, bad := range []string{"", "2024", "2024-13", "junij"} {
		if _, err := ParseWorkMonth(bad); err == nil {
			t.Fatalf("ParseWorkMonth(%q) should fail", bad)
		}
	}
}

func TestFilterMonthSorted(t *testing.T) {
	entries := []DailyEntry{
		{Date: NewDate(2024, 6, 20)},
		{Date: NewDate(2024, 6, 3)},
		{Date: NewDate(2024, 7, 1)},
		{Date: NewDate(2024, 6, 11)},
	}
	got := FilterMonth(entries, WorkMonth{Year: 2024, Month: 6})
	if len(got) != 3 {
		t.Fatalf("FilterMonth kept %d entries, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Date.Before(got[i].Date.Time) {
			t.Fatalf("entries not ascending: %s before %s", got[i-1].Date, got[i].Date)
		}
	}
}
