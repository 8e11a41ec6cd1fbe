package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

type (
	// WorkMonth is the aggregation window for summaries and exports.
	WorkMonth struct {
		Year  int
		Month time.Month
	}

	// DaySummary is one calendar day inside a month report. Days the
	// user never touched and days explicitly worked for 0 hours both
	// carry Hours == 0; Recorded distinguishes them.
	DaySummary struct {
		Date     Date    `json:"date"`
		Hours    float64 `json:"hours"`
		Comment  string  `json:"comment,omitempty"`
		Amount   Money   `json:"amountCents"`
		Recorded bool    `json:"recorded"`
	}

	// MonthSummary aggregates a whole calendar month, first day to
	// last, in ascending date order.
	MonthSummary struct {
		Month      WorkMonth    `json:"month"`
		Days       []DaySummary `json:"days"`
		TotalHours float64      `json:"totalHours"`
		Total      Money        `json:"totalCents"`
		Rate       Money        `json:"hourlyRateCents"`
	}

	// MonthTotal is one row of the all-time statistics breakdown.
	MonthTotal struct {
		Month WorkMonth `json:"month"`
		Hours float64   `json:"hours"`
		Total Money     `json:"totalCents"`
	}
)

var ErrInvalidMonth = errors.New("invalid month")

// ParseWorkMonth parses a YYYY-MM string.
func ParseWorkMonth(s string) (WorkMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return WorkMonth{}, ErrInvalidMonth
	}
	return WorkMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (m WorkMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Contains reports whether the date falls inside the month.
func (m WorkMonth) Contains(d Date) bool {
	return d.Year() == m.Year && d.Time.Month() == m.Month
}

// DayCount returns the number of calendar days in the month.
func (m WorkMonth) DayCount() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthHours sums the daily hours of every entry dated inside the
// month. Entries outside the month contribute nothing.
func MonthHours(entries []DailyEntry, m WorkMonth) float64 {
	var total float64
	for _, e := range entries {
		if m.Contains(e.Date) {
			total += DailyHours(e)
		}
	}
	return total
}

// MonthEarnings is MonthHours multiplied by the hourly rate, rounded
// half-up to whole cents.
func MonthEarnings(entries []DailyEntry, m WorkMonth, rate Money) Money {
	return earnings(MonthHours(entries, m), rate)
}

func earnings(hours float64, rate Money) Money {
	return Money{Cents: int64(math.Round(hours * float64(rate.Cents)))}
}

// Summarize builds the month report: one row per calendar day of the
// month in ascending order, zero-hour rows included, plus totals.
// The total amount is computed from total hours, matching the figure
// the user expects from hours-times-rate, not from summing per-day
// rounded amounts.
func Summarize(entries []DailyEntry, m WorkMonth, rate Money) MonthSummary {
	byDate := make(map[string]DailyEntry, len(entries))
	for _, e := range entries {
		if m.Contains(e.Date) {
			byDate[e.Date.String()] = e
		}
	}

	summary := MonthSummary{Month: m, Rate: rate}
	for day := 1; day <= m.DayCount(); day++ {
		date := NewDate(m.Year, m.Month, day)
		row := DaySummary{Date: date}
		if e, ok := byDate[date.String()]; ok {
			row.Hours = DailyHours(e)
			row.Comment = e.Comment
			row.Recorded = true
		}
		row.Amount = earnings(row.Hours, rate)
		summary.TotalHours += row.Hours
		summary.Days = append(summary.Days, row)
	}
	summary.Total = earnings(summary.TotalHours, rate)
	return summary
}

// MonthlyTotals groups entries by calendar month and totals the hours
// and earnings of each, in ascending month order. Months without any
// entry produce no row. Earnings use the current rate for every month,
// since the rate is not historized.
func MonthlyTotals(entries []DailyEntry, rate Money) []MonthTotal {
	hoursByMonth := make(map[WorkMonth]float64)
	for _, e := range entries {
		m := WorkMonth{Year: e.Date.Year(), Month: e.Date.Time.Month()}
		hoursByMonth[m] += DailyHours(e)
	}

	out := make([]MonthTotal, 0, len(hoursByMonth))
	for m, hours := range hoursByMonth {
		out = append(out, MonthTotal{Month: m, Hours: hours, Total: earnings(hours, rate)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Month, out[j].Month
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return out
}

// FilterMonth returns the entries dated inside the month, in ascending
// date order.
func FilterMonth(entries []DailyEntry, m WorkMonth) []DailyEntry {
	var out []DailyEntry
	for _, e := range entries {
		if m.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}
