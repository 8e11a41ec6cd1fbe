package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader is the fixed header row of the month report export.
var csvHeader = []string{"Date", "Hours", "Comment", "Amount"}

// WriteCSV writes the month report as a semicolon-delimited CSV: one
// row per day with nonzero hours plus a trailing totals row. Numeric
// fields use the formatter's locale, so the decimal comma of the
// default locale lands in the file as-is.
func WriteCSV(w io.Writer, summary MonthSummary, f *Formatter) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, day := range summary.Days {
		if day.Hours == 0 {
			continue
		}
		row := []string{
			formatReportDate(day.Date),
			f.Hours(day.Hours),
			day.Comment,
			f.PlainAmount(day.Amount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", day.Date, err)
		}
	}
	total := []string{"Total", f.Hours(summary.TotalHours), "", f.PlainAmount(summary.Total)}
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("write csv totals: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// formatReportDate renders a date the way the report displays it,
// "2. 6. 2024" for June 2nd.
func formatReportDate(d Date) string {
	return fmt.Sprintf("%d. %d. %d", d.Day(), int(d.Time.Month()), d.Year())
}
