package core

import (
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// clockMinutes parses an HH:MM clock time into minutes since midnight.
// The hour must be in [0,24) and the minute in [0,60).
func clockMinutes(s string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ShiftHours returns the elapsed hours of a single shift.
//
// A negative end-minus-start delta means the shift crosses midnight and
// gains a full day. A shift whose start equals its end is zero-length,
// not a 24-hour wraparound, so the result is always in [0, 24).
// A missing or unparseable time yields 0 rather than an error, so a
// half-filled form never breaks aggregation.
func ShiftHours(s Shift) float64 {
	start, ok := clockMinutes(s.Start)
	if !ok {
		return 0
	}
	end, ok := clockMinutes(s.End)
	if !ok {
		return 0
	}
	delta := end - start
	if delta < 0 {
		delta += minutesPerDay
	}
	return float64(delta) / 60.0
}

// DailyHours sums the durations of all shifts in an entry. Summation
// order is irrelevant beyond floating-point rounding, which the ≤2
// fractional digits of the display layer absorbs.
func DailyHours(e DailyEntry) float64 {
	var total float64
	for _, s := range e.Shifts {
		total += ShiftHours(s)
	}
	return total
}
