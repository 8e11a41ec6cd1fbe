package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Date is a calendar date without a time-of-day component.
	// It marshals to and from the YYYY-MM-DD form used everywhere
	// in the API and in backup files.
	Date struct {
		time.Time
	}

	// Shift is one contiguous worked interval within a day. Start and
	// End are clock times in HH:MM form; End before Start means the
	// shift runs past midnight into the next day.
	Shift struct {
		ID    string `json:"id"`
		Start string `json:"startTime"`
		End   string `json:"endTime"`
	}

	// DailyEntry holds all shifts and an optional comment for one date.
	// An entry with no shifts and no comment is considered non-existent
	// and must not be persisted.
	DailyEntry struct {
		Date    Date    `json:"date"`
		Shifts  []Shift `json:"shifts"`
		Comment string  `json:"comment,omitempty"`
	}

	// Money is an amount in euro cents.
	Money struct {
		Cents int64
	}

	// Profile is a user account. HourlyRate applies uniformly to all
	// hours in any period; it is not historized, so changing it changes
	// recomputed past totals as well.
	Profile struct {
		Username     string
		PasswordHash string
		HourlyRate   Money
		Admin        bool
	}
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRate     = errors.New("invalid hourly rate")
	ErrEmptyUsername   = errors.New("empty username")
	ErrInvalidUsername = errors.New("invalid username")
)

// NewDate creates a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewShift creates a shift with a fresh opaque identifier.
func NewShift(start, end string) Shift {
	return Shift{ID: uuid.NewString(), Start: start, End: end}
}

// EnsureShiftIDs assigns a fresh identifier to every shift that
// arrived without one, so each shift stays addressable after the
// entry round-trips through clients that only send times.
func (e *DailyEntry) EnsureShiftIDs() {
	for i := range e.Shifts {
		if e.Shifts[i].ID == "" {
			e.Shifts[i].ID = uuid.NewString()
		}
	}
}

// IsEmpty reports whether the entry carries no information at all.
// Empty entries are deleted at the write boundary rather than stored.
func (e DailyEntry) IsEmpty() bool {
	return len(e.Shifts) == 0 && strings.TrimSpace(e.Comment) == ""
}

func (e DailyEntry) Validate() error {
	return e.Date.Validate()
}

func (p Profile) Validate() error {
	name := strings.TrimSpace(p.Username)
	if name == "" {
		return ErrEmptyUsername
	}
	if len(name) > 64 || strings.ContainsAny(name, ";\n\r\t") {
		return ErrInvalidUsername
	}
	if p.HourlyRate.Cents < 0 {
		return ErrInvalidRate
	}
	return nil
}

// Euros returns the amount as a float64 for display purposes.
// Calculations should stay in cents.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// ParseRate converts a decimal string to a cents-backed hourly rate.
// Both dot and comma decimal separators are accepted; the third
// fractional digit rounds half-up. Negative rates are rejected.
func ParseRate(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return Money{}, ErrInvalidRate
	}
	s = strings.ReplaceAll(s, ",", ".")
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return Money{}, ErrInvalidRate
	}
	if intPart == "" {
		intPart = "0"
	}
	var cents int64
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return Money{}, ErrInvalidRate
		}
		cents = cents*10 + int64(r-'0')
		if cents > (1<<62)/100 {
			return Money{}, ErrInvalidRate
		}
	}
	cents *= 100
	for i, r := range fracPart {
		if r < '0' || r > '9' {
			return Money{}, ErrInvalidRate
		}
		switch i {
		case 0:
			cents += int64(r-'0') * 10
		case 1:
			cents += int64(r - '0')
		case 2:
			if r >= '5' {
				cents++
			}
		}
	}
	return Money{Cents: cents}, nil
}

// RateFromFloat converts an hours-per-currency float (as found in
// backup files) to cents with half-up rounding.
func RateFromFloat(v float64) Money {
	if v < 0 {
		return Money{}
	}
	return Money{Cents: int64(v*100 + 0.5)}
}
