// Display formatting for hour counts and currency amounts.
//
// The summary endpoints return raw numbers; formatted strings appear in
// the CSV export and in log-friendly report output. Defaults follow the
// sl-SI conventions of the original deployment (decimal comma, EUR).
package core

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders hours and amounts for one locale and currency
// symbol. It is immutable and safe for concurrent use.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a formatter for a BCP 47 locale tag such as
// "sl-SI" and a currency symbol such as "€".
func NewFormatter(locale, symbol string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}, nil
}

// Hours renders an hour count with at least 1 and at most 2 fraction
// digits using the locale's decimal separator.
func (f *Formatter) Hours(h float64) string {
	return f.printer.Sprint(number.Decimal(h,
		number.MinFractionDigits(1),
		number.MaxFractionDigits(2)))
}

// Amount renders a money value as fixed two-decimal currency, e.g.
// "160,00 €". The number and the symbol are joined with a no-break
// space (U+00A0), as locale-aware currency formatting produces.
func (f *Formatter) Amount(m Money) string {
	return f.PlainAmount(m) + "\u00a0" + f.symbol
}

// PlainAmount renders a money value without the currency symbol, as
// used in CSV numeric fields.
func (f *Formatter) PlainAmount(m Money) string {
	return f.printer.Sprint(number.Decimal(m.Euros(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}
