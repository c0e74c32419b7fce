package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts and ratios as localized strings.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	unit    currency.Unit
	scale   int32
}

// NewFormatter builds a formatter for the given BCP 47 locale and ISO 4217
// currency code.
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(strings.TrimSpace(currencyCode))
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	scale, _ := currency.Cash.Rounding(unit)
	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		unit:    unit,
		scale:   int32(scale),
	}, nil
}

// Money renders a monetary value with its currency symbol.
func (f *Formatter) Money(m Money) string {
	unit := f.unit
	if m.Currency != "" && m.Currency != f.unit.String() {
		if parsed, err := currency.ParseISO(m.Currency); err == nil {
			unit = parsed
		}
	}
	rounded, _ := m.Amount.Round(f.scale).Float64()
	return f.printer.Sprint(currency.Symbol(unit.Amount(rounded)))
}

// Price renders the monetary component of a price.
func (f *Formatter) Price(p Price) string {
	return f.Money(p.Money)
}

// Percent renders a ratio (0.25 -> "25%") using locale conventions.
func (f *Formatter) Percent(ratio decimal.Decimal) string {
	v, _ := ratio.Float64()
	return f.printer.Sprint(number.Percent(v, number.MaxFractionDigits(2)))
}

// Currency returns the default currency code of the formatter.
func (f *Formatter) Currency() string { return f.unit.String() }
