package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when combining amounts in different currencies.
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// ErrTaxnessMismatch is returned when combining prices with differing tax inclusion.
var ErrTaxnessMismatch = errors.New("money: taxness mismatch")

// Money is an exact monetary amount in a single currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// New constructs a Money value.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// FromString parses a decimal string into a Money value.
func FromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return Money{Amount: d, Currency: currency}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// Add sums two amounts in the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub subtracts an amount in the same currency.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

// Mul scales the amount by a decimal factor.
func (m Money) Mul(f decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(f), Currency: m.Currency}
}

// Div divides the amount by a decimal divisor.
func (m Money) Div(d decimal.Decimal) Money {
	return Money{Amount: m.Amount.Div(d), Currency: m.Currency}
}

// Cmp compares two amounts in the same currency (-1, 0, 1).
func (m Money) Cmp(o Money) (int, error) {
	if m.Currency != o.Currency {
		return 0, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return m.Amount.Cmp(o.Amount), nil
}

func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}

// Price is a monetary amount together with its tax inclusion.
type Price struct {
	Money
	IncludesTax bool `json:"includesTax"`
}

// NewPrice constructs a Price from an amount, currency, and tax inclusion.
func NewPrice(amount decimal.Decimal, currency string, includesTax bool) Price {
	return Price{Money: New(amount, currency), IncludesTax: includesTax}
}

// Taxful constructs a tax-inclusive price.
func Taxful(amount decimal.Decimal, currency string) Price {
	return NewPrice(amount, currency, true)
}

// Taxless constructs a tax-exclusive price.
func Taxless(amount decimal.Decimal, currency string) Price {
	return NewPrice(amount, currency, false)
}

// Add sums two prices with matching currency and taxness.
func (p Price) Add(o Price) (Price, error) {
	if p.IncludesTax != o.IncludesTax {
		return Price{}, ErrTaxnessMismatch
	}
	m, err := p.Money.Add(o.Money)
	if err != nil {
		return Price{}, err
	}
	return Price{Money: m, IncludesTax: p.IncludesTax}, nil
}

// Sub subtracts a price with matching currency and taxness.
func (p Price) Sub(o Price) (Price, error) {
	if p.IncludesTax != o.IncludesTax {
		return Price{}, ErrTaxnessMismatch
	}
	m, err := p.Money.Sub(o.Money)
	if err != nil {
		return Price{}, err
	}
	return Price{Money: m, IncludesTax: p.IncludesTax}, nil
}

// Mul scales the price by a decimal factor, preserving taxness.
func (p Price) Mul(f decimal.Decimal) Price {
	return Price{Money: p.Money.Mul(f), IncludesTax: p.IncludesTax}
}

// Div divides the price by a decimal divisor, preserving taxness.
func (p Price) Div(d decimal.Decimal) Price {
	return Price{Money: p.Money.Div(d), IncludesTax: p.IncludesTax}
}
