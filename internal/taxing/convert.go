// Package taxing converts price quotes between tax-inclusive and
// tax-exclusive display modes.
package taxing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/display"
	"github.com/noah-isme/backend-storefront/internal/money"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// RateConverter applies a single flat tax rate, expressed in basis points.
// When the requested mode is unspecified it converts to the shop's default
// display mode, so the conversion step is never a no-op decision made by the
// caller.
type RateConverter struct {
	// RateBps is the tax rate in basis points (1000 = 10%).
	RateBps int64
	// DisplayTaxful is the shop default: whether prices are shown tax
	// inclusive when the viewer has no explicit preference.
	DisplayTaxful bool
}

var _ display.TaxnessConverter = RateConverter{}

// ConvertTaxness returns a quote in the requested tax mode. Quotes already in
// the right mode pass through unchanged; conversion always produces a new
// quote.
func (c RateConverter) ConvertTaxness(_ context.Context, _ display.View, _ any, quote *pricing.Quote, includeTaxes *bool) (*pricing.Quote, error) {
	if quote == nil {
		return nil, nil
	}
	mode := c.DisplayTaxful
	if includeTaxes != nil {
		mode = *includeTaxes
	}
	if quote.Price.IncludesTax == mode {
		return quote, nil
	}
	return pricing.NewQuote(
		quote.Quantity,
		c.convertPrice(quote.Price, mode),
		c.convertPrice(quote.BasePrice, mode),
	), nil
}

func (c RateConverter) convertPrice(p money.Price, taxful bool) money.Price {
	factor := decimal.NewFromInt(1).Add(decimal.New(c.RateBps, -4))
	amount := p.Amount
	if taxful && !p.IncludesTax {
		amount = amount.Mul(factor)
	} else if !taxful && p.IncludesTax {
		amount = amount.Div(factor)
	}
	return money.NewPrice(amount, p.Currency, taxful)
}
