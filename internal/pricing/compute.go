package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/money"
)

// ComputeQuote builds a quote from unit list and base prices. unitBase may be
// zero, in which case the list price is also the base price. includesTax
// records the taxness of the catalog prices.
func ComputeQuote(unitList, unitBase decimal.Decimal, quantity decimal.Decimal, currency string, includesTax bool) *Quote {
	if quantity.LessThanOrEqual(decimal.Zero) {
		quantity = decimal.NewFromInt(1)
	}
	if unitBase.LessThan(unitList) {
		unitBase = unitList
	}
	price := money.NewPrice(unitList.Mul(quantity), currency, includesTax)
	base := money.NewPrice(unitBase.Mul(quantity), currency, includesTax)
	return NewQuote(quantity, price, base)
}
