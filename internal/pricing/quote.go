package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/money"
)

// Quote is an immutable price quote for some quantity of an item. Price and
// BasePrice cover the whole quantity; unit values are derived. Tax metadata
// travels on the contained prices. Adjusting taxness produces a new Quote,
// never mutates an existing one.
type Quote struct {
	Quantity  decimal.Decimal
	Price     money.Price
	BasePrice money.Price
}

// NewQuote builds a quote for the given quantity. A zero base price is
// normalised to the (undiscounted) price.
func NewQuote(quantity decimal.Decimal, price, basePrice money.Price) *Quote {
	if basePrice.Money.IsZero() && basePrice.Currency == "" {
		basePrice = price
	}
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	return &Quote{Quantity: quantity, Price: price, BasePrice: basePrice}
}

// DiscountAmount is the difference between base price and effective price.
func (q *Quote) DiscountAmount() money.Price {
	d, err := q.BasePrice.Sub(q.Price)
	if err != nil {
		return money.Price{Money: money.New(decimal.Zero, q.Price.Currency), IncludesTax: q.Price.IncludesTax}
	}
	return d
}

// DiscountPercent is the discount as a ratio of the base price (0.25 = 25%).
func (q *Quote) DiscountPercent() decimal.Decimal {
	if q.BasePrice.Amount.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(q.Price.Amount.Div(q.BasePrice.Amount))
}

// IsDiscounted reports whether the effective price is below the base price.
func (q *Quote) IsDiscounted() bool {
	return q.Price.Amount.LessThan(q.BasePrice.Amount)
}

// UnitPrice is the effective price for a single unit.
func (q *Quote) UnitPrice() money.Price {
	return q.Price.Div(q.Quantity)
}

// UnitBasePrice is the undiscounted price for a single unit.
func (q *Quote) UnitBasePrice() money.Price {
	return q.BasePrice.Div(q.Quantity)
}

// Property resolves a named price property. Money-valued properties return
// money.Price; ratio-valued properties return decimal.Decimal.
func (q *Quote) Property(name string) (any, error) {
	switch name {
	case "price":
		return q.Price, nil
	case "base_price":
		return q.BasePrice, nil
	case "discount_amount":
		return q.DiscountAmount(), nil
	case "discount_percent":
		return q.DiscountPercent(), nil
	case "unit_price":
		return q.UnitPrice(), nil
	case "unit_base_price":
		return q.UnitBasePrice(), nil
	default:
		return nil, fmt.Errorf("pricing: unknown price property %q", name)
	}
}
