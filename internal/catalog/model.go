package catalog

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/display"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// Variant is a purchasable child of a product. A variant without its own
// price falls back to the parent list price.
type Variant struct {
	ID        uuid.UUID           `json:"id"`
	SKU       string              `json:"sku,omitempty"`
	Title     string              `json:"title"`
	Price     decimal.NullDecimal `json:"price"`
	CompareAt decimal.NullDecimal `json:"compareAt"`
	InStock   bool                `json:"inStock"`
}

// Product is a storefront product. A product with variants is a variation
// parent: its own price is undefined and price lookups resolve through the
// children.
type Product struct {
	ID        uuid.UUID           `json:"id"`
	Slug      string              `json:"slug"`
	Title     string              `json:"title"`
	Price     decimal.NullDecimal `json:"price"`
	CompareAt decimal.NullDecimal `json:"compareAt"`
	InStock   bool                `json:"inStock"`
	Variants  []Variant           `json:"variants,omitempty"`

	// PricesIncludeTax records the taxness of the stored catalog prices.
	PricesIncludeTax bool `json:"pricesIncludeTax"`
}

// IsVariationParent reports whether price resolution must go through the
// variant children.
func (p *Product) IsVariationParent() bool {
	return p != nil && len(p.Variants) > 0
}

// GetPriceInfo quotes the product's own price for a quantity. Variation
// parents and unpriced products have no price of their own and return a nil
// quote.
func (p *Product) GetPriceInfo(_ context.Context, view display.View, quantity decimal.Decimal) (*pricing.Quote, error) {
	if p == nil || p.IsVariationParent() || !p.Price.Valid {
		return nil, nil
	}
	return pricing.ComputeQuote(p.Price.Decimal, nullOr(p.CompareAt, p.Price.Decimal), quantity, view.Currency, p.PricesIncludeTax), nil
}

// GetCheapestChildPriceInfo quotes the lowest-priced variant child.
func (p *Product) GetCheapestChildPriceInfo(ctx context.Context, view display.View, quantity decimal.Decimal) (*pricing.Quote, error) {
	children, err := p.GetPricedChildren(ctx, view, quantity)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.Quote != nil {
			return child.Quote, nil
		}
	}
	return nil, nil
}

// GetPricedChildren quotes every variant child and returns them sorted by
// price ascending. Children without a price keep a nil quote and sort last.
func (p *Product) GetPricedChildren(_ context.Context, view display.View, quantity decimal.Decimal) ([]display.PricedChild, error) {
	if p == nil || len(p.Variants) == 0 {
		return nil, nil
	}
	children := make([]display.PricedChild, 0, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		children = append(children, display.PricedChild{
			Item:  v,
			Quote: p.quoteVariant(v, view, quantity),
		})
	}
	sort.SliceStable(children, func(i, j int) bool {
		qi, qj := children[i].Quote, children[j].Quote
		if qi == nil {
			return false
		}
		if qj == nil {
			return true
		}
		return qi.Price.Amount.LessThan(qj.Price.Amount)
	})
	return children, nil
}

func (p *Product) quoteVariant(v *Variant, view display.View, quantity decimal.Decimal) *pricing.Quote {
	unit := v.Price
	if !unit.Valid {
		unit = p.Price
	}
	if !unit.Valid {
		return nil
	}
	base := nullOr(v.CompareAt, unit.Decimal)
	if !v.CompareAt.Valid && p.CompareAt.Valid {
		base = p.CompareAt.Decimal
	}
	return pricing.ComputeQuote(unit.Decimal, base, quantity, view.Currency, p.PricesIncludeTax)
}

func nullOr(d decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return fallback
}
