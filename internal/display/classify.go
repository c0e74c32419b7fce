package display

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/basket"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// ErrNotPriceable signals a contract violation: the rendered item satisfies
// none of the recognised price capabilities. This is template misuse, not a
// runtime condition to recover from.
var ErrNotPriceable = errors.New("display: item satisfies no price capability")

// PriceQuoter quotes its own price for a quantity. A nil quote with a nil
// error means no price is available, which is a valid outcome.
type PriceQuoter interface {
	GetPriceInfo(ctx context.Context, view View, quantity decimal.Decimal) (*pricing.Quote, error)
}

// VariationQuoter is a PriceQuoter that may represent a family of purchasable
// variant children. When IsVariationParent reports true, its own price is
// undefined and callers must resolve prices through the children.
type VariationQuoter interface {
	PriceQuoter
	IsVariationParent() bool
	GetCheapestChildPriceInfo(ctx context.Context, view View, quantity decimal.Decimal) (*pricing.Quote, error)
}

// PricedChild pairs a variant child with its quote; the quote may be nil.
type PricedChild struct {
	Item  any
	Quote *pricing.Quote
}

// PricedChildLister exposes variant children sorted by price ascending.
type PricedChildLister interface {
	GetPricedChildren(ctx context.Context, view View, quantity decimal.Decimal) ([]PricedChild, error)
}

// TotalCoster quotes a total cost for the whole basket, e.g. a delivery
// method fee.
type TotalCoster interface {
	GetTotalCost(b *basket.Basket) (*pricing.Quote, error)
}

// PreQuoted is an object that already embodies a price result, such as an
// order line.
type PreQuoted interface {
	PriceInfo() *pricing.Quote
}

// Kind enumerates the recognised item capabilities.
type Kind int

const (
	// KindSelfQuoting items quote their own price for a quantity.
	KindSelfQuoting Kind = iota
	// KindVariationParent items delegate to their cheapest priced child.
	KindVariationParent
	// KindBasketTotal items quote a total cost for the current basket.
	KindBasketTotal
	// KindPreQuoted items already carry a price quote.
	KindPreQuoted
)

// Classified is the result of capability classification for one item.
type Classified struct {
	Kind   Kind
	Quoter PriceQuoter
	Parent VariationQuoter
	Coster TotalCoster
	Quote  *pricing.Quote
}

// Classify resolves an item's price capability once, in precedence order:
// self-quoting (with variation parents routed to child resolution), basket
// total, pre-quoted. Anything else is ErrNotPriceable.
func Classify(item any) (Classified, error) {
	if quoter, ok := item.(PriceQuoter); ok {
		if parent, ok := item.(VariationQuoter); ok && parent.IsVariationParent() {
			return Classified{Kind: KindVariationParent, Parent: parent}, nil
		}
		return Classified{Kind: KindSelfQuoting, Quoter: quoter}, nil
	}
	if coster, ok := item.(TotalCoster); ok {
		return Classified{Kind: KindBasketTotal, Coster: coster}, nil
	}
	if quote, ok := item.(*pricing.Quote); ok {
		return Classified{Kind: KindPreQuoted, Quote: quote}, nil
	}
	if pre, ok := item.(PreQuoted); ok {
		return Classified{Kind: KindPreQuoted, Quote: pre.PriceInfo()}, nil
	}
	return Classified{}, ErrNotPriceable
}
