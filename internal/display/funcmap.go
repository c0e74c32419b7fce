package display

import (
	"context"
	"html/template"

	"github.com/shopspring/decimal"
)

// Template function names exposed to template authors. The name is the only
// public surface a template sees.
const (
	FuncPrice           = "price"
	FuncBasePrice       = "base_price"
	FuncDiscountAmount  = "discount_amount"
	FuncDiscountPercent = "discount_percent"
	FuncPriceProperty   = "price_property"
	FuncTotalPrice      = "total_price"
	FuncPriceRange      = "price_range"
)

func quantityArg(quantity []int) decimal.Decimal {
	if len(quantity) == 0 || quantity[0] <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(quantity[0]))
}

// FuncMap builds the template function map bound to one request's context and
// view. Quantity defaults to 1 when omitted in the template.
func (r *Registry) FuncMap(ctx context.Context, view View) template.FuncMap {
	moneyFilter := func(property string) func(item any, quantity ...int) (string, error) {
		return func(item any, quantity ...int) (string, error) {
			return r.PriceDisplay(ctx, view, item, quantityArg(quantity), property)
		}
	}
	return template.FuncMap{
		FuncPrice:          moneyFilter("price"),
		FuncBasePrice:      moneyFilter("base_price"),
		FuncDiscountAmount: moneyFilter("discount_amount"),
		FuncDiscountPercent: func(item any, quantity ...int) (string, error) {
			return r.PercentProperty(ctx, view, item, quantityArg(quantity), "discount_percent")
		},
		FuncPriceProperty: func(item any, property string, quantity ...int) (any, error) {
			return r.PriceProperty(ctx, view, item, quantityArg(quantity), property)
		},
		FuncTotalPrice: func(source TotalSource) (string, error) {
			return r.TotalDisplay(ctx, view, source)
		},
		FuncPriceRange: func(item any, quantity ...int) (PriceRange, error) {
			return r.PriceRangeDisplay(ctx, view, item, quantityArg(quantity))
		},
	}
}
