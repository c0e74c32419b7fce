package display

import (
	"context"

	"github.com/noah-isme/backend-storefront/internal/basket"
)

// View is the per-request viewing context handed to every price capability:
// which currency the viewer sees, who they are, and which basket is current.
type View struct {
	Currency   string
	CustomerID string
	Basket     *basket.Basket
}

// Options controls whether prices are shown at all and in which tax mode.
// IncludeTaxes is tri-state: nil defers to the shop default.
type Options struct {
	HidePrices   bool
	IncludeTaxes *bool
}

type optionsKey struct{}

// WithOptions stores display options on the context for the current render.
func WithOptions(ctx context.Context, opts Options) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, optionsKey{}, opts)
}

// OptionsFromContext extracts display options from the context. A context
// without options yields the zero value: prices shown, shop-default taxness.
func OptionsFromContext(ctx context.Context) Options {
	if ctx == nil {
		return Options{}
	}
	if v, ok := ctx.Value(optionsKey{}).(Options); ok {
		return v
	}
	return Options{}
}
