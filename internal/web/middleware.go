package web

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-storefront/internal/display"
)

// priceDisplayHeader lets an upstream personalization layer override the
// shop-wide price display policy per request.
const priceDisplayHeader = "X-Price-Display"

// ShopSettings is the shop-wide display policy applied to every request.
type ShopSettings struct {
	Name     string
	Currency string
	// HidePrices puts the storefront in catalog mode: no prices anywhere.
	HidePrices bool
	// IncludeTaxes is the shop display default; nil defers to the tax engine.
	IncludeTaxes *bool
}

// DisplayOptionsMiddleware resolves price display options for the request and
// stores them on the context, where every filter invocation reads them.
func DisplayOptionsMiddleware(shop ShopSettings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			opts := display.Options{
				HidePrices:   shop.HidePrices,
				IncludeTaxes: shop.IncludeTaxes,
			}
			switch strings.ToLower(strings.TrimSpace(r.Header.Get(priceDisplayHeader))) {
			case "hidden":
				opts.HidePrices = true
			case "with-taxes":
				opts.HidePrices = false
				opts.IncludeTaxes = boolPtr(true)
			case "without-taxes":
				opts.HidePrices = false
				opts.IncludeTaxes = boolPtr(false)
			}
			ctx := display.WithOptions(r.Context(), opts)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func boolPtr(v bool) *bool { return &v }
