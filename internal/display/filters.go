package display

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/money"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// TaxnessConverter adjusts a quote to the requested tax inclusion. A nil
// includeTaxes delegates the choice of mode to the converter (shop default);
// the call is never skipped.
type TaxnessConverter interface {
	ConvertTaxness(ctx context.Context, view View, item any, quote *pricing.Quote, includeTaxes *bool) (*pricing.Quote, error)
}

// TotalSource is an order/basket-like object carrying materialized totals.
// Tax-mode specific totals are optional; sources that cannot provide them are
// handled by falling back to the generic total.
type TotalSource interface {
	TotalPrice() money.Price
}

type taxfulTotalSource interface {
	TaxfulTotalPrice() (money.Price, error)
}

type taxlessTotalSource interface {
	TaxlessTotalPrice() (money.Price, error)
}

// PriceRange holds the formatted ends of a variant price range.
type PriceRange struct {
	Min string
	Max string
}

// Registry holds the price display filters and their collaborators. It is
// populated during initialization and handed to the template engine by
// reference; nothing registers itself at package init time.
type Registry struct {
	converter TaxnessConverter
	formatter *money.Formatter
	metrics   *obs.RenderMetrics
	log       zerolog.Logger
}

// RegistryConfig groups Registry dependencies.
type RegistryConfig struct {
	Converter TaxnessConverter
	Formatter *money.Formatter
	Metrics   *obs.RenderMetrics
	Logger    zerolog.Logger
}

// NewRegistry constructs the filter registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Converter == nil {
		return nil, errors.New("display: taxness converter is required")
	}
	if cfg.Formatter == nil {
		return nil, errors.New("display: formatter is required")
	}
	return &Registry{
		converter: cfg.Converter,
		formatter: cfg.Formatter,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
	}, nil
}

// resolveQuote produces a quote for an item by capability. A nil quote means
// no price is available.
func (r *Registry) resolveQuote(ctx context.Context, view View, item any, quantity decimal.Decimal) (*pricing.Quote, error) {
	c, err := Classify(item)
	if err != nil {
		return nil, fmt.Errorf("%w (item %T)", err, item)
	}
	switch c.Kind {
	case KindVariationParent:
		return c.Parent.GetCheapestChildPriceInfo(ctx, view, quantity)
	case KindSelfQuoting:
		return c.Quoter.GetPriceInfo(ctx, view, quantity)
	case KindBasketTotal:
		return c.Coster.GetTotalCost(view.Basket)
	default:
		return c.Quote, nil
	}
}

// PriceDisplay runs the full pipeline for a named money property: resolve
// quote, adjust taxness, extract property, format as currency. Hidden prices
// and missing quotes yield an empty string.
func (r *Registry) PriceDisplay(ctx context.Context, view View, item any, quantity decimal.Decimal, property string) (string, error) {
	opts := OptionsFromContext(ctx)
	if opts.HidePrices {
		r.countHidden()
		return "", nil
	}
	quote, err := r.resolveQuote(ctx, view, item, quantity)
	if err != nil {
		return "", err
	}
	if quote == nil {
		return "", nil
	}
	converted, err := r.converter.ConvertTaxness(ctx, view, item, quote, opts.IncludeTaxes)
	if err != nil {
		return "", fmt.Errorf("convert taxness: %w", err)
	}
	if converted == nil {
		return "", nil
	}
	value, err := converted.Property(property)
	if err != nil {
		return "", err
	}
	price, ok := value.(money.Price)
	if !ok {
		return "", fmt.Errorf("display: property %q is not a money value", property)
	}
	r.countRender("price")
	return r.formatter.Price(price), nil
}

// PriceProperty resolves a quote and extracts a raw named property without
// tax adjustment or formatting. Returns nil for hidden prices or missing
// quotes.
func (r *Registry) PriceProperty(ctx context.Context, view View, item any, quantity decimal.Decimal, property string) (any, error) {
	opts := OptionsFromContext(ctx)
	if opts.HidePrices {
		r.countHidden()
		return nil, nil
	}
	quote, err := r.resolveQuote(ctx, view, item, quantity)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, nil
	}
	r.countRender("property")
	return quote.Property(property)
}

// PercentProperty resolves a quote and formats a ratio-valued property as a
// localized percentage, without tax adjustment.
func (r *Registry) PercentProperty(ctx context.Context, view View, item any, quantity decimal.Decimal, property string) (string, error) {
	opts := OptionsFromContext(ctx)
	if opts.HidePrices {
		r.countHidden()
		return "", nil
	}
	quote, err := r.resolveQuote(ctx, view, item, quantity)
	if err != nil {
		return "", err
	}
	if quote == nil {
		return "", nil
	}
	value, err := quote.Property(property)
	if err != nil {
		return "", err
	}
	ratio, ok := value.(decimal.Decimal)
	if !ok {
		return "", fmt.Errorf("display: property %q is not a ratio", property)
	}
	r.countRender("percent")
	return r.formatter.Percent(ratio), nil
}

// TotalDisplay formats a source's total, selecting the tax-mode-specific
// total when one is requested. Any failure to obtain a mode-specific total
// falls back to the generic total.
func (r *Registry) TotalDisplay(ctx context.Context, view View, source TotalSource) (string, error) {
	opts := OptionsFromContext(ctx)
	if opts.HidePrices {
		r.countHidden()
		return "", nil
	}
	total := r.selectTotal(source, opts.IncludeTaxes)
	r.countRender("total")
	return r.formatter.Price(total), nil
}

func (r *Registry) selectTotal(source TotalSource, includeTaxes *bool) money.Price {
	if includeTaxes == nil {
		return source.TotalPrice()
	}
	if *includeTaxes {
		if s, ok := source.(taxfulTotalSource); ok {
			total, err := s.TaxfulTotalPrice()
			if err == nil {
				return total
			}
			r.log.Debug().Err(err).Msg("taxful total unavailable, using generic total")
		}
		return source.TotalPrice()
	}
	if s, ok := source.(taxlessTotalSource); ok {
		total, err := s.TaxlessTotalPrice()
		if err == nil {
			return total
		}
		r.log.Debug().Err(err).Msg("taxless total unavailable, using generic total")
	}
	return source.TotalPrice()
}

// PriceRangeDisplay formats the cheapest and most expensive prices of a
// product's priced variant children. A product without children collapses to
// its own single price at both ends.
func (r *Registry) PriceRangeDisplay(ctx context.Context, view View, item any, quantity decimal.Decimal) (PriceRange, error) {
	opts := OptionsFromContext(ctx)
	if opts.HidePrices {
		r.countHidden()
		return PriceRange{}, nil
	}
	var children []PricedChild
	if lister, ok := item.(PricedChildLister); ok {
		listed, err := lister.GetPricedChildren(ctx, view, quantity)
		if err != nil {
			return PriceRange{}, err
		}
		children = listed
	}
	if len(children) == 0 {
		quote, err := r.resolveQuote(ctx, view, item, quantity)
		if err != nil {
			return PriceRange{}, err
		}
		children = []PricedChild{{Item: item, Quote: quote}}
	}

	formatted := func(c PricedChild) (string, error) {
		if c.Quote == nil {
			return "", nil
		}
		converted, err := r.converter.ConvertTaxness(ctx, view, c.Item, c.Quote, opts.IncludeTaxes)
		if err != nil {
			return "", fmt.Errorf("convert taxness: %w", err)
		}
		if converted == nil {
			return "", nil
		}
		return r.formatter.Price(converted.Price), nil
	}

	low, err := formatted(children[0])
	if err != nil {
		return PriceRange{}, err
	}
	high, err := formatted(children[len(children)-1])
	if err != nil {
		return PriceRange{}, err
	}
	r.countRender("range")
	return PriceRange{Min: low, Max: high}, nil
}

// RenderPriceProperty renders a property of an already-resolved quote, going
// through the same options gate and taxness adjustment as the price filter.
func (r *Registry) RenderPriceProperty(ctx context.Context, view View, item any, quote *pricing.Quote, property string) (string, error) {
	opts := OptionsFromContext(ctx)
	if opts.HidePrices {
		r.countHidden()
		return "", nil
	}
	if quote == nil {
		return "", nil
	}
	converted, err := r.converter.ConvertTaxness(ctx, view, item, quote, opts.IncludeTaxes)
	if err != nil {
		return "", fmt.Errorf("convert taxness: %w", err)
	}
	if converted == nil {
		return "", nil
	}
	value, err := converted.Property(property)
	if err != nil {
		return "", err
	}
	price, ok := value.(money.Price)
	if !ok {
		return "", fmt.Errorf("display: property %q is not a money value", property)
	}
	r.countRender("price")
	return r.formatter.Price(price), nil
}

func (r *Registry) countRender(filter string) {
	if r.metrics != nil {
		r.metrics.Rendered.WithLabelValues(filter).Inc()
	}
}

func (r *Registry) countHidden() {
	if r.metrics != nil {
		r.metrics.Hidden.Inc()
	}
}
