package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-storefront/internal/display"
)

func num(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func one() decimal.Decimal { return decimal.NewFromInt(1) }

func TestSimpleProductQuotesItself(t *testing.T) {
	p := &Product{ID: uuid.New(), Slug: "mug", Price: num("9.90"), CompareAt: num("12.90")}
	view := display.View{Currency: "USD"}

	quote, err := p.GetPriceInfo(context.Background(), view, one())
	require.NoError(t, err)
	require.NotNil(t, quote)
	require.True(t, quote.Price.Amount.Equal(decimal.RequireFromString("9.90")))
	require.True(t, quote.BasePrice.Amount.Equal(decimal.RequireFromString("12.90")))
	require.True(t, quote.IsDiscounted())
}

func TestUnpricedProductHasNoQuote(t *testing.T) {
	p := &Product{ID: uuid.New(), Slug: "draft"}
	quote, err := p.GetPriceInfo(context.Background(), display.View{Currency: "USD"}, one())
	require.NoError(t, err)
	require.Nil(t, quote)
}

func TestVariationParentHasNoOwnQuote(t *testing.T) {
	p := &Product{
		ID:    uuid.New(),
		Slug:  "tee",
		Price: num("25.00"),
		Variants: []Variant{
			{ID: uuid.New(), Title: "M", Price: num("22.00")},
			{ID: uuid.New(), Title: "L", Price: num("28.00")},
		},
	}
	require.True(t, p.IsVariationParent())

	quote, err := p.GetPriceInfo(context.Background(), display.View{Currency: "USD"}, one())
	require.NoError(t, err)
	require.Nil(t, quote, "a variation parent must not quote its own price")
}

func TestPricedChildrenSortedAscending(t *testing.T) {
	p := &Product{
		ID:   uuid.New(),
		Slug: "tee",
		Variants: []Variant{
			{ID: uuid.New(), Title: "L", Price: num("28.00")},
			{ID: uuid.New(), Title: "S", Price: num("19.00")},
			{ID: uuid.New(), Title: "M", Price: num("22.00")},
			{ID: uuid.New(), Title: "custom"}, // unpriced, sorts last
		},
	}
	children, err := p.GetPricedChildren(context.Background(), display.View{Currency: "USD"}, one())
	require.NoError(t, err)
	require.Len(t, children, 4)
	require.True(t, children[0].Quote.Price.Amount.Equal(decimal.RequireFromString("19")))
	require.True(t, children[2].Quote.Price.Amount.Equal(decimal.RequireFromString("28")))
	require.Nil(t, children[3].Quote)
}

func TestCheapestChildPriceInfo(t *testing.T) {
	p := &Product{
		ID:   uuid.New(),
		Slug: "tee",
		Variants: []Variant{
			{ID: uuid.New(), Title: "L", Price: num("28.00")},
			{ID: uuid.New(), Title: "S", Price: num("19.00")},
		},
	}
	quote, err := p.GetCheapestChildPriceInfo(context.Background(), display.View{Currency: "USD"}, one())
	require.NoError(t, err)
	require.NotNil(t, quote)
	require.True(t, quote.Price.Amount.Equal(decimal.RequireFromString("19")))
}

func TestVariantFallsBackToParentPrice(t *testing.T) {
	p := &Product{
		ID:        uuid.New(),
		Slug:      "poster",
		Price:     num("15.00"),
		CompareAt: num("20.00"),
		Variants: []Variant{
			{ID: uuid.New(), Title: "A3"},
			{ID: uuid.New(), Title: "A2", Price: num("18.00")},
		},
	}
	children, err := p.GetPricedChildren(context.Background(), display.View{Currency: "USD"}, one())
	require.NoError(t, err)
	require.Len(t, children, 2)
	// The unpriced A3 variant inherits the parent price and base price.
	require.True(t, children[0].Quote.Price.Amount.Equal(decimal.RequireFromString("15")))
	require.True(t, children[0].Quote.BasePrice.Amount.Equal(decimal.RequireFromString("20")))
}
