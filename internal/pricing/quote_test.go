package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/money"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestQuoteDerivedProperties(t *testing.T) {
	q := NewQuote(dec("2"),
		money.Taxless(dec("150.00"), "USD"),
		money.Taxless(dec("200.00"), "USD"))

	if got := q.DiscountAmount().Amount; !got.Equal(dec("50.00")) {
		t.Fatalf("discount amount = %s, want 50.00", got)
	}
	if got := q.DiscountPercent(); !got.Equal(dec("0.25")) {
		t.Fatalf("discount percent = %s, want 0.25", got)
	}
	if got := q.UnitPrice().Amount; !got.Equal(dec("75")) {
		t.Fatalf("unit price = %s, want 75", got)
	}
	if got := q.UnitBasePrice().Amount; !got.Equal(dec("100")) {
		t.Fatalf("unit base price = %s, want 100", got)
	}
	if !q.IsDiscounted() {
		t.Fatal("expected quote to be discounted")
	}
}

func TestQuoteZeroBaseDefaultsToPrice(t *testing.T) {
	q := NewQuote(dec("1"), money.Taxless(dec("19.99"), "USD"), money.Price{})
	if !q.BasePrice.Amount.Equal(dec("19.99")) {
		t.Fatalf("base price = %s, want 19.99", q.BasePrice.Amount)
	}
	if q.IsDiscounted() {
		t.Fatal("quote without base price must not be discounted")
	}
}

func TestQuotePropertyLookup(t *testing.T) {
	q := NewQuote(dec("1"), money.Taxless(dec("10"), "USD"), money.Taxless(dec("10"), "USD"))
	for _, name := range []string{"price", "base_price", "discount_amount", "discount_percent", "unit_price", "unit_base_price"} {
		if _, err := q.Property(name); err != nil {
			t.Fatalf("property %q: %v", name, err)
		}
	}
	if _, err := q.Property("no_such_property"); err == nil {
		t.Fatal("expected error for unknown property")
	}
}

func TestComputeQuoteScalesByQuantity(t *testing.T) {
	q := ComputeQuote(dec("19.99"), dec("24.99"), dec("3"), "USD", false)
	if !q.Price.Amount.Equal(dec("59.97")) {
		t.Fatalf("price = %s, want 59.97", q.Price.Amount)
	}
	if !q.BasePrice.Amount.Equal(dec("74.97")) {
		t.Fatalf("base price = %s, want 74.97", q.BasePrice.Amount)
	}
	if q.Price.IncludesTax {
		t.Fatal("price should be tax exclusive")
	}
}
