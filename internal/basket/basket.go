package basket

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/money"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// Line is a single basket entry. UnitPrice carries the taxness the price was
// captured with.
type Line struct {
	ProductID uuid.UUID   `json:"productId"`
	Slug      string      `json:"slug"`
	Title     string      `json:"title"`
	Quantity  int64       `json:"quantity"`
	UnitPrice money.Price `json:"unitPrice"`
}

// Total is the line price for the full quantity.
func (l Line) Total() money.Price {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// PriceInfo exposes the line as an already-quoted price record, so templates
// can render it like any other priced item.
func (l Line) PriceInfo() *pricing.Quote {
	total := l.Total()
	return pricing.NewQuote(decimal.NewFromInt(l.Quantity), total, total)
}

// Basket holds the viewer's current selection.
type Basket struct {
	ID        string    `json:"id"`
	Currency  string    `json:"currency"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsEmpty reports whether the basket has no lines.
func (b *Basket) IsEmpty() bool { return b == nil || len(b.Lines) == 0 }

// ItemCount is the total quantity across all lines.
func (b *Basket) ItemCount() int64 {
	var n int64
	for _, l := range b.Lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice is the generic basket total: a plain sum of line amounts. It is
// always available, even when lines disagree on tax inclusion; its taxness is
// taken from the first line.
func (b *Basket) TotalPrice() money.Price {
	total := decimal.Zero
	includesTax := false
	for i, l := range b.Lines {
		total = total.Add(l.Total().Amount)
		if i == 0 {
			includesTax = l.UnitPrice.IncludesTax
		}
	}
	return money.NewPrice(total, b.Currency, includesTax)
}

// TaxfulTotalPrice sums line totals, requiring every line to be tax
// inclusive. Mixed or tax-exclusive lines yield money.ErrTaxnessMismatch.
func (b *Basket) TaxfulTotalPrice() (money.Price, error) {
	return b.totalWithTaxness(true)
}

// TaxlessTotalPrice sums line totals, requiring every line to be tax
// exclusive. Mixed or tax-inclusive lines yield money.ErrTaxnessMismatch.
func (b *Basket) TaxlessTotalPrice() (money.Price, error) {
	return b.totalWithTaxness(false)
}

func (b *Basket) totalWithTaxness(includesTax bool) (money.Price, error) {
	total := money.NewPrice(decimal.Zero, b.Currency, includesTax)
	for _, l := range b.Lines {
		sum, err := total.Add(l.Total())
		if err != nil {
			return money.Price{}, err
		}
		total = sum
	}
	return total, nil
}

// DeliveryMethod quotes its own cost for a basket. Delivery is free once the
// basket total reaches FreeAbove, when that threshold is set.
type DeliveryMethod struct {
	Name      string
	Fee       money.Price
	FreeAbove *money.Money
}

// GetTotalCost returns the delivery cost quote for the given basket.
func (d DeliveryMethod) GetTotalCost(b *Basket) (*pricing.Quote, error) {
	fee := d.Fee
	if b != nil && d.FreeAbove != nil {
		cmp, err := b.TotalPrice().Money.Cmp(*d.FreeAbove)
		if err == nil && cmp >= 0 {
			fee = money.NewPrice(decimal.Zero, d.Fee.Currency, d.Fee.IncludesTax)
		}
	}
	return pricing.NewQuote(decimal.NewFromInt(1), fee, fee), nil
}
