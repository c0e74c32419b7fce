package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-storefront/internal/basket"
	"github.com/noah-isme/backend-storefront/internal/catalog"
	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/display"
	"github.com/noah-isme/backend-storefront/internal/money"
	"github.com/noah-isme/backend-storefront/internal/taxing"
)

type fakeCatalog struct {
	products map[string]*catalog.Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, slug string) (*catalog.Product, error) {
	if p, ok := f.products[slug]; ok {
		return p, nil
	}
	return nil, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, nil)
}

func (f *fakeCatalog) ListProducts(context.Context) ([]*catalog.Product, error) {
	out := make([]*catalog.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func price(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func testProducts() map[string]*catalog.Product {
	return map[string]*catalog.Product{
		"plain-tee": {
			ID:               uuid.New(),
			Slug:             "plain-tee",
			Title:            "Plain Tee",
			Price:            price("19.99"),
			CompareAt:        price("25.00"),
			InStock:          true,
			PricesIncludeTax: true,
		},
		"hoodie": {
			ID:               uuid.New(),
			Slug:             "hoodie",
			Title:            "Hoodie",
			PricesIncludeTax: true,
			Variants: []catalog.Variant{
				{ID: uuid.New(), Title: "S", Price: price("39.00")},
				{ID: uuid.New(), Title: "XL", Price: price("49.00")},
			},
		},
	}
}

func newTestHandler(t *testing.T, shop ShopSettings) *Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	formatter, err := money.NewFormatter("en-US", "USD")
	require.NoError(t, err)
	registry, err := display.NewRegistry(display.RegistryConfig{
		Converter: taxing.RateConverter{RateBps: 1000, DisplayTaxful: true},
		Formatter: formatter,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	h, err := NewHandler(HandlerConfig{
		Catalog:  &fakeCatalog{products: testProducts()},
		Baskets:  &basket.Store{Client: client},
		Registry: registry,
		Delivery: basket.DeliveryMethod{
			Name: "standard",
			Fee:  money.Taxful(decimal.RequireFromString("4.90"), "USD"),
		},
		Shop:   shop,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	return h
}

func get(t *testing.T, h *Handler, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestListPageShowsPrices(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})

	rec := get(t, h, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Plain Tee")
	require.Contains(t, body, "19.99")
	// Variation parent renders a range over its children.
	require.Contains(t, body, "39")
	require.Contains(t, body, "49")
}

func TestHiddenShopRendersNoPrices(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD", HidePrices: true})

	rec := get(t, h, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Plain Tee")
	require.NotContains(t, body, "19.99")
	require.NotContains(t, body, "39")
}

func TestHeaderOverridesHidesPrices(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})

	rec := get(t, h, "/products/plain-tee", http.Header{priceDisplayHeader: {"hidden"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Plain Tee")
	require.NotContains(t, body, "19.99")
	require.NotContains(t, body, "25.00")
}

func TestDetailPageShowsDiscount(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})

	rec := get(t, h, "/products/plain-tee", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "19.99")
	require.Contains(t, body, "25")
	require.Contains(t, body, "%")
}

func TestDetailPageNotFound(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})

	rec := get(t, h, "/products/nope", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestBasketPageSetsCookie(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})

	rec := get(t, h, "/basket", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Your basket is empty")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, basketCookie, cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
}

func TestAddToBasketFlow(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})
	router := h.Routes()

	body, _ := json.Marshal(map[string]any{"slug": "plain-tee", "quantity": 2})
	req := httptest.NewRequest(http.MethodPost, "/basket/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		BasketID  string `json:"basketId"`
		ItemCount int64  `json:"itemCount"`
		LineTotal string `json:"lineTotal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.ItemCount)
	require.Contains(t, resp.LineTotal, "39.98")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	// The basket page for the same cookie shows the line and totals.
	pageReq := httptest.NewRequest(http.MethodGet, "/basket", nil)
	pageReq.AddCookie(cookies[0])
	pageRec := httptest.NewRecorder()
	router.ServeHTTP(pageRec, pageReq)

	require.Equal(t, http.StatusOK, pageRec.Code)
	page := pageRec.Body.String()
	require.Contains(t, page, "Plain Tee")
	require.Contains(t, page, "39.98")
	require.Contains(t, page, "4.90")
}

func TestAddToBasketRejectsBadRequests(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})
	router := h.Routes()

	for name, payload := range map[string]string{
		"not json":     "nope",
		"missing slug": `{"quantity": 1}`,
		"too many":     `{"slug": "plain-tee", "quantity": 500}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/basket/items", bytes.NewReader([]byte(payload)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAddToBasketUnpurchasableParent(t *testing.T) {
	h := newTestHandler(t, ShopSettings{Name: "Test Shop", Currency: "USD"})

	body := []byte(`{"slug": "hoodie", "quantity": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/basket/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_PURCHASABLE")
}
