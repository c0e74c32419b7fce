package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/basket"
	"github.com/noah-isme/backend-storefront/internal/catalog"
	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/display"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const basketCookie = "basket_id"

type catalogService interface {
	GetProduct(ctx context.Context, slug string) (*catalog.Product, error)
	ListProducts(ctx context.Context) ([]*catalog.Product, error)
}

// Handler serves the storefront pages and the basket endpoint.
type Handler struct {
	templates *template.Template
	catalog   catalogService
	baskets   *basket.Store
	registry  *display.Registry
	delivery  basket.DeliveryMethod
	validate  *validator.Validate
	shop      ShopSettings
	log       zerolog.Logger
}

// HandlerConfig groups Handler dependencies.
type HandlerConfig struct {
	Catalog  catalogService
	Baskets  *basket.Store
	Registry *display.Registry
	Delivery basket.DeliveryMethod
	Validate *validator.Validate
	Shop     ShopSettings
	Logger   zerolog.Logger
}

// NewHandler parses the embedded templates and wires the page handlers. The
// parse uses a throwaway function map; each request re-binds the functions to
// its own context and view before executing.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("web: catalog service is required")
	}
	if cfg.Baskets == nil {
		return nil, errors.New("web: basket store is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("web: display registry is required")
	}
	if cfg.Validate == nil {
		cfg.Validate = validator.New()
	}
	tmpl, err := template.New("storefront").
		Funcs(cfg.Registry.FuncMap(context.Background(), display.View{})).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Handler{
		templates: tmpl,
		catalog:   cfg.Catalog,
		baskets:   cfg.Baskets,
		registry:  cfg.Registry,
		delivery:  cfg.Delivery,
		validate:  cfg.Validate,
		shop:      cfg.Shop,
		log:       cfg.Logger,
	}, nil
}

// Routes returns the storefront router with the display options middleware
// applied to every endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(DisplayOptionsMiddleware(h.shop))
	r.Get("/", h.ListProducts)
	r.Get("/products/{slug}", h.ProductDetail)
	r.Get("/basket", h.ViewBasket)
	r.Post("/basket/items", h.AddToBasket)
	return r
}

func (h *Handler) view(b *basket.Basket) display.View {
	return display.View{Currency: h.shop.Currency, Basket: b}
}

// render executes a named template with the filter functions bound to the
// request. Output is buffered so a failing filter yields a clean 500 instead
// of a half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, view display.View, data any) {
	tmpl, err := h.templates.Clone()
	if err != nil {
		h.renderError(w, r, name, err)
		return
	}
	var buf bytes.Buffer
	err = tmpl.Funcs(h.registry.FuncMap(r.Context(), view)).ExecuteTemplate(&buf, name, data)
	if err != nil {
		h.renderError(w, r, name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, name string, err error) {
	h.log.Error().Err(err).Str("template", name).Str("path", r.URL.Path).Msg("render page")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// ListProducts renders the storefront landing page.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.render(w, r, "list", h.view(nil), map[string]any{
		"ShopName": h.shop.Name,
		"Products": products,
	})
}

// ProductDetail renders a single product page.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.render(w, r, "detail", h.view(nil), map[string]any{
		"ShopName": h.shop.Name,
		"Product":  product,
	})
}

// ViewBasket renders the basket page, creating an empty basket for first-time
// visitors.
func (h *Handler) ViewBasket(w http.ResponseWriter, r *http.Request) {
	id := h.basketID(w, r)
	b, err := h.baskets.Ensure(r.Context(), id, h.shop.Currency)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.render(w, r, "basket", h.view(b), map[string]any{
		"ShopName": h.shop.Name,
		"Basket":   b,
		"Delivery": h.delivery,
	})
}

type addItemRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gte=1,lte=99"`
}

// AddToBasket adds a product line to the visitor's basket. The response
// carries the formatted line total so the page can update without a reload.
func (h *Handler) AddToBasket(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := h.validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid add to basket request", err.Error())
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.Slug)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	view := h.view(nil)
	quote, err := product.GetPriceInfo(r.Context(), view, decimal.NewFromInt(1))
	if err != nil || quote == nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "NOT_PURCHASABLE", "product cannot be added to the basket", nil)
		return
	}

	id := h.basketID(w, r)
	b, err := h.baskets.AddLine(r.Context(), id, h.shop.Currency, basket.Line{
		ProductID: product.ID,
		Slug:      product.Slug,
		Title:     product.Title,
		Quantity:  req.Quantity,
		UnitPrice: quote.UnitPrice(),
	})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	lineQuote, err := product.GetPriceInfo(r.Context(), view, decimal.NewFromInt(req.Quantity))
	if err != nil {
		h.serviceError(w, err)
		return
	}
	lineTotal, err := h.registry.RenderPriceProperty(r.Context(), view, product, lineQuote, "price")
	if err != nil {
		h.serviceError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"basketId":  b.ID,
		"itemCount": b.ItemCount(),
		"lineTotal": lineTotal,
	})
}

// basketID returns the visitor's basket id, minting a cookie when absent.
func (h *Handler) basketID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(basketCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     basketCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	return id
}

func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	h.log.Error().Err(err).Msg("storefront request failed")
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
