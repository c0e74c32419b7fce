package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/common"
)

// Repo runs catalog queries against Postgres.
type Repo struct {
	Pool *pgxpool.Pool
	// PricesIncludeTax is stamped onto every loaded product.
	PricesIncludeTax bool
}

const productColumns = `id, slug, title, price::text, compare_at::text, in_stock`

// GetProductBySlug loads a product and its variants.
func (r *Repo) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("catalog repo not configured")
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	product.PricesIncludeTax = r.PricesIncludeTax
	if err := r.loadVariants(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns products ordered by title, variants included.
func (r *Repo) ListProducts(ctx context.Context, limit int) ([]*Product, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("catalog repo not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY title LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		product.PricesIncludeTax = r.PricesIncludeTax
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for _, product := range products {
		if err := r.loadVariants(ctx, product); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *Repo) loadVariants(ctx context.Context, product *Product) error {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, sku, title, price::text, compare_at::text, in_stock
		 FROM product_variants WHERE product_id = $1 ORDER BY price NULLS LAST`, product.ID)
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v         Variant
			id        [16]byte
			sku       *string
			price     *string
			compareAt *string
		)
		if err := rows.Scan(&id, &sku, &v.Title, &price, &compareAt, &v.InStock); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		v.ID = uuid.UUID(id)
		if sku != nil {
			v.SKU = *sku
		}
		if v.Price, err = parseNullDecimal(price); err != nil {
			return err
		}
		if v.CompareAt, err = parseNullDecimal(compareAt); err != nil {
			return err
		}
		product.Variants = append(product.Variants, v)
	}
	return rows.Err()
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p         Product
		id        [16]byte
		price     *string
		compareAt *string
	)
	if err := row.Scan(&id, &p.Slug, &p.Title, &price, &compareAt, &p.InStock); err != nil {
		return nil, err
	}
	p.ID = uuid.UUID(id)
	var err error
	if p.Price, err = parseNullDecimal(price); err != nil {
		return nil, err
	}
	if p.CompareAt, err = parseNullDecimal(compareAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func parseNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse decimal %q: %w", *s, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
