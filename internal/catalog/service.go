package catalog

import (
	"context"
	"errors"
	"strings"
)

// productSource abstracts the Postgres repo for the service and its tests.
type productSource interface {
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListProducts(ctx context.Context, limit int) ([]*Product, error)
}

// Service fronts catalog lookups with the Redis cache.
type Service struct {
	source    productSource
	cache     *Cache
	listLimit int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Source    productSource
	Cache     *Cache
	ListLimit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("catalog: product source is required")
	}
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = 50
	}
	return &Service{source: cfg.Source, cache: cfg.Cache, listLimit: limit}, nil
}

// GetProduct loads a product by slug, cache first.
func (s *Service) GetProduct(ctx context.Context, slug string) (*Product, error) {
	slug = strings.TrimSpace(slug)
	if cached, ok := s.cache.GetProduct(ctx, slug); ok {
		return cached, nil
	}
	product, err := s.source.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.cache.SetProduct(ctx, product)
	return product, nil
}

// ListProducts returns the default storefront listing, cache first.
func (s *Service) ListProducts(ctx context.Context) ([]*Product, error) {
	if cached, ok := s.cache.GetList(ctx); ok {
		return cached, nil
	}
	products, err := s.source.ListProducts(ctx, s.listLimit)
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, products)
	return products, nil
}
