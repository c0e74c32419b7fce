package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	products map[string]*Product
	calls    int
}

func (f *fakeSource) GetProductBySlug(_ context.Context, slug string) (*Product, error) {
	f.calls++
	return f.products[slug], nil
}

func (f *fakeSource) ListProducts(_ context.Context, _ int) ([]*Product, error) {
	f.calls++
	out := make([]*Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Cache{Client: client, TTL: time.Minute}
}

func TestServiceCachesProductLookups(t *testing.T) {
	source := &fakeSource{products: map[string]*Product{
		"mug": {ID: uuid.New(), Slug: "mug", Title: "Mug", Price: num("9.90")},
	}}
	svc, err := NewService(ServiceConfig{Source: source, Cache: newTestCache(t)})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.GetProduct(ctx, "mug")
	require.NoError(t, err)
	require.Equal(t, "Mug", first.Title)
	require.Equal(t, 1, source.calls)

	second, err := svc.GetProduct(ctx, "mug")
	require.NoError(t, err)
	require.Equal(t, first.Slug, second.Slug)
	require.Equal(t, 1, source.calls, "second lookup must be served from cache")
}

func TestServiceWorksWithoutCache(t *testing.T) {
	source := &fakeSource{products: map[string]*Product{
		"mug": {ID: uuid.New(), Slug: "mug", Title: "Mug", Price: num("9.90")},
	}}
	svc, err := NewService(ServiceConfig{Source: source})
	require.NoError(t, err)

	p, err := svc.GetProduct(context.Background(), "mug")
	require.NoError(t, err)
	require.Equal(t, "mug", p.Slug)

	list, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}
