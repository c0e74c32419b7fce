package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores catalog payloads as JSON in Redis. All methods degrade to
// cache misses when the client is absent or failing; rendering never depends
// on the cache.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
	Log    zerolog.Logger
}

func (c *Cache) ttl() time.Duration {
	if c == nil || c.TTL <= 0 {
		return 5 * time.Minute
	}
	return c.TTL
}

func productKey(slug string) string { return "storefront:catalog:product:" + slug }

const listKey = "storefront:catalog:products"

// GetProduct loads a cached product by slug; ok reports a cache hit.
func (c *Cache) GetProduct(ctx context.Context, slug string) (*Product, bool) {
	if c == nil || c.Client == nil || slug == "" {
		return nil, false
	}
	data, err := c.Client.Get(ctx, productKey(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Log.Debug().Err(err).Str("slug", slug).Msg("catalog cache read failed")
		}
		return nil, false
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// SetProduct caches a product by slug.
func (c *Cache) SetProduct(ctx context.Context, p *Product) {
	if c == nil || c.Client == nil || p == nil || p.Slug == "" {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, productKey(p.Slug), data, c.ttl()).Err(); err != nil {
		c.Log.Debug().Err(err).Str("slug", p.Slug).Msg("catalog cache write failed")
	}
}

// GetList loads the cached default product listing.
func (c *Cache) GetList(ctx context.Context) ([]*Product, bool) {
	if c == nil || c.Client == nil {
		return nil, false
	}
	data, err := c.Client.Get(ctx, listKey).Bytes()
	if err != nil {
		return nil, false
	}
	var products []*Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetList caches the default product listing.
func (c *Cache) SetList(ctx context.Context, products []*Product) {
	if c == nil || c.Client == nil {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, listKey, data, c.ttl()).Err(); err != nil {
		c.Log.Debug().Err(err).Msg("catalog cache write failed")
	}
}
