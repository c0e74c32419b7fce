package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidInput is returned for malformed store arguments.
var ErrInvalidInput = errors.New("basket: invalid input")

// Store persists baskets in Redis keyed by the anonymous basket id. Expiry is
// handled by the key TTL; every write refreshes it.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
	Now    func() time.Time
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Store) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func basketKey(id string) string { return "storefront:basket:" + id }

// Ensure loads the basket for the given id, creating an empty one if absent.
func (s *Store) Ensure(ctx context.Context, id, currency string) (*Basket, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("basket store not configured")
	}
	if id == "" {
		return nil, fmt.Errorf("basket id is required: %w", ErrInvalidInput)
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	b = &Basket{ID: id, Currency: currency, UpdatedAt: s.now()}
	if err := s.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get loads a basket by id. A missing key returns (nil, nil).
func (s *Store) Get(ctx context.Context, id string) (*Basket, error) {
	if s == nil || s.Client == nil || id == "" {
		return nil, nil
	}
	data, err := s.Client.Get(ctx, basketKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load basket: %w", err)
	}
	var b Basket
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode basket: %w", err)
	}
	return &b, nil
}

// Save stores the basket and refreshes its TTL.
func (s *Store) Save(ctx context.Context, b *Basket) error {
	if s == nil || s.Client == nil {
		return errors.New("basket store not configured")
	}
	if b == nil || b.ID == "" {
		return fmt.Errorf("basket id is required: %w", ErrInvalidInput)
	}
	b.UpdatedAt = s.now()
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode basket: %w", err)
	}
	return s.Client.Set(ctx, basketKey(b.ID), data, s.ttl()).Err()
}

// AddLine inserts a line or increments the quantity of an existing one for
// the same product, then saves the basket.
func (s *Store) AddLine(ctx context.Context, id, currency string, line Line) (*Basket, error) {
	if line.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	b, err := s.Ensure(ctx, id, currency)
	if err != nil {
		return nil, err
	}
	merged := false
	for i := range b.Lines {
		if b.Lines[i].ProductID == line.ProductID {
			b.Lines[i].Quantity += line.Quantity
			b.Lines[i].UnitPrice = line.UnitPrice
			merged = true
			break
		}
	}
	if !merged {
		b.Lines = append(b.Lines, line)
	}
	if err := s.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
