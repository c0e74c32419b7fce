package basket

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-storefront/internal/money"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Store{Client: client, TTL: time.Hour}
}

func TestStoreEnsureCreatesEmptyBasket(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b, err := store.Ensure(ctx, "anon-1", "USD")
	require.NoError(t, err)
	require.Equal(t, "anon-1", b.ID)
	require.True(t, b.IsEmpty())

	again, err := store.Ensure(ctx, "anon-1", "USD")
	require.NoError(t, err)
	require.Equal(t, b.ID, again.ID)
}

func TestStoreAddLineMergesByProduct(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	productID := uuid.New()
	line := Line{
		ProductID: productID,
		Slug:      "mug",
		Title:     "Mug",
		Quantity:  1,
		UnitPrice: money.Taxless(dec("9.90"), "USD"),
	}

	b, err := store.AddLine(ctx, "anon-2", "USD", line)
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)

	b, err = store.AddLine(ctx, "anon-2", "USD", line)
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)
	require.Equal(t, int64(2), b.Lines[0].Quantity)

	other := line
	other.ProductID = uuid.New()
	b, err = store.AddLine(ctx, "anon-2", "USD", other)
	require.NoError(t, err)
	require.Len(t, b.Lines, 2)
	require.Equal(t, int64(3), b.ItemCount())
}

func TestStoreAddLineRejectsNonPositiveQuantity(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AddLine(context.Background(), "anon-3", "USD", Line{ProductID: uuid.New(), Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	b, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, b)
}
