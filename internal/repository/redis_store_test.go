package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludovicdevio/storefront/internal/domain"
)

// setupTestRedis creates a miniredis server and returns a store backed by it
func setupTestRedis(t *testing.T) (CartStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestRedisStore_FindAbsent(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	_, err := store.Find(context.Background(), "cart_missing")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_FindDecodesStoredRecord(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cart := domain.NewCart("cart_abc")
	cart.Items["prod_1"] = &domain.CartItem{ProductID: "prod_1", Quantity: 2}
	cartJSON, _ := json.Marshal(cart)
	mr.Set(storeKey("cart_abc"), string(cartJSON))

	found, err := store.Find(context.Background(), "cart_abc")
	require.NoError(t, err)
	assert.Equal(t, "cart_abc", found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items["prod_1"].Quantity)
}

func TestRedisStore_UpsertFindRoundtrip(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	cart := domain.NewCart("cart_abc")
	cart.Items["prod_1"] = &domain.CartItem{ProductID: "prod_1", Quantity: 3}
	require.NoError(t, store.Upsert(ctx, cart))

	found, err := store.Find(ctx, "cart_abc")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 3, found.Items["prod_1"].Quantity)
}

func TestRedisStore_UpsertReplacesWholeRecord(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	cart := domain.NewCart("cart_abc")
	cart.Items["prod_1"] = &domain.CartItem{ProductID: "prod_1", Quantity: 5}
	require.NoError(t, store.Upsert(ctx, cart))

	replacement := domain.NewCart("cart_abc")
	require.NoError(t, store.Upsert(ctx, replacement))

	found, err := store.Find(ctx, "cart_abc")
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	cart := domain.NewCart("cart_abc")
	require.NoError(t, store.Upsert(ctx, cart))
	require.NoError(t, store.Delete(ctx, "cart_abc"))

	_, err := store.Find(ctx, "cart_abc")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_ConnectivityFailureIsStoreUnavailable(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Close()

	_, err := store.Find(context.Background(), "cart_abc")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = store.Upsert(context.Background(), domain.NewCart("cart_abc"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = store.Delete(context.Background(), "cart_abc")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
