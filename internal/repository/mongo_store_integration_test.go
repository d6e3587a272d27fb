package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/ludovicdevio/storefront/internal/domain"
)

func setupTestDB(t *testing.T) (CartStore, func()) {
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	store := NewMongoStore(db)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return store, cleanup
}

func TestMongoStore_FindAbsent(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.Find(context.Background(), "cart_missing")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMongoStore_UpsertFindRoundtrip(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	cart := domain.NewCart("cart_abc")
	cart.Items["prod_1"] = &domain.CartItem{ProductID: "prod_1", Quantity: 2}
	require.NoError(t, store.Upsert(ctx, cart))

	found, err := store.Find(ctx, "cart_abc")
	require.NoError(t, err)
	assert.Equal(t, "cart_abc", found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items["prod_1"].Quantity)
}

func TestMongoStore_UpsertReplacesWholeRecord(t *testing.T) {
	store, cleanup := setupTestDB(t)
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

func TestMongoStore_Delete(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	cart := domain.NewCart("cart_abc")
	require.NoError(t, store.Upsert(ctx, cart))
	require.NoError(t, store.Delete(ctx, "cart_abc"))

	_, err := store.Find(ctx, "cart_abc")
	assert.ErrorIs(t, err, ErrCartNotFound)

	// Deleting again is fine; callers recreate right after.
	assert.NoError(t, store.Delete(ctx, "cart_abc"))
}
