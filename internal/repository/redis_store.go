package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ludovicdevio/storefront/internal/domain"
)

// cartTTL matches the retention window for abandoned carts.
const cartTTL = 90 * 24 * time.Hour

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) CartStore {
	return &redisStore{
		client: client,
		ttl:    cartTTL,
	}
}

func (r *redisStore) Find(ctx context.Context, key string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, storeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", storeUnavailable(err))
	}

	var cart domain.Cart
	if err2 := json.Unmarshal(data, &cart); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}
	if cart.Items == nil {
		cart.Items = make(map[string]*domain.CartItem)
	}

	return &cart, nil
}

func (r *redisStore) Upsert(ctx context.Context, cart *domain.Cart) error {
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, storeKey(cart.ID), jsonCart, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", storeUnavailable(err))
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, storeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", storeUnavailable(err))
	}
	return nil
}

func storeKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
