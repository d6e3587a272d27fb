package repository

import (
	"context"
	"sync"

	"github.com/ludovicdevio/storefront/internal/domain"
)

// MemoryStore implements CartStore with in-memory storage. Used as the
// default backend in development and as the base store in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]*domain.Cart),
	}
}

func (s *MemoryStore) Find(_ context.Context, key string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[key]
	if !ok {
		return nil, ErrCartNotFound
	}

	// Clone on the way out so callers get the same value semantics a real
	// store gives them.
	return cart.Clone(), nil
}

func (s *MemoryStore) Upsert(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.ID] = cart.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, key)
	return nil
}
