package repository

import (
	"context"
	"errors"

	"github.com/ludovicdevio/storefront/internal/domain"
)

// CartStore defines the persistence contract for cart records.
// Consumers define this interface, not the storage implementation.
type CartStore interface {
	// Find returns the cart stored under key, or ErrCartNotFound.
	// Absence is not a connectivity failure.
	Find(ctx context.Context, key string) (*domain.Cart, error)

	// Upsert replaces the whole record at cart.ID. No partial line-item
	// writes are observable.
	Upsert(ctx context.Context, cart *domain.Cart) error

	// Delete removes the record. Deleting an absent key is not an error;
	// callers follow a Delete with a fresh Upsert.
	Delete(ctx context.Context, key string) error
}

var (
	ErrCartNotFound = errors.New("cart not found")

	// ErrStoreUnavailable tags connectivity failures. Callers treat it as
	// fatal for the current operation; nothing retries internally.
	ErrStoreUnavailable = errors.New("cart store unavailable")
)

// storeUnavailable keeps both ErrStoreUnavailable and the driver error
// matchable in the chain.
func storeUnavailable(err error) error {
	return errors.Join(ErrStoreUnavailable, err)
}
