package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ludovicdevio/storefront/internal/domain"
)

// breakerClient guards every provider call with a shared circuit breaker so a
// degraded provider sheds load instead of tying up request workers.
type breakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[any]
}

func WithBreaker(next Client) Client {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Absence is an answer, not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrProductNotFound) ||
				errors.Is(err, ErrPriceNotFound)
		},
	})
	return &breakerClient{next: next, cb: cb}
}

func (b *breakerClient) ListActive(ctx context.Context) ([]domain.Product, error) {
	v, err := b.execute(func() (any, error) {
		return b.next.ListActive(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (b *breakerClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err := b.execute(func() (any, error) {
		return b.next.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (b *breakerClient) GetActivePrice(ctx context.Context, productID string) (*domain.Price, error) {
	v, err := b.execute(func() (any, error) {
		return b.next.GetActivePrice(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Price), nil
}

func (b *breakerClient) CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (string, error) {
	v, err := b.execute(func() (any, error) {
		return b.next.CreateCheckoutSession(ctx, items, successURL, cancelURL)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (b *breakerClient) execute(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return v, err
}
