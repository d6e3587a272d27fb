package catalog

import (
	"context"
	"errors"

	"github.com/ludovicdevio/storefront/internal/domain"
)

// Client is the read contract against the remote commerce provider plus the
// single write it needs: creating a hosted checkout session.
type Client interface {
	// ListActive returns the products currently purchasable.
	ListActive(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns one product or ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// GetActivePrice returns the effective unit price for a product: the
	// first active price in the provider's default most-recent-first order.
	// Returns ErrPriceNotFound when the product has no active price.
	GetActivePrice(ctx context.Context, productID string) (*domain.Price, error)

	// CreateCheckoutSession submits all line items in one request and
	// returns the provider-hosted redirect URL.
	CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (string, error)
}

// LineItem is one priced entry of a checkout-session request.
type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64 // minor units
	Quantity   int64
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrPriceNotFound   = errors.New("no active price for product")

	// ErrProviderUnavailable is returned while the circuit breaker holds
	// the provider off.
	ErrProviderUnavailable = errors.New("catalog provider unavailable")
)
