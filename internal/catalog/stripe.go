package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/ludovicdevio/storefront/internal/domain"
)

// StripeClient implements Client against the Stripe API. All prices are in
// EUR minor units, checkout sessions run in one-shot payment mode with card
// as the only payment method.
type StripeClient struct {
	api      *client.API
	currency string
}

func NewStripeClient(apiKey string) *StripeClient {
	return &StripeClient{
		api:      client.New(apiKey, nil),
		currency: "eur",
	}
}

func (s *StripeClient) ListActive(ctx context.Context) ([]domain.Product, error) {
	params := &stripe.ProductListParams{
		Active: stripe.Bool(true),
	}
	params.Context = ctx

	var products []domain.Product
	iter := s.api.Products.List(params)
	for iter.Next() {
		products = append(products, toProduct(iter.Product()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}

	return products, nil
}

func (s *StripeClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	params := &stripe.ProductParams{}
	params.Context = ctx

	p, err := s.api.Products.Get(id, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	product := toProduct(p)
	return &product, nil
}

func (s *StripeClient) GetActivePrice(ctx context.Context, productID string) (*domain.Price, error) {
	params := &stripe.PriceListParams{
		Product: stripe.String(productID),
		Active:  stripe.Bool(true),
	}
	params.Context = ctx
	// Stripe lists most-recently-created first; the first hit is the
	// effective price.
	params.Limit = stripe.Int64(1)

	iter := s.api.Prices.List(params)
	if iter.Next() {
		p := iter.Price()
		return &domain.Price{
			ID:         p.ID,
			UnitAmount: p.UnitAmount,
			Currency:   string(p.Currency),
			Active:     p.Active,
		}, nil
	}
	if err := iter.Err(); err != nil {
		if isResourceMissing(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("list prices for %s: %w", productID, err)
	}

	return nil, ErrPriceNotFound
}

func (s *StripeClient) CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(item.Name),
					Images: stripe.StringSlice(item.Images),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return sess.URL, nil
}

func toProduct(p *stripe.Product) domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Images:      p.Images,
	}
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripe.ErrorCodeResourceMissing ||
		stripeErr.HTTPStatusCode == http.StatusNotFound
}
