package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludovicdevio/storefront/internal/catalog"
	"github.com/ludovicdevio/storefront/internal/domain"
)

type stubCatalog struct {
	products     map[string]domain.Product
	prices       map[string]domain.Price
	priceErr     error
	sessionURL   string
	sessionErr   error
	sessionCalls int
	lastItems    []catalog.LineItem
	lastSuccess  string
	lastCancel   string
}

func (c *stubCatalog) ListActive(context.Context) ([]domain.Product, error) {
	return nil, nil
}

func (c *stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (c *stubCatalog) GetActivePrice(_ context.Context, productID string) (*domain.Price, error) {
	if c.priceErr != nil {
		return nil, c.priceErr
	}
	p, ok := c.prices[productID]
	if !ok {
		return nil, catalog.ErrPriceNotFound
	}
	return &p, nil
}

func (c *stubCatalog) CreateCheckoutSession(_ context.Context, items []catalog.LineItem, successURL, cancelURL string) (string, error) {
	c.sessionCalls++
	c.lastItems = items
	c.lastSuccess = successURL
	c.lastCancel = cancelURL
	if c.sessionErr != nil {
		return "", c.sessionErr
	}
	return c.sessionURL, nil
}

func cartWith(items map[string]int) *domain.Cart {
	cart := domain.NewCart("cart_abc")
	for id, qty := range items {
		cart.Items[id] = &domain.CartItem{ProductID: id, Quantity: qty}
	}
	return cart
}

func TestBuyURLForCart_BuildsOneSessionForAllItems(t *testing.T) {
	cat := &stubCatalog{
		products: map[string]domain.Product{
			"prod_1": {ID: "prod_1", Name: "Mug", Images: []string{"https://img/mug.png"}},
			"prod_2": {ID: "prod_2", Name: "Shirt"},
		},
		prices: map[string]domain.Price{
			"prod_1": {ID: "price_1", UnitAmount: 1250, Active: true},
			"prod_2": {ID: "price_2", UnitAmount: 2000, Active: true},
		},
		sessionURL: "https://pay.example/cs_123",
	}
	assembler := NewAssembler(cat)

	url, err := assembler.BuyURLForCart(context.Background(),
		cartWith(map[string]int{"prod_1": 2, "prod_2": 1}),
		"https://shop/success", "https://shop/cancel")
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example/cs_123", url)
	require.Equal(t, 1, cat.sessionCalls)
	require.Len(t, cat.lastItems, 2)
	assert.Equal(t, "Mug", cat.lastItems[0].Name)
	assert.Equal(t, []string{"https://img/mug.png"}, cat.lastItems[0].Images)
	assert.Equal(t, int64(1250), cat.lastItems[0].UnitAmount)
	assert.Equal(t, int64(2), cat.lastItems[0].Quantity)
	assert.Equal(t, int64(2000), cat.lastItems[1].UnitAmount)
	assert.Equal(t, "https://shop/success", cat.lastSuccess)
	assert.Equal(t, "https://shop/cancel", cat.lastCancel)
}

func TestBuyURLForCart_PriceUnavailableAbortsBeforeSessionCreation(t *testing.T) {
	cat := &stubCatalog{
		products: map[string]domain.Product{
			"prod_1": {ID: "prod_1", Name: "Mug"},
		},
		prices: map[string]domain.Price{}, // no active price
	}
	assembler := NewAssembler(cat)

	_, err := assembler.BuyURLForCart(context.Background(),
		cartWith(map[string]int{"prod_1": 1}),
		"https://shop/success", "https://shop/cancel")

	var priceErr *PriceUnavailableError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, "prod_1", priceErr.ProductID)
	assert.Equal(t, 0, cat.sessionCalls, "no partial checkout may be submitted")
}

func TestBuyURLForCart_MissingProductAborts(t *testing.T) {
	cat := &stubCatalog{
		products: map[string]domain.Product{},
		prices:   map[string]domain.Price{},
	}
	assembler := NewAssembler(cat)

	_, err := assembler.BuyURLForCart(context.Background(),
		cartWith(map[string]int{"prod_gone": 1}),
		"https://shop/success", "https://shop/cancel")

	var priceErr *PriceUnavailableError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, "prod_gone", priceErr.ProductID)
	assert.Equal(t, 0, cat.sessionCalls)
}

func TestBuyURLForCart_EmptyCart(t *testing.T) {
	cat := &stubCatalog{}
	assembler := NewAssembler(cat)

	_, err := assembler.BuyURLForCart(context.Background(), domain.NewCart("cart_abc"),
		"https://shop/success", "https://shop/cancel")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, cat.sessionCalls)
}

func TestBuyURLForCart_ProviderErrorPropagates(t *testing.T) {
	providerErr := errors.New("rate limited")
	cat := &stubCatalog{
		products: map[string]domain.Product{
			"prod_1": {ID: "prod_1", Name: "Mug"},
		},
		priceErr: providerErr,
	}
	assembler := NewAssembler(cat)

	_, err := assembler.BuyURLForCart(context.Background(),
		cartWith(map[string]int{"prod_1": 1}),
		"https://shop/success", "https://shop/cancel")

	assert.ErrorIs(t, err, providerErr)
	assert.Equal(t, 0, cat.sessionCalls)
}

func TestBuyURLForProduct(t *testing.T) {
	cat := &stubCatalog{
		prices: map[string]domain.Price{
			"prod_1": {ID: "price_1", UnitAmount: 990, Active: true},
		},
		sessionURL: "https://pay.example/cs_456",
	}
	assembler := NewAssembler(cat)

	url, err := assembler.BuyURLForProduct(context.Background(),
		&domain.Product{ID: "prod_1", Name: "Mug"}, 3,
		"https://shop/success", "https://shop/cancel")
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example/cs_456", url)
	require.Len(t, cat.lastItems, 1)
	assert.Equal(t, int64(990), cat.lastItems[0].UnitAmount)
	assert.Equal(t, int64(3), cat.lastItems[0].Quantity)
}

func TestBuyURLForProduct_PriceUnavailable(t *testing.T) {
	cat := &stubCatalog{prices: map[string]domain.Price{}}
	assembler := NewAssembler(cat)

	_, err := assembler.BuyURLForProduct(context.Background(),
		&domain.Product{ID: "prod_1", Name: "Mug"}, 1,
		"https://shop/success", "https://shop/cancel")

	var priceErr *PriceUnavailableError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, 0, cat.sessionCalls)
}
