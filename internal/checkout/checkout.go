package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ludovicdevio/storefront/internal/catalog"
	"github.com/ludovicdevio/storefront/internal/domain"
)

// ErrEmptyCart rejects checkout of a cart with no line items.
var ErrEmptyCart = errors.New("cart is empty")

// PriceUnavailableError aborts a checkout whose line item cannot be priced.
// Unlike the cart view, checkout never skips: either every item resolves or
// nothing is submitted.
type PriceUnavailableError struct {
	ProductID string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no active price available for product %s", e.ProductID)
}

// Assembler turns a cart or a single product into a provider checkout
// session and hands back the hosted redirect URL.
type Assembler struct {
	catalog catalog.Client
}

func NewAssembler(catalogClient catalog.Client) *Assembler {
	return &Assembler{catalog: catalogClient}
}

// BuyURLForCart prices every line item, fails fast on the first one that
// cannot be resolved, and submits a single session request covering all
// items. The cart itself is never modified.
func (a *Assembler) BuyURLForCart(ctx context.Context, cart *domain.Cart, successURL, cancelURL string) (string, error) {
	if cart.IsEmpty() {
		return "", ErrEmptyCart
	}

	productIDs := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	items := make([]catalog.LineItem, 0, len(cart.Items))
	for _, productID := range productIDs {
		cartItem := cart.Items[productID]

		product, err := a.catalog.GetProduct(ctx, productID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			return "", &PriceUnavailableError{ProductID: productID}
		}
		if err != nil {
			return "", err
		}

		item, err := a.lineItem(ctx, product, int64(cartItem.Quantity))
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}

	return a.catalog.CreateCheckoutSession(ctx, items, successURL, cancelURL)
}

// BuyURLForProduct is the single-item variant of BuyURLForCart.
func (a *Assembler) BuyURLForProduct(ctx context.Context, product *domain.Product, quantity int64, successURL, cancelURL string) (string, error) {
	item, err := a.lineItem(ctx, product, quantity)
	if err != nil {
		return "", err
	}

	return a.catalog.CreateCheckoutSession(ctx, []catalog.LineItem{item}, successURL, cancelURL)
}

func (a *Assembler) lineItem(ctx context.Context, product *domain.Product, quantity int64) (catalog.LineItem, error) {
	price, err := a.catalog.GetActivePrice(ctx, product.ID)
	if errors.Is(err, catalog.ErrPriceNotFound) || errors.Is(err, catalog.ErrProductNotFound) {
		return catalog.LineItem{}, &PriceUnavailableError{ProductID: product.ID}
	}
	if err != nil {
		return catalog.LineItem{}, err
	}

	return catalog.LineItem{
		Name:       product.Name,
		Images:     product.Images,
		UnitAmount: price.UnitAmount,
		Quantity:   quantity,
	}, nil
}
