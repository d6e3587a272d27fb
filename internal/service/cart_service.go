package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ludovicdevio/storefront/internal/catalog"
	"github.com/ludovicdevio/storefront/internal/domain"
	"github.com/ludovicdevio/storefront/internal/repository"
)

// CartService is the cart state machine. Every mutation follows
// load-or-create, mutate, persist; the store record is replaced whole and the
// later write wins when two requests race on the same key.
type CartService struct {
	store   repository.CartStore
	catalog catalog.Client
	logger  *zap.Logger
	sfg     singleflight.Group // Prevents duplicate loads of the same key
}

func NewCartService(store repository.CartStore, catalogClient catalog.Client, logger *zap.Logger) *CartService {
	return &CartService{
		store:   store,
		catalog: catalogClient,
		logger:  logger,
	}
}

// GetOrCreate loads the cart for key, creating and persisting an empty one on
// first access. Idempotent: repeated calls with no intervening mutation
// return the same stored state. Each caller gets its own copy; overlapping
// requests deduplicated by singleflight must not share a mutable aggregate.
func (s *CartService) GetOrCreate(ctx context.Context, key string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cart, err := s.store.Find(ctx, key)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrCartNotFound) {
			return nil, err
		}

		cart = domain.NewCart(key)
		if err := s.store.Upsert(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart).Clone(), nil
}

// Add puts one more unit of productID into the cart, inserting the line item
// at quantity 1 when it is new.
func (s *CartService) Add(ctx context.Context, key, productID string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	if item, ok := cart.Items[productID]; ok {
		item.Quantity++
	} else {
		cart.Items[productID] = &domain.CartItem{ProductID: productID, Quantity: 1}
	}

	if err := s.store.Upsert(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove drops the line item entirely. Removing a product that is not in the
// cart is a no-op and writes nothing.
func (s *CartService) Remove(ctx context.Context, key, productID string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	if _, ok := cart.Items[productID]; !ok {
		return cart, nil
	}

	delete(cart.Items, productID)
	if err := s.store.Upsert(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Decrease takes one unit off the line item, removing it when the quantity
// would reach zero. A product not in the cart is a no-op.
func (s *CartService) Decrease(ctx context.Context, key, productID string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	item, ok := cart.Items[productID]
	if !ok {
		return cart, nil
	}

	if item.Quantity > 1 {
		item.Quantity--
	} else {
		delete(cart.Items, productID)
	}

	if err := s.store.Upsert(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart and verifies the write landed. Stores with
// change-detection on nested fields have been seen to drop an in-place map
// reset, so a non-empty re-read escalates to delete-and-recreate, which
// guarantees the empty postcondition.
func (s *CartService) Clear(ctx context.Context, key string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	cart.Items = make(map[string]*domain.CartItem)
	if err := s.store.Upsert(ctx, cart); err != nil {
		return nil, err
	}

	stored, err := s.store.Find(ctx, key)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}
	if stored != nil && !stored.IsEmpty() {
		s.logger.Warn("clear verification failed, recreating cart",
			zap.String("cart_key", key))

		if err := s.store.Delete(ctx, key); err != nil {
			return nil, err
		}
		cart = domain.NewCart(key)
		if err := s.store.Upsert(ctx, cart); err != nil {
			return nil, err
		}
	}

	return cart, nil
}

// WithDetails resolves every line item against the catalog and assembles the
// display view. A line whose product or price is gone upstream is skipped so
// one stale reference cannot fail the whole cart; any other provider error
// propagates.
func (s *CartService) WithDetails(ctx context.Context, cart *domain.Cart) (*domain.CartView, error) {
	view := &domain.CartView{
		Items: make([]domain.CartItemView, 0, len(cart.Items)),
	}

	for _, productID := range sortedProductIDs(cart) {
		item := cart.Items[productID]

		product, err := s.catalog.GetProduct(ctx, productID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			s.logger.Warn("skipping stale cart item",
				zap.String("cart_key", cart.ID),
				zap.String("product_id", productID))
			continue
		}
		if err != nil {
			return nil, err
		}

		price, err := s.catalog.GetActivePrice(ctx, productID)
		if errors.Is(err, catalog.ErrPriceNotFound) || errors.Is(err, catalog.ErrProductNotFound) {
			s.logger.Warn("skipping unpriced cart item",
				zap.String("cart_key", cart.ID),
				zap.String("product_id", productID))
			continue
		}
		if err != nil {
			return nil, err
		}

		unitPrice := float64(price.UnitAmount) / 100
		itemView := domain.CartItemView{
			ProductID:   productID,
			Name:        product.Name,
			Description: product.Description,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   unitPrice * float64(item.Quantity),
		}
		if len(product.Images) > 0 {
			itemView.Image = product.Images[0]
		}

		view.Items = append(view.Items, itemView)
		view.Total += itemView.LineTotal
	}

	return view, nil
}

func sortedProductIDs(cart *domain.Cart) []string {
	ids := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
