package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ludovicdevio/storefront/internal/catalog"
	"github.com/ludovicdevio/storefront/internal/checkout"
	"github.com/ludovicdevio/storefront/internal/domain"
	"github.com/ludovicdevio/storefront/internal/observability"
	"github.com/ludovicdevio/storefront/internal/repository"
	"github.com/ludovicdevio/storefront/internal/service"
	"github.com/ludovicdevio/storefront/internal/session"
)

type StorefrontHandler struct {
	sessions  *session.Provider
	carts     *service.CartService
	catalog   catalog.Client
	assembler *checkout.Assembler
	baseURL   string
	logger    *zap.Logger
	metrics   *observability.Metrics
}

func NewStorefrontHandler(
	sessions *session.Provider,
	carts *service.CartService,
	catalogClient catalog.Client,
	assembler *checkout.Assembler,
	baseURL string,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *StorefrontHandler {
	return &StorefrontHandler{
		sessions:  sessions,
		carts:     carts,
		catalog:   catalogClient,
		assembler: assembler,
		baseURL:   baseURL,
		logger:    logger,
		metrics:   metrics,
	}
}

type HomeResponse struct {
	CartKey  string           `json:"cart_key"`
	Products []domain.Product `json:"products"`
	Cart     *domain.Cart     `json:"cart"`
	Notice   string           `json:"notice,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Home lists active products next to the visitor's cart. A provider outage
// degrades to an empty listing with a notice instead of failing the page.
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)

	cart, err := h.carts.GetOrCreate(r.Context(), key)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	resp := HomeResponse{CartKey: key, Cart: cart, Products: []domain.Product{}}
	products, err := h.catalog.ListActive(r.Context())
	if err != nil {
		h.logger.Error("product listing failed", zap.Error(err))
		resp.Notice = "products are temporarily unavailable, please try again later"
	} else {
		resp.Products = products
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// ViewCart returns the cart resolved against the catalog: names, images,
// unit prices and the grand total.
func (h *StorefrontHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)

	cart, err := h.carts.GetOrCreate(r.Context(), key)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	view, err := h.carts.WithDetails(r.Context(), cart)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)
	productID := chi.URLParam(r, "productID")

	// Reject IDs the catalog does not know before they pollute the cart.
	if _, err := h.catalog.GetProduct(r.Context(), productID); err != nil {
		h.metrics.ObserveCartOp("add", err)
		h.respondServiceError(w, err)
		return
	}

	cart, err := h.carts.Add(r.Context(), key, productID)
	h.metrics.ObserveCartOp("add", err)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, cart)
}

func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)
	productID := chi.URLParam(r, "productID")

	cart, err := h.carts.Remove(r.Context(), key, productID)
	h.metrics.ObserveCartOp("remove", err)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, cart)
}

func (h *StorefrontHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)
	productID := chi.URLParam(r, "productID")

	cart, err := h.carts.Decrease(r.Context(), key, productID)
	h.metrics.ObserveCartOp("decrease", err)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, cart)
}

func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)

	cart, err := h.carts.Clear(r.Context(), key)
	h.metrics.ObserveCartOp("clear", err)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, cart)
}

// CheckoutCart prices the whole cart and redirects to the provider-hosted
// payment page. A cart that cannot be fully priced is never submitted.
func (h *StorefrontHandler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)

	cart, err := h.carts.GetOrCreate(r.Context(), key)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	url, err := h.assembler.BuyURLForCart(r.Context(), cart,
		h.baseURL+"/payment/success", h.baseURL+"/payment/cancel")
	h.metrics.ObserveCartOp("checkout", err)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// CheckoutProduct is the buy-now path: one product, straight to the provider.
func (h *StorefrontHandler) CheckoutProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	quantity := int64(1)
	if q := r.URL.Query().Get("quantity"); q != "" {
		parsed, err := strconv.ParseInt(q, 10, 64)
		if err != nil || parsed < 1 || parsed > 99 {
			h.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
			return
		}
		quantity = parsed
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	url, err := h.assembler.BuyURLForProduct(r.Context(), product, quantity,
		h.baseURL+"/payment/success", h.baseURL+"/payment/cancel")
	h.metrics.ObserveCartOp("checkout", err)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// PaymentSuccess is the provider's success redirect target. The paid cart is
// emptied before sending the visitor home.
func (h *StorefrontHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.CartKey(w, r)

	if _, err := h.carts.Clear(r.Context(), key); err != nil {
		// The payment went through; an unreachable store must not turn
		// the success page into an error.
		h.logger.Error("failed to clear cart after payment", zap.Error(err),
			zap.String("cart_key", key))
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *StorefrontHandler) PaymentCancel(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/cart", http.StatusFound)
}

func (h *StorefrontHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *StorefrontHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps the error taxonomy onto HTTP statuses.
func (h *StorefrontHandler) respondServiceError(w http.ResponseWriter, err error) {
	var priceErr *checkout.PriceUnavailableError

	switch {
	case errors.Is(err, repository.ErrStoreUnavailable):
		h.respondError(w, http.StatusServiceUnavailable, "store_unavailable", "cart storage is unavailable")
	case errors.Is(err, catalog.ErrProviderUnavailable):
		h.respondError(w, http.StatusServiceUnavailable, "provider_unavailable", "catalog provider is unavailable")
	case errors.Is(err, catalog.ErrProductNotFound):
		h.respondError(w, http.StatusNotFound, "product_not_found", "the product does not exist or is unavailable")
	case errors.As(err, &priceErr):
		h.respondError(w, http.StatusConflict, "price_unavailable", priceErr.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		h.respondError(w, http.StatusConflict, "empty_cart", "your cart is empty")
	default:
		h.logger.Error("provider request failed", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "provider_error", "the commerce provider could not be reached")
	}
}
