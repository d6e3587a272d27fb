package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ludovicdevio/storefront/internal/observability"
)

// NewRouter builds the storefront routing table with the shared middleware
// chain.
func NewRouter(h *StorefrontHandler, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))
	r.Use(RequestLogger(logger))
	r.Use(RequestMetrics(metrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Home)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.ViewCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items/{productID}", h.AddItem)
		r.Post("/items/{productID}/decrease", h.DecreaseItem)
		r.Delete("/items/{productID}", h.RemoveItem)
	})

	r.Post("/checkout", h.CheckoutCart)
	r.Post("/products/{productID}/checkout", h.CheckoutProduct)

	r.Get("/payment/success", h.PaymentSuccess)
	r.Get("/payment/cancel", h.PaymentCancel)

	return r
}
