package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ludovicdevio/storefront/internal/catalog"
	"github.com/ludovicdevio/storefront/internal/checkout"
	"github.com/ludovicdevio/storefront/internal/config"
	h "github.com/ludovicdevio/storefront/internal/http"
	"github.com/ludovicdevio/storefront/internal/observability"
	"github.com/ludovicdevio/storefront/internal/repository"
	"github.com/ludovicdevio/storefront/internal/service"
	"github.com/ludovicdevio/storefront/internal/session"
)

const serviceName = "storefront"

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(serviceName)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if cfg.EnableTracing {
		shutdown, err := observability.InitTracing(ctx, cfg.OTLPEndpoint, serviceName)
		if err != nil {
			logger.Fatal("failed to init tracing", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("trace provider shutdown failed", zap.Error(err))
			}
		}()
	}

	store, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up cart store", zap.Error(err))
	}
	defer closeStore()

	if cfg.StripeAPIKey == "" {
		logger.Fatal("STRIPE_API_KEY is required")
	}
	catalogClient := catalog.WithBreaker(catalog.NewStripeClient(cfg.StripeAPIKey))

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	carts := service.NewCartService(store, catalogClient, logger)
	assembler := checkout.NewAssembler(catalogClient)
	sessions := session.NewProvider(strings.HasPrefix(cfg.PublicBaseURL, "https://"))

	handler := h.NewStorefrontHandler(sessions, carts, catalogClient, assembler,
		cfg.PublicBaseURL, logger, metrics)
	router := h.NewRouter(handler, logger, metrics, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", zap.String("port", cfg.HTTPPort),
			zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.CartStore, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		return repository.NewRedisStore(client), func() { client.Close() }, nil

	case "mongo":
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to mongodb", zap.String("uri", cfg.MongoURI))
		return repository.NewMongoStore(db), func() { db.Client().Disconnect(ctx) }, nil

	default:
		logger.Warn("using in-memory cart store, carts will not survive restarts")
		return repository.NewMemoryStore(), func() {}, nil
	}
}
