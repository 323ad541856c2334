package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taabalselect/storefront/config"
	"github.com/taabalselect/storefront/internal/cart"
	httpDelivery "github.com/taabalselect/storefront/internal/delivery/http"
	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/infrastructure/sheets"
	"github.com/taabalselect/storefront/internal/infrastructure/storage"
	"github.com/taabalselect/storefront/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Server.Environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level
	return zcfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting storefront",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Type))

	// Initialize infrastructure dependencies
	kv, err := storage.Open(ctx, storage.Options{
		Type:     cfg.Storage.Type,
		Path:     cfg.Storage.Path,
		RedisURL: cfg.Storage.RedisURL,
		TTL:      cfg.Storage.TTL,
	})
	if err != nil {
		// The cart still works memory-only
		logger.Error("cart storage unavailable", zap.Error(err))
	}

	source := sheets.NewSource(cfg.Feed.URL, cfg.Feed.Timeout, cfg.Feed.RequestsPerMinute, logger)
	if client, ok := source.(*sheets.Client); ok && cfg.Server.Environment == "development" {
		client.SetDebug(true)
		logger.Debug("feed client debug mode enabled")
	}

	// Initialize usecase layer
	catalog := usecase.NewCatalogService(source, usecase.CatalogServiceConfig{
		RefreshInterval: cfg.Feed.RefreshInterval,
	}, logger)
	if _, err := catalog.Load(ctx); err != nil {
		logger.Warn("initial catalog load failed, will retry on demand", zap.Error(err))
	}

	var cartKV domain.KeyValueStore
	if kv != nil {
		cartKV = kv
		defer func() { _ = kv.Close() }()
	}
	store := cart.New(ctx, cartKV, cart.Options{
		Key:              cfg.Storage.Key,
		PersistDelay:     cfg.Cart.PersistDelay,
		PlaceholderImage: cfg.Cart.PlaceholderImage,
		Logger:           logger,
	})

	orders := usecase.NewOrderService(usecase.OrderServiceConfig{
		Title:          cfg.Order.Title,
		Footer:         cfg.Order.Footer,
		WhatsAppNumber: cfg.Order.WhatsAppNumber,
		EmailTo:        cfg.Order.EmailTo,
		Locale:         cfg.Order.LocaleTag(),
		Currency:       cfg.Order.CurrencyUnit(),
		CurrencySymbol: cfg.Order.CurrencySymbol,
	})

	handler := httpDelivery.NewHandler(catalog, store, orders, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	return store.Close(shutdownCtx)
}
