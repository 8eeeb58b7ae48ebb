package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"derby-shop-api/internal/client"
	"derby-shop-api/internal/config"
	"derby-shop-api/internal/handler"
	"derby-shop-api/internal/metrics"
	"derby-shop-api/internal/pkg/logging"
	"derby-shop-api/internal/repository"
	"derby-shop-api/internal/server"
	"derby-shop-api/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger("derby-shop-api", cfg.Environment.Name, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	rdb, err := client.InitRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	if rdb == nil {
		logger.Warn("REDIS_ADDR not set, checkout rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	gateway := client.NewStripeClient(&cfg.Stripe)

	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	checkoutService := service.NewCheckoutService(db, gateway, orderRepo, orderItemRepo, inventoryRepo, logger, m)
	orderService := service.NewOrderService(orderRepo, orderItemRepo, logger)
	webhookService := service.NewWebhookService(gateway, orderRepo, webhookEventRepo, logger, m)

	srv := server.NewServer(
		handler.NewOrderHandler(checkoutService, orderService),
		handler.NewWebhookHandler(webhookService),
		logger,
		server.Options{
			JWTSecret:         []byte(cfg.Auth.JWTSecret),
			AllowedOrigins:    []string{cfg.HTTP.FrontendURL},
			CheckoutPerMinute: cfg.RateLimit.CheckoutPerMinute,
			Redis:             rdb,
			Gatherer:          reg,
		},
	)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", cfg.Address()))
		if err := srv.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
