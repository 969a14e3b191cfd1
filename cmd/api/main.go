package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tuango/internal/config"
	"tuango/internal/database"
	"tuango/internal/handler"
	"tuango/internal/repository"
	"tuango/internal/router"
	"tuango/internal/service"
	"tuango/internal/shipping"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting tuango API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	dealRepo := repository.NewDealRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	stockRepo := repository.NewStockRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	commissionRepo := repository.NewCommissionRepository(pool, logger)

	// Initialize the shipping rate table loader with S3 and local fallback
	fileLoader := shipping.NewFileLoader(logger)
	var rateLoader shipping.Loader

	if cfg.Shipping.S3Enabled {
		s3Loader, err := shipping.NewS3Loader(ctx, cfg.Shipping.Bucket, cfg.Shipping.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			rateLoader = fileLoader
		} else {
			rateLoader = shipping.NewFallbackLoader(s3Loader, fileLoader, cfg.Shipping.Prefix, true, logger)
		}
	} else {
		rateLoader = fileLoader
		logger.Info().Msg("using local file system for the shipping rate table (S3 disabled)")
	}

	// A missing or invalid rate table falls back to the built-in tiers.
	rateTable, err := rateLoader.Load(ctx, cfg.Shipping.RatesFile)
	if err != nil {
		logger.Warn().Err(err).Msg("no rate table loaded, using default tiers")
		rateTable = shipping.DefaultRateTable()
	}
	calculator := shipping.NewCalculator(rateTable, logger)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, dealRepo, logger)
	orderService := service.NewOrderService(
		orderRepo, productRepo, dealRepo, stockRepo, userRepo,
		calculator, cfg.Orders.TaxRate, cfg.Retry, logger,
	)
	commissionService := service.NewCommissionService(commissionRepo, orderRepo, productRepo, userRepo, logger)

	// Initialize HTTP handlers
	catalogHandler := handler.NewCatalogHandler(catalogService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	commissionHandler := handler.NewCommissionHandler(commissionService, logger)

	// Initialize router
	mux := router.New(catalogHandler, orderHandler, commissionHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
