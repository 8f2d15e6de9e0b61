package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creatorpay/internal/config"
	"creatorpay/internal/db"
	"creatorpay/internal/ledger"
	"creatorpay/internal/logger"
	"creatorpay/internal/payout"
	"creatorpay/internal/processor"
	"creatorpay/internal/referral"
	"creatorpay/internal/revenue"
	"creatorpay/internal/server"
)

func main() {
	logger.Init()
	defer logger.Sync()
	logger.Info("Starting creatorpay ledger service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	procClient := processor.NewHTTPClient(cfg.ProcessorBaseURL, cfg.ProcessorAPIKey, &http.Client{
		Timeout: cfg.ProcessorTimeout,
	})

	earningsCache := revenue.NewRedisCache(cfg.RedisAddr, cfg.EarningsCacheTTL)
	defer earningsCache.Close()

	aggregator := revenue.NewAggregator(revenue.DefaultAdapters(database), earningsCache, cfg.RevenueShareFactor())

	ledgerRepo := ledger.NewRepository(database)
	ledgerService := ledger.NewService(ledgerRepo, aggregator, procClient, cfg.ProcessorTimeout)

	payoutRepo := payout.NewRepository(database)
	payoutService := payout.NewService(payoutRepo, ledgerRepo, ledgerService, procClient, cfg.MinPayout, cfg.ProcessorTimeout)

	attributionSource := referral.NewHTTPSource(cfg.AttributionBaseURL, &http.Client{
		Timeout: cfg.ProcessorTimeout,
	})
	referralRepo := referral.NewRepository(database)
	referralService := referral.NewService(referralRepo, attributionSource, aggregator, cfg.ReferralCommissionFactor())
	aggregator.SetSyncer(referralService)

	referralScheduler, err := referral.NewScheduler(referralService, ledgerRepo, cfg.ReferralSyncInterval)
	if err != nil {
		logger.Fatalf("Failed to create referral sync scheduler: %v", err)
	}
	if err := referralScheduler.Start(); err != nil {
		logger.Fatalf("Failed to start referral sync scheduler: %v", err)
	}
	defer referralScheduler.Stop()

	srv := server.New(
		cfg,
		ledger.NewHandler(ledgerService),
		payout.NewHandler(payoutService),
		referral.NewHandler(referralService),
	)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
