package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"points-ledger/config"
	kafkaEvents "points-ledger/internal/adapter/events/kafka"
	httpHandler "points-ledger/internal/adapter/http/handler"
	memStorage "points-ledger/internal/adapter/storage/memory"
	pgStorage "points-ledger/internal/adapter/storage/postgres"
	redisStorage "points-ledger/internal/adapter/storage/redis"
	"points-ledger/internal/core/ports"
	"points-ledger/internal/service"
	"points-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("backend", cfg.Ledger.Backend).
		Int("port", cfg.Server.Port).
		Msg("Starting Points Ledger")

	ctx := context.Background()

	// Initialize the ledger backend
	var (
		accountRepo    ports.AccountRepository
		transferRepo   ports.TransferRepository
		transactor     ports.DBTransactor
		healthCheckers []ports.HealthChecker
	)
	switch cfg.Ledger.Backend {
	case "memory":
		store := memStorage.NewStore()
		accountRepo, transferRepo, transactor = store, store, store
		log.Warn().Msg("Memory backend selected; balances will not survive a restart")
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		accountRepo = pgStorage.NewAccountRepo(pool)
		transferRepo = pgStorage.NewTransferRepo(pool)
		transactor = pgStorage.NewTransactor(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	default:
		log.Fatal().Str("backend", cfg.Ledger.Backend).Msg("Unknown ledger backend")
	}

	// Initialize Redis (balance cache + rate limiting), when enabled
	var (
		balanceCache   ports.BalanceCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		balanceCache = redisStorage.NewBalanceCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	// Initialize event publishing, when brokers are configured
	var events ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := kafkaEvents.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		events = publisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka event publishing enabled")
	}

	// Initialize core services
	policy := service.NewTransferPolicy(accountRepo, cfg.Ledger.MinTransferAmount)
	ledgerSvc := service.NewLedgerService(accountRepo, transferRepo, policy, transactor, balanceCache, events, log)
	reportingSvc := service.NewReportingService(accountRepo, transferRepo, balanceCache, log)
	accountSvc := service.NewAccountService(accountRepo, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		ReportingSvc:   reportingSvc,
		AccountSvc:     accountSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
