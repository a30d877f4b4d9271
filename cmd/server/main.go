package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/walletledger/internal/adapter/http"
	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/walletledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletledger/internal/adapter/repository/redis"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/eventpublisher"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
	"github.com/iho/walletledger/internal/infrastructure/redis"
	"github.com/iho/walletledger/internal/usecase"
)

const rateLimitCleanupInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	jwtManager, err := newJWTManager(cfg)
	if err != nil {
		return err
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, appLogger); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New()

	router, workers := buildApp(cfg, appLogger, m, pool, redisClient, jwtManager)

	// Registered after the pool and client closers so it runs before them.
	stopWorkers := startWorkers(ctx, workers)
	defer stopWorkers()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Bool("auth", jwtManager != nil).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("server stopped")
	return nil
}

// startWorkers runs each worker in its own goroutine. The returned stop cancels
// them and blocks until all have returned; it is safe to call more than once.
func startWorkers(ctx context.Context, workers []func(context.Context)) (stop func()) {
	workerCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	for _, worker := range workers {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(workerCtx)
		}(worker)
	}

	return func() {
		cancel()
		wg.Wait()
	}
}

// buildApp wires repositories, use cases and handlers into a router and
// returns the background workers that must run alongside it.
func buildApp(
	cfg *config.Config,
	appLogger zerolog.Logger,
	m *metrics.Metrics,
	pool *pgxpool.Pool,
	redisClient goredis.UniversalClient,
	jwtManager *auth.JWTManager,
) (http.Handler, []func(context.Context)) {
	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool).WithLockTimeout(cfg.LockTimeout)
	retrier := postgresRepo.NewRetrier(appLogger, m).WithMaxRetries(cfg.MaxRetries)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	rechargeRepo := postgresRepo.NewRechargeRepository(pool)
	reportRepo := postgresRepo.NewReportRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, walletRepo, entryRepo, outboxRepo, auditRepo, idGen, m).
		WithRetrier(retrier).
		WithTransactionTimeout(cfg.TxTimeout)
	walletUC := usecase.NewWalletUseCase(ledgerUC, walletRepo)
	queryUC := usecase.NewQueryUseCase(entryRepo, walletRepo, reportRepo, auditRepo, cache, m, appLogger).
		WithStatsTTL(cfg.StatsCacheTTL)
	reversalUC := usecase.NewReversalUseCase(ledgerUC, entryRepo, outboxRepo, auditRepo, idGen, m)
	rechargeUC := usecase.NewRechargeUseCase(ledgerUC, rechargeRepo, outboxRepo, auditRepo, idGen, m).
		WithMaxPending(cfg.MaxPendingRecharges)
	reconciliationUC := usecase.NewReconciliationUseCase(walletRepo, entryRepo)
	userUC := usecase.NewUserUseCase(userRepo)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)

	outboxWorker := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  newPublisher(cfg, redisClient, appLogger),
		Logger:     appLogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:   handler.NewWalletHandler(walletUC, ledgerUC, queryUC),
		EntryHandler:    handler.NewEntryHandler(queryUC, reversalUC),
		RechargeHandler: handler.NewRechargeHandler(rechargeUC),
		LedgerHandler:   handler.NewLedgerHandler(reconciliationUC),
		UserHandler:     handler.NewUserHandler(userUC),
		HealthHandler: handler.NewHealthHandler(
			handler.HealthCheck{Name: "postgres", Ping: pool.Ping},
			handler.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}},
		),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Metrics:            m,
		JWTManager:         jwtManager,
		Logger:             appLogger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	workers := []func(context.Context){
		func(ctx context.Context) { _ = outboxWorker.Start(ctx) },
		func(ctx context.Context) { rateLimiter.StartCleanup(ctx, rateLimitCleanupInterval) },
	}

	return router, workers
}

// newJWTManager returns nil when authentication is disabled.
func newJWTManager(cfg *config.Config) (*auth.JWTManager, error) {
	if !cfg.AuthEnabled {
		return nil, nil
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("AUTH_ENABLED requires JWT_SECRET")
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration), nil
}

// newPublisher sends outbox events to the configured Redis channel, or to the log
// when no channel is set.
func newPublisher(cfg *config.Config, client goredis.UniversalClient, appLogger zerolog.Logger) eventpublisher.Publisher {
	if cfg.EventChannel == "" {
		return eventpublisher.NewLogPublisher(appLogger)
	}
	return eventpublisher.NewRedisPublisher(client, cfg.EventChannel)
}
