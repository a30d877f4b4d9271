package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler    *handler.WalletHandler
	EntryHandler     *handler.EntryHandler
	RechargeHandler  *handler.RechargeHandler
	LedgerHandler    *handler.LedgerHandler
	UserHandler      *handler.UserHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	// JWTManager enables bearer authentication and role checks; nil disables both.
	JWTManager *auth.JWTManager
	Logger     zerolog.Logger
	// CORSAllowedOrigins enables CORS for the listed origins when non-empty.
	CORSAllowedOrigins []string
	IdempotencyTTL     time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{"X-Request-ID", "Retry-After", middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	requireRole := func(role domain.Role) func(http.Handler) http.Handler {
		if cfg.JWTManager == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RequireRole(role)
	}
	operator := requireRole(domain.RoleOperator)
	admin := requireRole(domain.RoleAdmin)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Wallets
		r.Route("/wallets", func(r chi.Router) {
			r.With(admin).Get("/", cfg.WalletHandler.List)
			r.Get("/{userID}", cfg.WalletHandler.Get)
			r.Get("/{userID}/balance/history", cfg.WalletHandler.BalanceHistory)

			r.Group(func(r chi.Router) {
				r.Use(operator)
				r.Post("/{userID}/entries", cfg.WalletHandler.PostEntry)
				r.Post("/{userID}/lock", cfg.WalletHandler.Lock)
				r.Post("/{userID}/unlock", cfg.WalletHandler.Unlock)
				r.Post("/{userID}/settle", cfg.WalletHandler.Settle)
			})
		})

		// Entries
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.With(admin).Post("/{id}/reverse", cfg.EntryHandler.Reverse)
			r.With(admin).Get("/{id}/audit", cfg.EntryHandler.Audit)
		})

		// Recharges
		r.Route("/recharges", func(r chi.Router) {
			r.Post("/", cfg.RechargeHandler.Submit)
			r.Get("/", cfg.RechargeHandler.List)
			r.Get("/{id}", cfg.RechargeHandler.Get)
			r.With(admin).Post("/{id}/approve", cfg.RechargeHandler.Approve)
			r.With(admin).Post("/{id}/reject", cfg.RechargeHandler.Reject)
		})

		// Users
		r.Route("/users", func(r chi.Router) {
			r.With(operator).Put("/{id}", cfg.UserHandler.Sync)
			r.Get("/{id}", cfg.UserHandler.Get)
		})

		// Reporting and reconciliation
		r.With(operator).Get("/reports/stats", cfg.EntryHandler.Stats)
		r.With(admin).Get("/audit-logs", cfg.EntryHandler.AuditLogs)
		r.With(admin).Get("/ledger/reconciliation", cfg.LedgerHandler.Reconcile)
		r.With(admin).Get("/ledger/reconciliation/{userID}", cfg.LedgerHandler.ReconcileWallet)
	})

	return r
}
