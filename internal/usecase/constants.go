package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking wallet rows
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultMaxPendingRecharges is the number of PENDING recharge requests a user may hold
	DefaultMaxPendingRecharges = 5

	// DefaultStatsCacheTTL is how long aggregate stats are served from cache
	DefaultStatsCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// reconcileBatchSize is the page size used when walking wallets and entries
	reconcileBatchSize = 500
)
