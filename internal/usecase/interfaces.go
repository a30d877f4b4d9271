package usecase

import (
	"context"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	// CreateTx inserts the wallet unless one already exists for its user.
	CreateTx(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx Transaction, userID string) (*domain.Wallet, error)
	UpdateBalances(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	// HasReversal reports whether a non-FAILED reversal references originalID.
	HasReversal(ctx context.Context, tx Transaction, originalID string) (bool, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.EntryStatus) error
	// ListByWallet returns entries in posting order.
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Entry, error)
	// GetLatestAt returns the last non-PENDING entry created at or before at.
	GetLatestAt(ctx context.Context, walletID string, at time.Time) (*domain.Entry, error)
}

// RechargeRepository defines data access for recharge requests.
type RechargeRepository interface {
	Create(ctx context.Context, tx Transaction, req *domain.RechargeRequest) error
	GetByID(ctx context.Context, id string) (*domain.RechargeRequest, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.RechargeRequest, error)
	CountPending(ctx context.Context, tx Transaction, userID string) (int, error)
	UpdateReview(ctx context.Context, tx Transaction, req *domain.RechargeRequest) error
	List(ctx context.Context, filter domain.RechargeFilter) ([]*domain.RechargeRequest, int64, error)
}

// ReportRepository defines read-only ledger reporting queries.
type ReportRepository interface {
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.EntryView, int64, error)
	Stats(ctx context.Context, filter domain.EntryFilter) ([]domain.StatsRow, error)
}

// UserRepository maintains the user profile read model.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed on transient lock contention.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}
