package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/walletledger/internal/usecase"
)

// DefaultLockTimeout bounds how long a statement waits for a row lock.
const DefaultLockTimeout = 2 * time.Second

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
// Every transaction sets a local lock_timeout so lock waits fail fast with 55P03.
type TxManager struct {
	pool        pgxPool
	lockTimeout time.Duration
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool, lockTimeout: DefaultLockTimeout}
}

// WithLockTimeout overrides the per-transaction lock timeout. Zero disables it.
func (m *TxManager) WithLockTimeout(d time.Duration) *TxManager {
	m.lockTimeout = d
	return m
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err, nil)
	}

	if m.lockTimeout > 0 {
		// SET does not take bind parameters
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, mapError(err, nil)
		}
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return mapError(t.tx.Commit(ctx), nil)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

func pgxTx(tx usecase.Transaction) pgx.Tx {
	return tx.(*Tx).PgxTx()
}
