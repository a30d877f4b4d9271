package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/walletledger/internal/domain"
)

const lockTimeoutStmt = "SET LOCAL lock_timeout = '2000ms'"

func TestTxManagerBeginSuccess(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec(lockTimeoutStmt).WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectCommit()

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx == nil {
		t.Fatalf("expected transaction")
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxManagerCustomLockTimeout(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("SET LOCAL lock_timeout = '150ms'").WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool).WithLockTimeout(150 * time.Millisecond)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = tx.Rollback(context.Background())

	assertExpectations(t, mockPool)
}

func TestTxManagerWithoutLockTimeout(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool).WithLockTimeout(0)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = tx.Rollback(context.Background())

	assertExpectations(t, mockPool)
}

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("begin failed")
	mockPool.ExpectBegin().WillReturnError(mockErr)

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err == nil || !errors.Is(err, mockErr) {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
}

func TestTxManagerLockTimeoutSetupFails(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("set failed")
	mockPool.ExpectBegin()
	mockPool.ExpectExec(lockTimeoutStmt).WillReturnError(mockErr)
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool)
	if _, err := manager.Begin(context.Background()); !errors.Is(err, mockErr) {
		t.Fatalf("expected setup error, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxCommitSerializationFailureIsBusy(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec(lockTimeoutStmt).WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectCommit().WillReturnError(&pgconn.PgError{Code: pgErrSerializationFailure})

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tx.Commit(context.Background()); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestTxRollback(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec(lockTimeoutStmt).WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectRollback()

	manager := newTxManagerWithPool(mockPool)
	tx, err := manager.Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// newRegexpPool matches SQL by regular expression for the larger repository queries.
func newRegexpPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// beginTx opens a transaction on pool without a lock timeout statement.
func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManagerWithPool(pool).WithLockTimeout(0).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx.(*Tx)
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
