package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/walletledger/internal/domain"
)

type noopRetrier struct{}

func (noopRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

// txRunner executes units of work in a bounded, retried transaction.
type txRunner struct {
	txManager TransactionManager
	retrier   Retrier
	timeout   time.Duration
}

func newTxRunner(txManager TransactionManager) txRunner {
	return txRunner{
		txManager: txManager,
		retrier:   noopRetrier{},
		timeout:   DefaultTransactionTimeout,
	}
}

type commitHooksKey struct{}

type commitHooks struct {
	fns []func()
}

// afterCommit defers fn until the transaction carried by ctx commits.
// Hooks of an attempt that rolls back are dropped. Outside run, fn is called at once.
func afterCommit(ctx context.Context, fn func()) {
	if hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok {
		hooks.fns = append(hooks.fns, fn)
		return
	}
	fn()
}

// run executes fn in a fresh transaction per attempt.
// ErrInsufficientFunds still commits so the FAILED entry written by fn is kept.
func (r txRunner) run(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return r.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		hooks := &commitHooks{}
		txCtx = context.WithValue(txCtx, commitHooksKey{}, hooks)

		tx, err := r.txManager.Begin(txCtx)
		if err != nil {
			return storageError(txCtx, err)
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		fnErr := fn(txCtx, tx)
		if fnErr != nil && !errors.Is(fnErr, domain.ErrInsufficientFunds) {
			return storageError(txCtx, fnErr)
		}

		if err := tx.Commit(txCtx); err != nil {
			return storageError(txCtx, err)
		}

		for _, hook := range hooks.fns {
			hook()
		}

		return fnErr
	})
}

// storageError leaves domain errors untouched and classifies everything else.
func storageError(ctx context.Context, err error) error {
	if err == nil || domain.IsDomainError(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
}

// errorType labels errors for metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrStorageFailure):
		return "storage"
	case errors.Is(err, domain.ErrAlreadyReversed):
		return "already_reversed"
	case errors.Is(err, domain.ErrNotReversible):
		return "not_reversible"
	case errors.Is(err, domain.ErrEntryNotFound):
		return "not_found"
	default:
		return "validation"
	}
}
