package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/walletledger/internal/domain"
)

// PostgreSQL error codes the ledger reacts to.
const (
	pgErrUniqueViolation      = "23505"
	pgErrLockNotAvailable     = "55P03"
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrQueryCanceled        = "57014"
)

const (
	constraintSingleReversal   = "idx_ledger_entries_single_reversal"
	constraintPaymentReference = "idx_recharge_requests_payment_reference"
)

// mapError translates driver errors into domain errors. notFound is returned for pgx.ErrNoRows.
// The original error stays in the chain so callers can still inspect the SQLSTATE.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintSingleReversal:
			return fmt.Errorf("%w: %w", domain.ErrAlreadyReversed, err)
		case constraintPaymentReference:
			return fmt.Errorf("%w: %w", domain.ErrDuplicateRecharge, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrDuplicate, err)
	case pgErrLockNotAvailable, pgErrDeadlock, pgErrSerializationFailure:
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	case pgErrQueryCanceled:
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}

	return err
}
