package domain

import "errors"

var (
	// Amount and input errors
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidEntryType       = errors.New("invalid entry type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrReversalViaPost        = errors.New("reversal entries can only be created by reversing an entry")

	// Balance errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrUserNotFound      = errors.New("user not found")

	// Entry errors
	ErrEntryNotFound   = errors.New("ledger entry not found")
	ErrAlreadyReversed = errors.New("ledger entry has already been reversed")
	ErrNotReversible   = errors.New("ledger entry is not reversible")

	// Recharge errors
	ErrTooManyPendingRequests = errors.New("too many pending recharge requests")
	ErrRechargeNotFound       = errors.New("recharge request not found")
	ErrRechargeNotPending     = errors.New("recharge request is not pending")
	ErrDuplicateRecharge      = errors.New("recharge request with this payment reference already exists")

	// Infrastructure errors
	ErrBusy           = errors.New("wallet is busy, try again later")
	ErrTimeout        = errors.New("operation timed out")
	ErrStorageFailure = errors.New("storage failure")
	ErrDuplicate      = errors.New("duplicate record")
)

var knownErrors = []error{
	ErrInvalidInput, ErrInvalidAmount, ErrInvalidEntryType, ErrInvalidTransactionType,
	ErrInvalidStatus, ErrReversalViaPost, ErrInsufficientFunds, ErrWalletNotFound,
	ErrEntryNotFound, ErrAlreadyReversed, ErrNotReversible, ErrTooManyPendingRequests,
	ErrRechargeNotFound, ErrRechargeNotPending, ErrDuplicateRecharge, ErrBusy, ErrTimeout,
	ErrStorageFailure, ErrDuplicate, ErrAmountTooLarge, ErrAmountTooSmall,
	ErrMetadataTooLarge, ErrInvalidReference, ErrUserNotFound,
}

// IsDomainError reports whether err wraps one of the ledger's sentinel errors.
func IsDomainError(err error) bool {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
