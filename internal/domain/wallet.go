package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the materialized balance of a single user.
// Balance is the spendable amount, LockedBalance is reserved for pending withdrawals.
type Wallet struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	UserID        string
	Balance       decimal.Decimal
	LockedBalance decimal.Decimal
	Version       int64
}

// Snapshot captures the wallet balances around a single entry.
type Snapshot struct {
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	LockedBefore  decimal.Decimal
	LockedAfter   decimal.Decimal
}

// Total returns available plus locked funds.
func (w *Wallet) Total() decimal.Decimal {
	return w.Balance.Add(w.LockedBalance)
}

// Preview computes the snapshot of applying amount without touching the wallet.
// On ErrInsufficientFunds the returned snapshot has after == before.
func (w *Wallet) Preview(entryType EntryType, amount decimal.Decimal, affectsLocked bool) (Snapshot, error) {
	snap := Snapshot{
		BalanceBefore: w.Balance,
		BalanceAfter:  w.Balance,
		LockedBefore:  w.LockedBalance,
		LockedAfter:   w.LockedBalance,
	}

	if !entryType.IsValid() {
		return snap, ErrInvalidEntryType
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return snap, ErrInvalidAmount
	}

	delta := amount
	if entryType == EntryTypeDebit {
		delta = amount.Neg()
	}

	if affectsLocked {
		next := w.LockedBalance.Add(delta)
		if next.IsNegative() {
			return snap, ErrInsufficientFunds
		}
		snap.LockedAfter = next
		return snap, nil
	}

	next := w.Balance.Add(delta)
	if next.IsNegative() {
		return snap, ErrInsufficientFunds
	}
	snap.BalanceAfter = next
	return snap, nil
}

// Apply moves the wallet to the snapshot computed by Preview and bumps its version.
// The wallet is left unchanged when an error is returned.
func (w *Wallet) Apply(entryType EntryType, amount decimal.Decimal, affectsLocked bool) (Snapshot, error) {
	snap, err := w.Preview(entryType, amount, affectsLocked)
	if err != nil {
		return snap, err
	}

	w.Balance = snap.BalanceAfter
	w.LockedBalance = snap.LockedAfter
	w.Version++
	return snap, nil
}
