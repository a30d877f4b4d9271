package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry.
type EntryType string

const (
	EntryTypeCredit EntryType = "CREDIT"
	EntryTypeDebit  EntryType = "DEBIT"
)

// ParseEntryType converts a string into an EntryType.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryType, s)
	}
	return t, nil
}

// IsValid reports whether t is a known entry type.
func (t EntryType) IsValid() bool {
	return t == EntryTypeCredit || t == EntryTypeDebit
}

// Inverse flips CREDIT and DEBIT.
func (t EntryType) Inverse() EntryType {
	if t == EntryTypeCredit {
		return EntryTypeDebit
	}
	return EntryTypeCredit
}

// TransactionType describes the business event behind an entry.
type TransactionType string

const (
	TransactionRechargeRequest    TransactionType = "RECHARGE_REQUEST"
	TransactionWithdrawalRequest  TransactionType = "WITHDRAWAL_REQUEST"
	TransactionReferralCommission TransactionType = "REFERRAL_COMMISSION"
	TransactionProductPurchase    TransactionType = "PRODUCT_PURCHASE"
	TransactionActivationPurchase TransactionType = "ACTIVATION_PURCHASE"
	TransactionAdminAdjustment    TransactionType = "ADMIN_ADJUSTMENT"
	TransactionReversal           TransactionType = "REVERSAL"
	TransactionOrderPayment       TransactionType = "ORDER_PAYMENT"
)

var validTransactionTypes = map[TransactionType]bool{
	TransactionRechargeRequest:    true,
	TransactionWithdrawalRequest:  true,
	TransactionReferralCommission: true,
	TransactionProductPurchase:    true,
	TransactionActivationPurchase: true,
	TransactionAdminAdjustment:    true,
	TransactionReversal:           true,
	TransactionOrderPayment:       true,
}

// ParseTransactionType converts a string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
	return t, nil
}

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return validTransactionTypes[t]
}

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	EntryStatusSuccess  EntryStatus = "SUCCESS"
	EntryStatusFailed   EntryStatus = "FAILED"
	EntryStatusReversed EntryStatus = "REVERSED"
	EntryStatusPending  EntryStatus = "PENDING"
)

// ParseEntryStatus converts a string into an EntryStatus.
func ParseEntryStatus(s string) (EntryStatus, error) {
	st := EntryStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case EntryStatusSuccess, EntryStatusFailed, EntryStatusReversed, EntryStatusPending:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Entry is an immutable record of one balance-affecting event.
type Entry struct {
	CreatedAt       time.Time
	Meta            map[string]any
	ReversalOf      *string
	ID              string
	WalletID        string
	UserID          string
	ReferenceTable  string
	ReferenceID     string
	Description     string
	EntryType       EntryType
	TransactionType TransactionType
	Status          EntryStatus
	Amount          decimal.Decimal
	BalanceBefore   decimal.Decimal
	BalanceAfter    decimal.Decimal
	LockedBefore    decimal.Decimal
	LockedAfter     decimal.Decimal
	WalletVersion   int64
	AffectsLocked   bool
}

// SignedAmount returns +amount for credits and -amount for debits.
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.EntryType == EntryTypeDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Verify checks the snapshot arithmetic of the entry.
// FAILED and PENDING entries never moved money, so before and after must match.
func (e *Entry) Verify() error {
	delta := e.SignedAmount()
	if e.Status == EntryStatusFailed || e.Status == EntryStatusPending {
		delta = decimal.Zero
	}

	balanceDelta, lockedDelta := delta, decimal.Zero
	if e.AffectsLocked {
		balanceDelta, lockedDelta = decimal.Zero, delta
	}

	if !e.BalanceBefore.Add(balanceDelta).Equal(e.BalanceAfter) {
		return fmt.Errorf("entry %s: balance %s %+v != %s", e.ID, e.BalanceBefore, balanceDelta, e.BalanceAfter)
	}
	if !e.LockedBefore.Add(lockedDelta).Equal(e.LockedAfter) {
		return fmt.Errorf("entry %s: locked %s %+v != %s", e.ID, e.LockedBefore, lockedDelta, e.LockedAfter)
	}
	return nil
}

// IsReversal reports whether the entry compensates another entry.
func (e *Entry) IsReversal() bool {
	return e.TransactionType == TransactionReversal && e.ReversalOf != nil
}
