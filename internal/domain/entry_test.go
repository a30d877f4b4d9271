package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseEnums(t *testing.T) {
	if et, err := ParseEntryType(" credit "); err != nil || et != EntryTypeCredit {
		t.Fatalf("expected CREDIT, got %q (%v)", et, err)
	}
	if _, err := ParseEntryType("transfer"); !errors.Is(err, ErrInvalidEntryType) {
		t.Fatalf("expected ErrInvalidEntryType, got %v", err)
	}

	if tt, err := ParseTransactionType("order_payment"); err != nil || tt != TransactionOrderPayment {
		t.Fatalf("expected ORDER_PAYMENT, got %q (%v)", tt, err)
	}
	if _, err := ParseTransactionType("GIFT"); !errors.Is(err, ErrInvalidTransactionType) {
		t.Fatalf("expected ErrInvalidTransactionType, got %v", err)
	}

	if st, err := ParseEntryStatus("reversed"); err != nil || st != EntryStatusReversed {
		t.Fatalf("expected REVERSED, got %q (%v)", st, err)
	}
	if _, err := ParseEntryStatus("DONE"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestEntryType_Inverse(t *testing.T) {
	if EntryTypeCredit.Inverse() != EntryTypeDebit {
		t.Error("inverse of CREDIT should be DEBIT")
	}
	if EntryTypeDebit.Inverse() != EntryTypeCredit {
		t.Error("inverse of DEBIT should be CREDIT")
	}
}

func TestEntry_Verify(t *testing.T) {
	d := decimal.NewFromInt

	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{
			name: "credit available",
			entry: Entry{
				EntryType: EntryTypeCredit, Status: EntryStatusSuccess, Amount: d(100),
				BalanceBefore: d(0), BalanceAfter: d(100),
			},
		},
		{
			name: "debit locked",
			entry: Entry{
				EntryType: EntryTypeDebit, Status: EntryStatusSuccess, Amount: d(40), AffectsLocked: true,
				BalanceBefore: d(10), BalanceAfter: d(10), LockedBefore: d(50), LockedAfter: d(10),
			},
		},
		{
			name: "failed entry keeps snapshots",
			entry: Entry{
				EntryType: EntryTypeDebit, Status: EntryStatusFailed, Amount: d(400),
				BalanceBefore: d(100), BalanceAfter: d(100),
			},
		},
		{
			name: "reversed entry still verifies",
			entry: Entry{
				EntryType: EntryTypeDebit, Status: EntryStatusReversed, Amount: d(5),
				BalanceBefore: d(5), BalanceAfter: d(0),
			},
		},
		{
			name: "broken arithmetic",
			entry: Entry{
				EntryType: EntryTypeCredit, Status: EntryStatusSuccess, Amount: d(100),
				BalanceBefore: d(0), BalanceAfter: d(90),
			},
			wantErr: true,
		},
		{
			name: "locked entry touching available",
			entry: Entry{
				EntryType: EntryTypeCredit, Status: EntryStatusSuccess, Amount: d(10), AffectsLocked: true,
				BalanceBefore: d(0), BalanceAfter: d(10), LockedBefore: d(0), LockedAfter: d(10),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Verify()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEntry_IsReversal(t *testing.T) {
	orig := "01H"
	e := Entry{TransactionType: TransactionReversal, ReversalOf: &orig}
	if !e.IsReversal() {
		t.Error("expected reversal")
	}
	if (&Entry{TransactionType: TransactionAdminAdjustment}).IsReversal() {
		t.Error("adjustment is not a reversal")
	}
}
