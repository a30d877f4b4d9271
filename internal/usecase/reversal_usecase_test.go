package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func TestReversalUseCase_ReverseDebit(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "u1", 100)
	ctx := context.Background()

	purchase, err := h.ledger.Post(ctx, debit("u1", domain.TransactionProductPurchase, 40))
	require.NoError(t, err)

	rev, err := h.reversal.Reverse(ctx, purchase.ID, "refund")
	require.NoError(t, err)

	assert.Equal(t, domain.EntryTypeCredit, rev.EntryType)
	assert.Equal(t, "refund", rev.Description)
	assert.Equal(t, string(domain.TransactionProductPurchase), rev.Meta["reversed_transaction_type"])
	assertBalance(t, h, "u1", 100)

	events := h.store.OutboxEvents()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, domain.EventTypeEntryReversed, last.EventType)
	assert.Equal(t, purchase.ID, last.AggregateID)

	logs := h.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, string(domain.AuditActionEntryReverse), logs[0].Action)
}

func TestReversalUseCase_DefaultDescription(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "u1", 100)

	rev, err := h.reversal.Reverse(context.Background(), "seed-u1", "")
	require.NoError(t, err)
	assert.Equal(t, "Reversal of seed-u1", rev.Description)
	assertBalance(t, h, "u1", 0)
}

func TestReversalUseCase_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, h *harness) string
		wantErr error
	}{
		{
			name:    "unknown entry",
			prepare: func(t *testing.T, h *harness) string { return "missing" },
			wantErr: domain.ErrEntryNotFound,
		},
		{
			name: "already reversed",
			prepare: func(t *testing.T, h *harness) string {
				e, err := h.ledger.Post(context.Background(), credit("u1", domain.TransactionReferralCommission, 10))
				require.NoError(t, err)
				_, err = h.reversal.Reverse(context.Background(), e.ID, "")
				require.NoError(t, err)
				return e.ID
			},
			wantErr: domain.ErrAlreadyReversed,
		},
		{
			name: "failed entry",
			prepare: func(t *testing.T, h *harness) string {
				_, err := h.ledger.Post(context.Background(), debit("u1", domain.TransactionProductPurchase, 1000))
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
				entries := h.store.Entries("w-u1")
				return entries[len(entries)-1].ID
			},
			wantErr: domain.ErrNotReversible,
		},
		{
			name: "credit already spent",
			prepare: func(t *testing.T, h *harness) string {
				e, err := h.ledger.Post(context.Background(), credit("u1", domain.TransactionReferralCommission, 50))
				require.NoError(t, err)
				_, err = h.ledger.Post(context.Background(), debit("u1", domain.TransactionProductPurchase, 140))
				require.NoError(t, err)
				return e.ID
			},
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, "u1", 100)

			id := tt.prepare(t, h)
			before, _ := h.balance(t, "u1")

			rev, err := h.reversal.Reverse(context.Background(), id, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if rev != nil {
				t.Fatalf("expected no reversal entry")
			}

			after, _ := h.balance(t, "u1")
			if !before.Equal(after) {
				t.Fatalf("balance moved from %s to %s", before, after)
			}
		})
	}
}

func TestReversalUseCase_FailedReversalCanBeRetried(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "u1", 100)
	ctx := context.Background()

	e, err := h.ledger.Post(ctx, credit("u1", domain.TransactionReferralCommission, 50))
	require.NoError(t, err)
	spend, err := h.ledger.Post(ctx, debit("u1", domain.TransactionProductPurchase, 140))
	require.NoError(t, err)

	_, err = h.reversal.Reverse(ctx, e.ID, "")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, domain.EntryStatusSuccess, h.store.Entry(e.ID).Status)

	// refund the purchase, then the commission reversal fits
	_, err = h.reversal.Reverse(ctx, spend.ID, "")
	require.NoError(t, err)

	_, err = h.reversal.Reverse(ctx, e.ID, "")
	require.NoError(t, err)
	assertBalance(t, h, "u1", 100)
}

func TestReversalUseCase_ReversalOfReversal(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "u1", 100)
	ctx := context.Background()

	e, err := h.ledger.Post(ctx, credit("u1", domain.TransactionReferralCommission, 30))
	require.NoError(t, err)

	rev, err := h.reversal.Reverse(ctx, e.ID, "")
	require.NoError(t, err)
	assertBalance(t, h, "u1", 100)

	again, err := h.reversal.Reverse(ctx, rev.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryTypeCredit, again.EntryType)
	assertBalance(t, h, "u1", 130)

	_, err = h.reversal.Reverse(ctx, rev.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)
}

func TestReversalUseCase_LockedEntry(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "u1", 100)
	ctx := context.Background()

	entries, err := h.ledger.Lock(ctx, usecase.LockInput{UserID: "u1", Amount: decimalOf(60)})
	require.NoError(t, err)

	_, err = h.reversal.Reverse(ctx, entries[1].ID, "")
	require.NoError(t, err)

	balance, locked := h.balance(t, "u1")
	assert.True(t, balance.Equal(decimalOf(40)), "balance %s", balance)
	assert.True(t, locked.IsZero(), "locked %s", locked)
}

func TestReversalUseCase_ConcurrentReversalsSucceedOnce(t *testing.T) {
	const workers = 20

	h := newHarness(t)
	h.seed(t, "u1", 100)
	ctx := context.Background()

	e, err := h.ledger.Post(ctx, credit("u1", domain.TransactionReferralCommission, 25))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.reversal.Reverse(ctx, e.ID, "")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if !errors.Is(err, domain.ErrAlreadyReversed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assertBalance(t, h, "u1", 100)

	result, err := h.recon.ReconcileWallet(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, result.Consistent, "problems: %v", result.Problems)
}
