package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func TestReconciliationUseCase_ConsistentLedger(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "u1", 500)
	ctx := context.Background()

	_, err := h.ledger.Post(ctx, debit("u1", domain.TransactionProductPurchase, 120))
	require.NoError(t, err)
	_, err = h.ledger.Lock(ctx, usecase.LockInput{UserID: "u1", Amount: decimal.NewFromInt(80)})
	require.NoError(t, err)
	_, err = h.ledger.Post(ctx, debit("u1", domain.TransactionProductPurchase, 9999))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	result, err := h.recon.ReconcileWallet(ctx, "u1")
	require.NoError(t, err)

	assert.True(t, result.Consistent, "problems: %v", result.Problems)
	assert.Equal(t, 5, result.EntriesChecked)
	assert.True(t, result.LedgerBalance.Equal(decimal.NewFromInt(300)))
	assert.True(t, result.LedgerLocked.Equal(decimal.NewFromInt(80)))
}

func TestReconciliationUseCase_DetectsDrift(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{
			name: "wallet differs from last snapshot",
			setup: func(h *harness) {
				h.store.SeedWallet(&domain.Wallet{ID: "w-u1", UserID: "u1", Balance: decimal.NewFromInt(101)})
			},
		},
		{
			name: "broken arithmetic",
			setup: func(h *harness) {
				h.store.SeedEntry(&domain.Entry{
					ID:              "bad",
					WalletID:        "w-u1",
					UserID:          "u1",
					EntryType:       domain.EntryTypeCredit,
					TransactionType: domain.TransactionOrderPayment,
					Status:          domain.EntryStatusSuccess,
					Amount:          decimal.NewFromInt(10),
					BalanceBefore:   decimal.NewFromInt(100),
					BalanceAfter:    decimal.NewFromInt(100),
				})
			},
		},
		{
			name: "gap in chain",
			setup: func(h *harness) {
				h.store.SeedEntry(&domain.Entry{
					ID:              "gap",
					WalletID:        "w-u1",
					UserID:          "u1",
					EntryType:       domain.EntryTypeCredit,
					TransactionType: domain.TransactionOrderPayment,
					Status:          domain.EntryStatusSuccess,
					Amount:          decimal.NewFromInt(10),
					BalanceBefore:   decimal.NewFromInt(90),
					BalanceAfter:    decimal.NewFromInt(100),
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, "u1", 100)
			tt.setup(h)

			result, err := h.recon.ReconcileWallet(context.Background(), "u1")
			require.NoError(t, err)
			assert.False(t, result.Consistent)
			assert.NotEmpty(t, result.Problems)
		})
	}
}

func TestReconciliationUseCase_Report(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "u1", 100)
	h.seed(t, "u2", 0)
	h.seed(t, "u3", 40)
	h.store.SeedWallet(&domain.Wallet{ID: "w-u3", UserID: "u3", Balance: decimal.NewFromInt(41)})

	report, err := h.recon.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalWallets)
	assert.Equal(t, 2, report.ConsistentWallets)
	assert.Equal(t, 2, report.EntriesChecked)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "u3", report.Discrepancies[0].UserID)
	assert.False(t, report.CheckedAt.IsZero())
}

func TestReconciliationUseCase_UnknownWallet(t *testing.T) {
	h := newHarness(t)
	_, err := h.recon.ReconcileWallet(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}
