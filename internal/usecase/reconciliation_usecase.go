package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// ReconciliationUseCase checks that wallets are a faithful view of their ledger.
type ReconciliationUseCase struct {
	walletRepo WalletRepository
	entryRepo  EntryRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(walletRepo WalletRepository, entryRepo EntryRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
	}
}

// ReconcileWallet walks the wallet's entries in posting order. It verifies the
// arithmetic of every entry, that each entry starts where the previous ended, and
// that the wallet equals the last snapshot.
func (uc *ReconciliationUseCase) ReconcileWallet(ctx context.Context, userID string) (*domain.ReconciliationResult, error) {
	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(ctx, err)
	}

	return uc.reconcile(ctx, wallet)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, wallet *domain.Wallet) (*domain.ReconciliationResult, error) {
	result := &domain.ReconciliationResult{
		WalletID:      wallet.ID,
		UserID:        wallet.UserID,
		Balance:       wallet.Balance,
		LockedBalance: wallet.LockedBalance,
		LedgerBalance: decimal.Zero,
		LedgerLocked:  decimal.Zero,
	}

	var prev *domain.Entry
	for offset := 0; ; offset += reconcileBatchSize {
		entries, err := uc.entryRepo.ListByWallet(ctx, wallet.ID, reconcileBatchSize, offset)
		if err != nil {
			return nil, storageError(ctx, err)
		}

		for _, e := range entries {
			if e.Status == domain.EntryStatusPending {
				continue
			}
			result.EntriesChecked++

			if err := e.Verify(); err != nil {
				result.Problems = append(result.Problems, err.Error())
			}

			if prev != nil {
				if !e.BalanceBefore.Equal(prev.BalanceAfter) || !e.LockedBefore.Equal(prev.LockedAfter) {
					result.Problems = append(result.Problems, fmt.Sprintf(
						"entry %s: starts at %s/%s but previous entry %s ended at %s/%s",
						e.ID, e.BalanceBefore, e.LockedBefore, prev.ID, prev.BalanceAfter, prev.LockedAfter))
				}
			} else if !e.BalanceBefore.IsZero() || !e.LockedBefore.IsZero() {
				result.Problems = append(result.Problems, fmt.Sprintf(
					"entry %s: first entry starts at %s/%s, want 0/0", e.ID, e.BalanceBefore, e.LockedBefore))
			}

			prev = e
			result.LedgerBalance = e.BalanceAfter
			result.LedgerLocked = e.LockedAfter
		}

		if len(entries) < reconcileBatchSize {
			break
		}
	}

	if !result.LedgerBalance.Equal(wallet.Balance) || !result.LedgerLocked.Equal(wallet.LockedBalance) {
		result.Problems = append(result.Problems, fmt.Sprintf(
			"wallet %s holds %s/%s but ledger ends at %s/%s",
			wallet.ID, wallet.Balance, wallet.LockedBalance, result.LedgerBalance, result.LedgerLocked))
	}

	result.Consistent = len(result.Problems) == 0
	return result, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	CheckedAt         time.Time
	Discrepancies     []*domain.ReconciliationResult
	TotalWallets      int
	ConsistentWallets int
	EntriesChecked    int
}

// Report reconciles every wallet.
func (uc *ReconciliationUseCase) Report(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*domain.ReconciliationResult, 0),
	}

	for offset := 0; ; offset += reconcileBatchSize {
		wallets, err := uc.walletRepo.List(ctx, reconcileBatchSize, offset)
		if err != nil {
			return nil, storageError(ctx, err)
		}

		for _, w := range wallets {
			result, err := uc.reconcile(ctx, w)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile wallet %s: %w", w.ID, err)
			}

			report.TotalWallets++
			report.EntriesChecked += result.EntriesChecked
			if result.Consistent {
				report.ConsistentWallets++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(wallets) < reconcileBatchSize {
			break
		}
	}

	report.CheckedAt = time.Now().UTC()
	return report, nil
}
