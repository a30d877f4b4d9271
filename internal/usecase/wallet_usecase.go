package usecase

import (
	"context"
	"errors"

	"github.com/iho/walletledger/internal/domain"
)

// WalletUseCase reads wallets. Balances only change through LedgerUseCase.
type WalletUseCase struct {
	ledger     *LedgerUseCase
	walletRepo WalletRepository
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(ledger *LedgerUseCase, walletRepo WalletRepository) *WalletUseCase {
	return &WalletUseCase{ledger: ledger, walletRepo: walletRepo}
}

// GetWallet returns the user's wallet, creating an empty one on first access.
func (uc *WalletUseCase) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, storageError(ctx, err)
	}

	err = uc.ledger.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		var err error
		wallet, err = uc.ledger.lockWallet(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// ListWallets pages through all wallets.
func (uc *WalletUseCase) ListWallets(ctx context.Context, page, pageSize int) ([]*domain.Wallet, error) {
	page, pageSize = domain.ValidatePagination(page, pageSize)

	wallets, err := uc.walletRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return wallets, nil
}
