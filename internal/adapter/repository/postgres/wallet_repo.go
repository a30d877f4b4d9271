package postgres

import (
	"context"
	"fmt"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{queries: generated.New(db)}
}

// CreateTx inserts the wallet. An existing wallet for the same user is left untouched.
func (r *WalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	err := generated.New(pgxTx(tx)).CreateWallet(ctx, generated.CreateWalletParams{
		ID:            wallet.ID,
		UserID:        wallet.UserID,
		Balance:       decimalToNumeric(wallet.Balance),
		LockedBalance: decimalToNumeric(wallet.LockedBalance),
		Version:       wallet.Version,
		CreatedAt:     timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(wallet.UpdatedAt),
	})
	return mapError(err, nil)
}

// GetByUserID retrieves the wallet of a user.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByUserID(ctx, userID)
	if err != nil {
		return nil, mapError(err, domain.ErrWalletNotFound)
	}
	return rowToWallet(row), nil
}

// GetByUserIDForUpdate retrieves the wallet and holds its row lock until tx ends.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, tx usecase.Transaction, userID string) (*domain.Wallet, error) {
	row, err := generated.New(pgxTx(tx)).GetWalletByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, mapError(err, domain.ErrWalletNotFound)
	}
	return rowToWallet(row), nil
}

// UpdateBalances persists balance, locked balance and version.
func (r *WalletRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	n, err := generated.New(pgxTx(tx)).UpdateWalletBalances(ctx, generated.UpdateWalletBalancesParams{
		ID:            wallet.ID,
		Balance:       decimalToNumeric(wallet.Balance),
		LockedBalance: decimalToNumeric(wallet.LockedBalance),
		Version:       wallet.Version,
		UpdatedAt:     timeToPgTimestamptz(wallet.UpdatedAt),
	})
	if err != nil {
		return mapError(err, nil)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrWalletNotFound, wallet.ID)
	}
	return nil
}

// List returns wallets ordered by id.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	rows, err := r.queries.ListWallets(ctx, generated.ListWalletsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}
	return wallets, nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:            row.ID,
		UserID:        row.UserID,
		Balance:       numericToDecimal(row.Balance),
		LockedBalance: numericToDecimal(row.LockedBalance),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
