package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create appends an entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	meta, err := marshalJSON(entry.Meta)
	if err != nil {
		return fmt.Errorf("%w: meta: %w", domain.ErrInvalidInput, err)
	}

	err = generated.New(pgxTx(tx)).CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
		ID:              entry.ID,
		WalletID:        entry.WalletID,
		UserID:          entry.UserID,
		EntryType:       string(entry.EntryType),
		TransactionType: string(entry.TransactionType),
		Status:          string(entry.Status),
		Amount:          decimalToNumeric(entry.Amount),
		BalanceBefore:   decimalToNumeric(entry.BalanceBefore),
		BalanceAfter:    decimalToNumeric(entry.BalanceAfter),
		LockedBefore:    decimalToNumeric(entry.LockedBefore),
		LockedAfter:     decimalToNumeric(entry.LockedAfter),
		AffectsLocked:   entry.AffectsLocked,
		ReferenceTable:  entry.ReferenceTable,
		ReferenceID:     entry.ReferenceID,
		ReversalOf:      optionalText(entry.ReversalOf),
		Description:     entry.Description,
		Meta:            meta,
		WalletVersion:   entry.WalletVersion,
		CreatedAt:       timeToPgTimestamptz(entry.CreatedAt),
	})
	return mapError(err, nil)
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetLedgerEntryByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrEntryNotFound)
	}
	return rowToEntry(row), nil
}

// GetByIDForUpdate retrieves an entry and locks its row.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	row, err := generated.New(pgxTx(tx)).GetLedgerEntryByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrEntryNotFound)
	}
	return rowToEntry(row), nil
}

// HasReversal reports whether a non-FAILED reversal points at originalID.
func (r *EntryRepository) HasReversal(ctx context.Context, tx usecase.Transaction, originalID string) (bool, error) {
	ok, err := generated.New(pgxTx(tx)).HasActiveReversal(ctx, pgtype.Text{String: originalID, Valid: true})
	if err != nil {
		return false, mapError(err, nil)
	}
	return ok, nil
}

// UpdateStatus changes the status of an entry. It is the only mutation entries allow.
func (r *EntryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus) error {
	n, err := generated.New(pgxTx(tx)).UpdateLedgerEntryStatus(ctx, generated.UpdateLedgerEntryStatusParams{
		ID:     id,
		Status: string(status),
	})
	if err != nil {
		return mapError(err, nil)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
	}
	return nil
}

// ListByWallet returns entries of a wallet in posting order.
func (r *EntryRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListLedgerEntriesByWallet(ctx, generated.ListLedgerEntriesByWalletParams{
		WalletID: walletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries, nil
}

// GetLatestAt returns the last settled entry at or before at.
func (r *EntryRepository) GetLatestAt(ctx context.Context, walletID string, at time.Time) (*domain.Entry, error) {
	row, err := r.queries.GetLatestLedgerEntryAt(ctx, generated.GetLatestLedgerEntryAtParams{
		WalletID:  walletID,
		CreatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return nil, mapError(err, domain.ErrEntryNotFound)
	}
	return rowToEntry(row), nil
}

func rowToEntry(row generated.LedgerEntry) *domain.Entry {
	return &domain.Entry{
		ID:              row.ID,
		WalletID:        row.WalletID,
		UserID:          row.UserID,
		EntryType:       domain.EntryType(row.EntryType),
		TransactionType: domain.TransactionType(row.TransactionType),
		Status:          domain.EntryStatus(row.Status),
		Amount:          numericToDecimal(row.Amount),
		BalanceBefore:   numericToDecimal(row.BalanceBefore),
		BalanceAfter:    numericToDecimal(row.BalanceAfter),
		LockedBefore:    numericToDecimal(row.LockedBefore),
		LockedAfter:     numericToDecimal(row.LockedAfter),
		AffectsLocked:   row.AffectsLocked,
		ReferenceTable:  row.ReferenceTable,
		ReferenceID:     row.ReferenceID,
		ReversalOf:      textPtr(row.ReversalOf),
		Description:     row.Description,
		Meta:            unmarshalJSON(row.Meta),
		WalletVersion:   row.WalletVersion,
		CreatedAt:       row.CreatedAt.Time,
	}
}
