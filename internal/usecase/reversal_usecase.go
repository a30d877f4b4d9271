package usecase

import (
	"context"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// ReversalUseCase undoes a prior entry by posting its exact inverse.
type ReversalUseCase struct {
	ledger     *LedgerUseCase
	entryRepo  EntryRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewReversalUseCase creates a new ReversalUseCase.
func NewReversalUseCase(
	ledger *LedgerUseCase,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ReversalUseCase {
	return &ReversalUseCase{
		ledger:     ledger,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// Reverse posts the compensating entry for entryID and marks the original REVERSED.
// Checks run in order: not found, already reversed, not reversible, insufficient funds.
func (uc *ReversalUseCase) Reverse(ctx context.Context, entryID, reason string) (*domain.Entry, error) {
	if err := domain.ValidateDescription(reason); err != nil {
		return nil, err
	}

	var reversal *domain.Entry
	err := uc.ledger.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		original, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}

		reversed, err := uc.entryRepo.HasReversal(ctx, tx, original.ID)
		if err != nil {
			return err
		}
		if reversed || original.Status == domain.EntryStatusReversed {
			return domain.ErrAlreadyReversed
		}
		if original.Status != domain.EntryStatusSuccess {
			return domain.ErrNotReversible
		}

		description := reason
		if description == "" {
			description = "Reversal of " + original.ID
		}

		originalID := original.ID
		reversal, err = uc.ledger.PostTx(ctx, tx, PostInput{
			UserID:          original.UserID,
			EntryType:       original.EntryType.Inverse(),
			TransactionType: domain.TransactionReversal,
			Amount:          original.Amount,
			AffectsLocked:   original.AffectsLocked,
			ReferenceTable:  original.ReferenceTable,
			ReferenceID:     original.ReferenceID,
			Description:     description,
			Meta:            map[string]any{"reversed_transaction_type": string(original.TransactionType)},
			reversalOf:      &originalID,
		})
		if err != nil {
			return err
		}

		if err := uc.entryRepo.UpdateStatus(ctx, tx, original.ID, domain.EntryStatusReversed); err != nil {
			return err
		}
		before := *original
		original.Status = domain.EntryStatusReversed

		if err := emitEvent(ctx, tx, uc.outboxRepo, uc.idGen, original.ID, domain.AggregateTypeEntry,
			domain.EventTypeEntryReversed, domain.EntryReversedEvent{
				ReversalEntryID: reversal.ID,
				OriginalEntryID: original.ID,
				UserID:          original.UserID,
				Amount:          original.Amount.String(),
				Reason:          reason,
			}); err != nil {
			return err
		}

		return writeAudit(ctx, tx, uc.auditRepo, uc.idGen, uc.metrics,
			domain.AuditActionEntryReverse, domain.AggregateTypeEntry, original.ID, before, original)
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.ReversalErrors.WithLabelValues(errorType(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesReversed.Inc()
	}

	return reversal, nil
}
