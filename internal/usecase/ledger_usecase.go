package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the only writer of wallet balances. Every balance change goes
// through it as an appended entry plus a wallet update in one transaction.
type LedgerUseCase struct {
	tx         txRunner
	walletRepo WalletRepository
	entryRepo  EntryRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		tx:         newTxRunner(txManager),
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// WithRetrier sets the retrier used for lock contention.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	if r != nil {
		uc.tx.retrier = r
	}
	return uc
}

// WithTransactionTimeout bounds each transaction attempt.
func (uc *LedgerUseCase) WithTransactionTimeout(d time.Duration) *LedgerUseCase {
	if d > 0 {
		uc.tx.timeout = d
	}
	return uc
}

// PostInput describes a single balance-affecting event.
type PostInput struct {
	Meta            map[string]any
	UserID          string
	ReferenceTable  string
	ReferenceID     string
	Description     string
	EntryType       domain.EntryType
	TransactionType domain.TransactionType
	Amount          decimal.Decimal
	AffectsLocked   bool

	// set only by the reversal engine
	reversalOf *string
}

// Validate checks the input without touching storage.
func (in PostInput) Validate() error {
	if in.UserID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if !in.EntryType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEntryType, in.EntryType)
	}
	if !in.TransactionType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTransactionType, in.TransactionType)
	}
	if in.TransactionType == domain.TransactionReversal && in.reversalOf == nil {
		return domain.ErrReversalViaPost
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if err := domain.ValidateReference(in.ReferenceTable, in.ReferenceID); err != nil {
		return err
	}
	if err := domain.ValidateDescription(in.Description); err != nil {
		return err
	}
	return domain.ValidateMetadata(in.Meta)
}

// Post appends one entry and updates the wallet atomically.
// A debit that would overdraw records a FAILED entry and returns ErrInsufficientFunds.
func (uc *LedgerUseCase) Post(ctx context.Context, input PostInput) (*domain.Entry, error) {
	if input.TransactionType == domain.TransactionReversal {
		return nil, domain.ErrReversalViaPost
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var entry *domain.Entry
	err := uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		var err error
		entry, err = uc.PostTx(ctx, tx, input)
		if err != nil {
			return err
		}

		if input.TransactionType == domain.TransactionAdminAdjustment {
			return uc.audit(ctx, tx, domain.AuditActionEntryPost, domain.AggregateTypeEntry, entry.ID, nil, entry)
		}
		return nil
	})

	uc.observe(start, input, err)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// PostTx posts inside a transaction owned by the caller.
// On ErrInsufficientFunds the FAILED entry is returned together with the error.
func (uc *LedgerUseCase) PostTx(ctx context.Context, tx Transaction, input PostInput) (*domain.Entry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	wallet, err := uc.lockWallet(ctx, tx, input.UserID)
	if err != nil {
		return nil, err
	}

	return uc.postLocked(ctx, tx, wallet, input)
}

// LockInput moves funds between available and locked balances.
type LockInput struct {
	UserID          string
	ReferenceTable  string
	ReferenceID     string
	Description     string
	TransactionType domain.TransactionType
	Amount          decimal.Decimal
}

func (in LockInput) post(entryType domain.EntryType, affectsLocked bool) PostInput {
	tt := in.TransactionType
	if tt == "" {
		tt = domain.TransactionWithdrawalRequest
	}

	return PostInput{
		UserID:          in.UserID,
		EntryType:       entryType,
		TransactionType: tt,
		Amount:          in.Amount,
		ReferenceTable:  in.ReferenceTable,
		ReferenceID:     in.ReferenceID,
		Description:     in.Description,
		AffectsLocked:   affectsLocked,
	}
}

// Lock reserves available funds: DEBIT available then CREDIT locked.
func (uc *LedgerUseCase) Lock(ctx context.Context, input LockInput) ([]*domain.Entry, error) {
	return uc.postPair(ctx, domain.AuditActionFundsLock,
		input.post(domain.EntryTypeDebit, false),
		input.post(domain.EntryTypeCredit, true),
	)
}

// Unlock releases reserved funds: DEBIT locked then CREDIT available.
func (uc *LedgerUseCase) Unlock(ctx context.Context, input LockInput) ([]*domain.Entry, error) {
	return uc.postPair(ctx, domain.AuditActionFundsUnlock,
		input.post(domain.EntryTypeDebit, true),
		input.post(domain.EntryTypeCredit, false),
	)
}

// Settle pays out reserved funds: a single DEBIT of the locked balance.
func (uc *LedgerUseCase) Settle(ctx context.Context, input LockInput) (*domain.Entry, error) {
	entries, err := uc.postPair(ctx, domain.AuditActionFundsSettle, input.post(domain.EntryTypeDebit, true))
	if err != nil {
		return nil, err
	}
	return entries[0], nil
}

func (uc *LedgerUseCase) postPair(ctx context.Context, action domain.AuditAction, inputs ...PostInput) ([]*domain.Entry, error) {
	for _, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	}

	start := time.Now()

	var entries []*domain.Entry
	err := uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		entries = entries[:0]

		wallet, err := uc.lockWallet(ctx, tx, inputs[0].UserID)
		if err != nil {
			return err
		}
		before := *wallet

		for _, in := range inputs {
			entry, err := uc.postLocked(ctx, tx, wallet, in)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		return uc.audit(ctx, tx, action, domain.AggregateTypeWallet, wallet.ID, before, wallet)
	})

	uc.observe(start, inputs[0], err)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// lockWallet returns the user's wallet under a row lock, creating it on first use.
func (uc *LedgerUseCase) lockWallet(ctx context.Context, tx Transaction, userID string) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.walletRepo.CreateTx(ctx, tx, &domain.Wallet{
		ID:            uc.idGen.Generate(),
		UserID:        userID,
		Balance:       decimal.Zero,
		LockedBalance: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return nil, err
	}

	return uc.walletRepo.GetByUserIDForUpdate(ctx, tx, userID)
}

// postLocked appends an entry for a wallet already locked by tx and mutates it in place.
func (uc *LedgerUseCase) postLocked(ctx context.Context, tx Transaction, wallet *domain.Wallet, input PostInput) (*domain.Entry, error) {
	snap, applyErr := wallet.Apply(input.EntryType, input.Amount, input.AffectsLocked)
	if applyErr != nil && !errors.Is(applyErr, domain.ErrInsufficientFunds) {
		return nil, applyErr
	}

	now := time.Now().UTC()
	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		WalletID:        wallet.ID,
		UserID:          wallet.UserID,
		EntryType:       input.EntryType,
		TransactionType: input.TransactionType,
		Status:          domain.EntryStatusSuccess,
		Amount:          input.Amount,
		BalanceBefore:   snap.BalanceBefore,
		BalanceAfter:    snap.BalanceAfter,
		LockedBefore:    snap.LockedBefore,
		LockedAfter:     snap.LockedAfter,
		AffectsLocked:   input.AffectsLocked,
		ReferenceTable:  input.ReferenceTable,
		ReferenceID:     input.ReferenceID,
		ReversalOf:      input.reversalOf,
		Description:     input.Description,
		Meta:            input.Meta,
		WalletVersion:   wallet.Version,
		CreatedAt:       now,
	}

	eventType := domain.EventTypeEntryPosted
	if applyErr != nil {
		entry.Status = domain.EntryStatusFailed
		eventType = domain.EventTypeEntryFailed
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if applyErr == nil {
		wallet.UpdatedAt = now
		if err := uc.walletRepo.UpdateBalances(ctx, tx, wallet); err != nil {
			return nil, err
		}
	}

	if err := uc.emit(ctx, tx, entry.ID, domain.AggregateTypeEntry, eventType, domain.NewEntryPostedEvent(entry)); err != nil {
		return nil, err
	}

	if applyErr != nil {
		if uc.metrics != nil {
			afterCommit(ctx, func() {
				uc.metrics.EntriesFailed.WithLabelValues(string(entry.TransactionType)).Inc()
			})
		}
		return entry, applyErr
	}

	return entry, nil
}

func (uc *LedgerUseCase) emit(ctx context.Context, tx Transaction, aggregateID, aggregateType, eventType string, payload any) error {
	return emitEvent(ctx, tx, uc.outboxRepo, uc.idGen, aggregateID, aggregateType, eventType, payload)
}

func (uc *LedgerUseCase) audit(ctx context.Context, tx Transaction, action domain.AuditAction, resourceType, resourceID string, before, after any) error {
	return writeAudit(ctx, tx, uc.auditRepo, uc.idGen, uc.metrics, action, resourceType, resourceID, before, after)
}

func (uc *LedgerUseCase) observe(start time.Time, input PostInput, err error) {
	if uc.metrics == nil {
		return
	}

	if err != nil {
		uc.metrics.PostErrors.WithLabelValues(errorType(err)).Inc()
		return
	}

	uc.metrics.EntriesPosted.WithLabelValues(string(input.TransactionType), string(input.EntryType)).Inc()
	uc.metrics.PostDuration.Observe(time.Since(start).Seconds())
	uc.metrics.EntryAmount.Observe(input.Amount.InexactFloat64())
}

// emitEvent writes an outbox event in the caller's transaction.
func emitEvent(ctx context.Context, tx Transaction, repo OutboxRepository, idGen IDGenerator, aggregateID, aggregateType, eventType string, payload any) error {
	if repo == nil {
		return nil
	}

	return repo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       domain.MarshalState(payload),
		CreatedAt:     time.Now().UTC(),
	})
}

func writeAudit(
	ctx context.Context,
	tx Transaction,
	repo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	action domain.AuditAction,
	resourceType, resourceID string,
	before, after any,
) error {
	if repo == nil {
		return nil
	}

	log := domain.NewAuditLog(ctx, action, resourceType, resourceID, before, after)
	log.ID = idGen.Generate()
	log.CreatedAt = time.Now().UTC()

	if err := repo.CreateTx(ctx, tx, log); err != nil {
		return err
	}

	if m != nil {
		afterCommit(ctx, func() {
			m.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
		})
	}
	return nil
}
