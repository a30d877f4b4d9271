package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
	"github.com/iho/walletledger/internal/usecase/mocks"
)

type harness struct {
	store        *mocks.Store
	txMgr        *mocks.MockTransactionManager
	walletRepo   *mocks.MockWalletRepository
	entryRepo    *mocks.MockEntryRepository
	rechargeRepo *mocks.MockRechargeRepository
	outboxRepo   *mocks.MockOutboxRepository
	auditRepo    *mocks.MockAuditRepository
	idGen        *mocks.MockIDGenerator

	ledger   *usecase.LedgerUseCase
	reversal *usecase.ReversalUseCase
	recharge *usecase.RechargeUseCase
	wallets  *usecase.WalletUseCase
	recon    *usecase.ReconciliationUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{store: mocks.NewStore()}
	h.txMgr = mocks.NewMockTransactionManager(h.store)
	h.walletRepo = mocks.NewMockWalletRepository(h.store)
	h.entryRepo = mocks.NewMockEntryRepository(h.store)
	h.rechargeRepo = mocks.NewMockRechargeRepository(h.store)
	h.outboxRepo = mocks.NewMockOutboxRepository(h.store)
	h.auditRepo = mocks.NewMockAuditRepository(h.store)
	h.idGen = mocks.NewMockIDGenerator()

	h.ledger = usecase.NewLedgerUseCase(h.txMgr, h.walletRepo, h.entryRepo, h.outboxRepo, h.auditRepo, h.idGen, nil)
	h.reversal = usecase.NewReversalUseCase(h.ledger, h.entryRepo, h.outboxRepo, h.auditRepo, h.idGen, nil)
	h.recharge = usecase.NewRechargeUseCase(h.ledger, h.rechargeRepo, h.outboxRepo, h.auditRepo, h.idGen, nil)
	h.wallets = usecase.NewWalletUseCase(h.ledger, h.walletRepo)
	h.recon = usecase.NewReconciliationUseCase(h.walletRepo, h.entryRepo)

	return h
}

// seed gives userID a wallet with an opening ADMIN_ADJUSTMENT credit so the ledger chain is complete.
func (h *harness) seed(t *testing.T, userID string, balance int64) *domain.Wallet {
	t.Helper()

	if balance == 0 {
		w := &domain.Wallet{ID: "w-" + userID, UserID: userID, CreatedAt: time.Now().UTC()}
		h.store.SeedWallet(w)
		return w
	}

	amount := decimal.NewFromInt(balance)
	w := &domain.Wallet{
		ID:      "w-" + userID,
		UserID:  userID,
		Balance: amount,
		Version: 1,
	}
	h.store.SeedWallet(w)
	h.store.SeedEntry(&domain.Entry{
		ID:              "seed-" + userID,
		WalletID:        w.ID,
		UserID:          userID,
		EntryType:       domain.EntryTypeCredit,
		TransactionType: domain.TransactionAdminAdjustment,
		Status:          domain.EntryStatusSuccess,
		Amount:          amount,
		BalanceAfter:    amount,
		WalletVersion:   1,
		CreatedAt:       time.Now().UTC().Add(-time.Hour),
	})
	return w
}

func (h *harness) balance(t *testing.T, userID string) (decimal.Decimal, decimal.Decimal) {
	t.Helper()
	w := h.store.Wallet(userID)
	if w == nil {
		t.Fatalf("wallet for %s not found", userID)
	}
	return w.Balance, w.LockedBalance
}

func credit(userID string, tt domain.TransactionType, amount int64) usecase.PostInput {
	return usecase.PostInput{
		UserID:          userID,
		EntryType:       domain.EntryTypeCredit,
		TransactionType: tt,
		Amount:          decimal.NewFromInt(amount),
	}
}

func debit(userID string, tt domain.TransactionType, amount int64) usecase.PostInput {
	in := credit(userID, tt, amount)
	in.EntryType = domain.EntryTypeDebit
	return in
}

func decimalOf(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
