package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// TestWalletLifecycle walks a wallet through a recharge, a rejected withdrawal,
// a commission, its reversal and the pending-recharge admission gate.
func TestWalletLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.seed(t, "alice", 1000)

	// recharge credit then overdraw attempt
	if _, err := h.ledger.Post(ctx, credit("alice", domain.TransactionRechargeRequest, 500)); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	assertBalance(t, h, "alice", 1500)

	_, err := h.ledger.Post(ctx, debit("alice", domain.TransactionWithdrawalRequest, 2000))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	assertBalance(t, h, "alice", 1500)

	// commission and its reversal
	e1, err := h.ledger.Post(ctx, credit("alice", domain.TransactionReferralCommission, 200))
	if err != nil {
		t.Fatalf("commission failed: %v", err)
	}
	assertBalance(t, h, "alice", 1700)

	rev, err := h.reversal.Reverse(ctx, e1.ID, "")
	if err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if rev.EntryType != domain.EntryTypeDebit || rev.TransactionType != domain.TransactionReversal {
		t.Fatalf("unexpected reversal entry %s %s", rev.EntryType, rev.TransactionType)
	}
	if !rev.Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected reversal amount 200, got %s", rev.Amount)
	}
	if rev.ReversalOf == nil || *rev.ReversalOf != e1.ID {
		t.Fatalf("expected reversal to point at %s", e1.ID)
	}
	assertBalance(t, h, "alice", 1500)
	if got := h.store.Entry(e1.ID).Status; got != domain.EntryStatusReversed {
		t.Fatalf("expected original REVERSED, got %s", got)
	}

	// admission gate
	for i := 0; i < usecase.DefaultMaxPendingRecharges; i++ {
		_, err := h.recharge.Submit(ctx, usecase.SubmitRechargeInput{
			UserID:           "alice",
			Amount:           decimal.NewFromInt(100),
			PaymentMethod:    "bank_transfer",
			PaymentReference: fmt.Sprintf("ref-%d", i),
		})
		if err != nil {
			t.Fatalf("submission %d failed: %v", i, err)
		}
	}

	entriesBefore := len(h.store.Entries(""))
	_, err = h.recharge.Submit(ctx, usecase.SubmitRechargeInput{
		UserID:           "alice",
		Amount:           decimal.NewFromInt(100),
		PaymentMethod:    "bank_transfer",
		PaymentReference: "ref-overflow",
	})
	if !errors.Is(err, domain.ErrTooManyPendingRequests) {
		t.Fatalf("expected ErrTooManyPendingRequests, got %v", err)
	}
	if got := len(h.store.Entries("")); got != entriesBefore {
		t.Fatalf("rejected submission created entries: %d -> %d", entriesBefore, got)
	}

	result, err := h.recon.ReconcileWallet(ctx, "alice")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !result.Consistent {
		t.Fatalf("ledger inconsistent: %v", result.Problems)
	}
}

func assertBalance(t *testing.T, h *harness, userID string, want int64) {
	t.Helper()
	balance, _ := h.balance(t, userID)
	if !balance.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("expected %s balance %d, got %s", userID, want, balance)
	}
}
