package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// ReconciliationService compares wallets with their ledgers.
type ReconciliationService interface {
	ReconcileWallet(ctx context.Context, userID string) (*domain.ReconciliationResult, error)
	Report(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	reconciliationUC ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliationUC ReconciliationService) *LedgerHandler {
	return &LedgerHandler{reconciliationUC: reconciliationUC}
}

// Reconcile checks every wallet against its ledger.
// An inconsistent ledger is reported with 409 Conflict.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.Report(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to reconcile ledger", err)
		return
	}

	resp := dto.ReconciliationReportFromUseCase(report)
	if !resp.Healthy {
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ReconcileWallet checks a single wallet against its ledger.
func (h *LedgerHandler) ReconcileWallet(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationUC.ReconcileWallet(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, r, "failed to reconcile wallet", err)
		return
	}

	status := http.StatusOK
	if !result.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ReconciliationFromDomain(result))
}
