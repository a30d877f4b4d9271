package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// WalletService defines the wallet reads needed by WalletHandler.
type WalletService interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, page, pageSize int) ([]*domain.Wallet, error)
}

// LedgerService defines the ledger writes needed by WalletHandler.
type LedgerService interface {
	Post(ctx context.Context, input usecase.PostInput) (*domain.Entry, error)
	Lock(ctx context.Context, input usecase.LockInput) ([]*domain.Entry, error)
	Unlock(ctx context.Context, input usecase.LockInput) ([]*domain.Entry, error)
	Settle(ctx context.Context, input usecase.LockInput) (*domain.Entry, error)
}

// BalanceHistoryService returns a wallet's balances at a point in time.
type BalanceHistoryService interface {
	BalanceAt(ctx context.Context, userID string, at time.Time) (*domain.Snapshot, error)
}

// WalletHandler handles wallet HTTP requests.
type WalletHandler struct {
	walletUC  WalletService
	ledgerUC  LedgerService
	historyUC BalanceHistoryService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService, ledgerUC LedgerService, historyUC BalanceHistoryService) *WalletHandler {
	return &WalletHandler{
		walletUC:  walletUC,
		ledgerUC:  ledgerUC,
		historyUC: historyUC,
	}
}

// Get returns the wallet of a user, creating an empty one on first access.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}
	if !canAccessWallet(r, userID) {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	wallet, err := h.walletUC.GetWallet(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, "failed to get wallet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// List pages through all wallets.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := domain.ValidatePagination(
		parseIntQuery(r, "page", 1),
		parseIntQuery(r, "page_size", domain.DefaultPageSize),
	)

	wallets, err := h.walletUC.ListWallets(r.Context(), page, pageSize)
	if err != nil {
		writeDomainError(w, r, "failed to list wallets", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWalletsResponse{
		Wallets:  dto.WalletsFromDomain(wallets),
		Page:     page,
		PageSize: pageSize,
	})
}

// PostEntry appends a single entry to the wallet.
func (h *WalletHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req dto.PostEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(userID)
	if err != nil {
		writeDomainError(w, r, "invalid entry", err)
		return
	}

	entry, err := h.ledgerUC.Post(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to post entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Lock reserves available funds for a pending withdrawal.
func (h *WalletHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.movePair(w, r, "failed to lock funds", h.ledgerUC.Lock)
}

// Unlock returns reserved funds to the available balance.
func (h *WalletHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.movePair(w, r, "failed to unlock funds", h.ledgerUC.Unlock)
}

// Settle pays out reserved funds.
func (h *WalletHandler) Settle(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeLockInput(w, r)
	if !ok {
		return
	}

	entry, err := h.ledgerUC.Settle(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to settle funds", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

func (h *WalletHandler) movePair(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	move func(context.Context, usecase.LockInput) ([]*domain.Entry, error),
) {
	input, ok := decodeLockInput(w, r)
	if !ok {
		return
	}

	entries, err := move(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, message, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntriesFromDomain(entries))
}

func decodeLockInput(w http.ResponseWriter, r *http.Request) (usecase.LockInput, bool) {
	var req dto.LockFundsRequest
	if !decodeJSON(w, r, &req) {
		return usecase.LockInput{}, false
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, r, "invalid request", err)
		return usecase.LockInput{}, false
	}
	return input, true
}

// BalanceHistory gets the wallet balances at a specific time.
func (h *WalletHandler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !canAccessWallet(r, userID) {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	atStr := r.URL.Query().Get("at")
	if atStr == "" {
		writeError(w, http.StatusBadRequest, "missing 'at' parameter", "")
		return
	}

	at, err := time.Parse(time.RFC3339, atStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'at' format (use RFC3339)", err.Error())
		return
	}

	snapshot, err := h.historyUC.BalanceAt(r.Context(), userID, at)
	if err != nil {
		writeDomainError(w, r, "failed to get balance history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceHistoryResponse{
		At:            at,
		UserID:        userID,
		Balance:       snapshot.BalanceAfter.String(),
		LockedBalance: snapshot.LockedAfter.String(),
	})
}
