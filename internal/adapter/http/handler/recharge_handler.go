package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// RechargeService defines the behavior needed by RechargeHandler.
type RechargeService interface {
	Submit(ctx context.Context, input usecase.SubmitRechargeInput) (*domain.RechargeRequest, error)
	Approve(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error)
	Reject(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error)
	Get(ctx context.Context, id string) (*domain.RechargeRequest, error)
	List(ctx context.Context, filter domain.RechargeFilter) (*usecase.RechargePage, error)
}

// RechargeHandler handles recharge request HTTP requests.
type RechargeHandler struct {
	rechargeUC RechargeService
}

// NewRechargeHandler creates a new RechargeHandler.
func NewRechargeHandler(rechargeUC RechargeService) *RechargeHandler {
	return &RechargeHandler{rechargeUC: rechargeUC}
}

// Submit creates a PENDING recharge request. Members submit for themselves.
func (h *RechargeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRechargeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.UserID == "" {
		if user, ok := domain.UserFromContext(r.Context()); ok {
			req.UserID = user.ID
		}
	}
	if !canAccessWallet(r, req.UserID) {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, "invalid recharge request", err)
		return
	}

	recharge, err := h.rechargeUC.Submit(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to submit recharge request", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RechargeFromDomain(recharge))
}

// List returns recharge requests, newest first.
func (h *RechargeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.RechargeFilter{
		UserID:   scopeToCaller(r, r.URL.Query().Get("user_id")),
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", domain.DefaultPageSize),
	}

	if v := r.URL.Query().Get("status"); v != "" {
		status, err := domain.ParseRechargeStatus(v)
		if err != nil {
			writeDomainError(w, r, "invalid filter", err)
			return
		}
		filter.Status = status
	}

	page, err := h.rechargeUC.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, "failed to list recharge requests", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RechargePageFromUseCase(page))
}

// Get retrieves a recharge request by ID.
func (h *RechargeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recharge, err := h.rechargeUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get recharge request", err)
		return
	}
	if !canAccessWallet(r, recharge.UserID) {
		writeDomainError(w, r, "failed to get recharge request", domain.ErrRechargeNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.RechargeFromDomain(recharge))
}

// Approve credits the wallet and closes the request.
func (h *RechargeHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "failed to approve recharge request", h.rechargeUC.Approve)
}

// Reject closes the request without touching the wallet.
func (h *RechargeHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "failed to reject recharge request", h.rechargeUC.Reject)
}

func (h *RechargeHandler) review(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	decide func(context.Context, usecase.ReviewInput) (*domain.RechargeRequest, error),
) {
	var req dto.ReviewRechargeRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	recharge, err := decide(r.Context(), usecase.ReviewInput{
		RechargeID: chi.URLParam(r, "id"),
		ReviewerID: callerID(r),
		Note:       req.Note,
	})
	if err != nil {
		writeDomainError(w, r, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RechargeFromDomain(recharge))
}
