package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// UserService defines the behavior needed by UserHandler.
type UserService interface {
	SyncUser(ctx context.Context, input usecase.SyncUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// UserHandler receives profile snapshots from the user service.
type UserHandler struct {
	userUC UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUC UserService) *UserHandler {
	return &UserHandler{userUC: userUC}
}

// Sync creates or replaces a user profile.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req dto.SyncUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userUC.SyncUser(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to sync user", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// Get returns a synced user profile.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccessWallet(r, id) {
		writeError(w, http.StatusForbidden, "access denied", "")
		return
	}

	user, err := h.userUC.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get user", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
