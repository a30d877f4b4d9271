package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/iho/walletledger/internal/domain"
)

// UserUseCase maintains the profile read model used by ledger search.
// Profiles are pushed by the user service; the ledger never originates them.
type UserUseCase struct {
	userRepo UserRepository
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

// SyncUserInput is a profile snapshot from the user service.
type SyncUserInput struct {
	ID    string
	Name  string
	Phone string
	Email string
}

// SyncUser creates or replaces a user profile.
func (uc *UserUseCase) SyncUser(ctx context.Context, input SyncUserInput) (*domain.User, error) {
	user := &domain.User{
		ID:    strings.TrimSpace(input.ID),
		Name:  strings.TrimSpace(input.Name),
		Phone: strings.TrimSpace(input.Phone),
		Email: strings.ToLower(strings.TrimSpace(input.Email)),
	}

	if user.ID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if len(user.Name) > 255 || len(user.Phone) > 32 || len(user.Email) > 255 {
		return nil, fmt.Errorf("%w: profile field too long", domain.ErrInvalidInput)
	}

	if err := uc.userRepo.Upsert(ctx, user); err != nil {
		return nil, storageError(ctx, err)
	}

	return user, nil
}

// GetUser returns a synced profile.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return user, nil
}
