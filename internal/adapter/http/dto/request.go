package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// PostEntryRequest represents a request to post a single ledger entry.
type PostEntryRequest struct {
	Meta            map[string]any `json:"meta,omitempty"`
	EntryType       string         `json:"entry_type" validate:"required"`
	TransactionType string         `json:"transaction_type" validate:"required"`
	Amount          string         `json:"amount" validate:"required"`
	ReferenceTable  string         `json:"reference_table" validate:"max=128"`
	ReferenceID     string         `json:"reference_id" validate:"max=128"`
	Description     string         `json:"description" validate:"max=500"`
	AffectsLocked   bool           `json:"affects_locked"`
}

// ToUseCaseInput converts to use case input for the wallet of userID.
func (r *PostEntryRequest) ToUseCaseInput(userID string) (usecase.PostInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.PostInput{}, err
	}

	entryType, err := domain.ParseEntryType(r.EntryType)
	if err != nil {
		return usecase.PostInput{}, err
	}

	txType, err := domain.ParseTransactionType(r.TransactionType)
	if err != nil {
		return usecase.PostInput{}, err
	}

	return usecase.PostInput{
		Meta:            r.Meta,
		UserID:          userID,
		ReferenceTable:  r.ReferenceTable,
		ReferenceID:     r.ReferenceID,
		Description:     r.Description,
		EntryType:       entryType,
		TransactionType: txType,
		Amount:          amount,
		AffectsLocked:   r.AffectsLocked,
	}, nil
}

// LockFundsRequest represents a lock, unlock or settle of withdrawal funds.
type LockFundsRequest struct {
	Amount          string `json:"amount" validate:"required"`
	TransactionType string `json:"transaction_type,omitempty"`
	ReferenceTable  string `json:"reference_table" validate:"max=128"`
	ReferenceID     string `json:"reference_id" validate:"max=128"`
	Description     string `json:"description" validate:"max=500"`
}

// ToUseCaseInput converts to use case input. An empty transaction type
// defaults to WITHDRAWAL_REQUEST in the use case.
func (r *LockFundsRequest) ToUseCaseInput(userID string) (usecase.LockInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.LockInput{}, err
	}

	var txType domain.TransactionType
	if r.TransactionType != "" {
		txType, err = domain.ParseTransactionType(r.TransactionType)
		if err != nil {
			return usecase.LockInput{}, err
		}
	}

	return usecase.LockInput{
		UserID:          userID,
		ReferenceTable:  r.ReferenceTable,
		ReferenceID:     r.ReferenceID,
		Description:     r.Description,
		TransactionType: txType,
		Amount:          amount,
	}, nil
}

// SubmitRechargeRequest represents a member's top-up request.
// UserID may be omitted when the caller submits for their own wallet.
type SubmitRechargeRequest struct {
	UserID           string `json:"user_id,omitempty"`
	Amount           string `json:"amount" validate:"required"`
	PaymentMethod    string `json:"payment_method" validate:"required,max=64"`
	PaymentReference string `json:"payment_reference,omitempty" validate:"max=128"`
	ProofImage       string `json:"proof_image,omitempty" validate:"max=2048"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitRechargeRequest) ToUseCaseInput() (usecase.SubmitRechargeInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.SubmitRechargeInput{}, err
	}

	return usecase.SubmitRechargeInput{
		UserID:           r.UserID,
		PaymentMethod:    r.PaymentMethod,
		PaymentReference: r.PaymentReference,
		ProofImage:       r.ProofImage,
		Amount:           amount,
	}, nil
}

// ReviewRechargeRequest carries an optional reviewer note.
type ReviewRechargeRequest struct {
	Note string `json:"note,omitempty" validate:"max=500"`
}

// ReverseEntryRequest represents a request to reverse a ledger entry.
type ReverseEntryRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// SyncUserRequest is a profile snapshot pushed by the user service.
type SyncUserRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone" validate:"max=32"`
	Email string `json:"email" validate:"omitempty,email"`
}

// ToUseCaseInput converts to use case input.
func (r *SyncUserRequest) ToUseCaseInput(id string) usecase.SyncUserInput {
	return usecase.SyncUserInput{
		ID:    id,
		Name:  r.Name,
		Phone: r.Phone,
		Email: r.Email,
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	return amount, nil
}
