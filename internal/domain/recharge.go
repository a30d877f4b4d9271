package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RechargeStatus is the review state of a recharge request.
type RechargeStatus string

const (
	RechargeStatusPending  RechargeStatus = "PENDING"
	RechargeStatusApproved RechargeStatus = "APPROVED"
	RechargeStatusRejected RechargeStatus = "REJECTED"
)

// ParseRechargeStatus converts a string into a RechargeStatus.
func ParseRechargeStatus(s string) (RechargeStatus, error) {
	st := RechargeStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case RechargeStatusPending, RechargeStatusApproved, RechargeStatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// RechargeReferenceTable is the reference_table of entries posted on approval.
const RechargeReferenceTable = "recharge_requests"

// RechargeRequest is a user's request to top up their wallet, awaiting admin review.
type RechargeRequest struct {
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ReviewedAt       *time.Time
	EntryID          *string
	ID               string
	UserID           string
	PaymentMethod    string
	PaymentReference string
	ProofImage       string
	ReviewedBy       string
	ReviewNote       string
	Status           RechargeStatus
	Amount           decimal.Decimal
}

// Validate checks the fields a member must supply.
func (r *RechargeRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	}
	if len(r.PaymentReference) > MaxReferenceLength {
		return fmt.Errorf("%w: payment reference exceeds %d characters", ErrInvalidInput, MaxReferenceLength)
	}
	return nil
}

// IsPending reports whether the request still awaits review.
func (r *RechargeRequest) IsPending() bool {
	return r.Status == RechargeStatusPending
}

// RechargeFilter narrows recharge listings.
type RechargeFilter struct {
	UserID   string
	Status   RechargeStatus
	Page     int
	PageSize int
}

// Normalize applies pagination defaults and limits.
func (f RechargeFilter) Normalize() RechargeFilter {
	f.Page, f.PageSize = ValidatePagination(f.Page, f.PageSize)
	return f
}

// Offset returns the row offset of the current page.
func (f RechargeFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
