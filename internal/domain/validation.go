package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall   = errors.New("amount below minimum allowed")
	ErrMetadataTooLarge = errors.New("metadata size exceeds limit")
	ErrInvalidReference = errors.New("invalid reference")
)

// Validation constants
const (
	MaxMetadataSize      = 10240 // 10KB
	MaxEntryAmount       = "1000000000000"
	MinEntryAmount       = "0.01"
	AmountScale          = 2
	MaxReferenceLength   = 128
	MaxDescriptionLength = 500
	DefaultPageSize      = 20
	MaxPageSize          = 100
)

var (
	minEntryAmount = decimal.RequireFromString(MinEntryAmount)
	maxEntryAmount = decimal.RequireFromString(MaxEntryAmount)
)

// ValidateAmount validates an entry or recharge amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.LessThan(minEntryAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinEntryAmount)
	}

	if amount.GreaterThan(maxEntryAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxEntryAmount)
	}

	// Amounts are stored as NUMERIC(20,2); anything finer would be rounded per column.
	if !amount.Equal(amount.Round(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidAmount, AmountScale)
	}

	return nil
}

// ValidateMetadata validates the encoded size of entry metadata
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("%w: metadata is not valid JSON: %v", ErrInvalidInput, err)
	}

	if len(data) > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, len(data), MaxMetadataSize)
	}

	return nil
}

// ValidateReference checks the polymorphic back-reference of an entry.
// Both parts are optional, but an id without a table is rejected.
func ValidateReference(table, id string) error {
	table, id = strings.TrimSpace(table), strings.TrimSpace(id)

	if table == "" && id != "" {
		return fmt.Errorf("%w: reference id without reference table", ErrInvalidReference)
	}
	if len(table) > MaxReferenceLength || len(id) > MaxReferenceLength {
		return fmt.Errorf("%w: reference exceeds %d characters", ErrInvalidReference, MaxReferenceLength)
	}

	return nil
}

// ValidateDescription limits free-text descriptions
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MaxDescriptionLength)
	}
	return nil
}

// ValidatePagination normalizes 1-based page numbers and page sizes
func ValidatePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize
}
