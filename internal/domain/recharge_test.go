package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRechargeRequest_Validate(t *testing.T) {
	tests := []struct {
		name        string
		req         RechargeRequest
		expectError error
	}{
		{
			name: "valid request",
			req: RechargeRequest{
				UserID:           "user-1",
				Amount:           decimal.NewFromInt(100),
				PaymentMethod:    "bank_transfer",
				PaymentReference: "TX-1",
			},
		},
		{
			name: "missing user",
			req: RechargeRequest{
				Amount:        decimal.NewFromInt(100),
				PaymentMethod: "bank_transfer",
			},
			expectError: ErrInvalidInput,
		},
		{
			name: "zero amount",
			req: RechargeRequest{
				UserID:        "user-1",
				Amount:        decimal.Zero,
				PaymentMethod: "bank_transfer",
			},
			expectError: ErrInvalidAmount,
		},
		{
			name: "sub-cent amount",
			req: RechargeRequest{
				UserID:        "user-1",
				Amount:        decimal.RequireFromString("10.005"),
				PaymentMethod: "bank_transfer",
			},
			expectError: ErrInvalidAmount,
		},
		{
			name: "missing payment method",
			req: RechargeRequest{
				UserID: "user-1",
				Amount: decimal.NewFromInt(5),
			},
			expectError: ErrInvalidInput,
		},
		{
			name: "reference too long",
			req: RechargeRequest{
				UserID:           "user-1",
				Amount:           decimal.NewFromInt(5),
				PaymentMethod:    "upi",
				PaymentReference: strings.Repeat("r", MaxReferenceLength+1),
			},
			expectError: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestParseRechargeStatus(t *testing.T) {
	st, err := ParseRechargeStatus("pending")
	if err != nil || st != RechargeStatusPending {
		t.Fatalf("expected PENDING, got %q (%v)", st, err)
	}

	if _, err := ParseRechargeStatus("LOST"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
