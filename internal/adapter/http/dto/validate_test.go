package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/iho/walletledger/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       any
		wantField string
	}{
		{
			name: "complete entry",
			req:  &PostEntryRequest{EntryType: "CREDIT", TransactionType: "ADMIN_ADJUSTMENT", Amount: "1"},
		},
		{
			name:      "entry without amount",
			req:       &PostEntryRequest{EntryType: "CREDIT", TransactionType: "ADMIN_ADJUSTMENT"},
			wantField: "amount",
		},
		{
			name:      "recharge without payment method",
			req:       &SubmitRechargeRequest{Amount: "10"},
			wantField: "payment_method",
		},
		{
			name:      "oversized reason",
			req:       &ReverseEntryRequest{Reason: strings.Repeat("x", 501)},
			wantField: "reason",
		},
		{
			name:      "malformed email",
			req:       &SyncUserRequest{Name: "Ana", Email: "not-an-email"},
			wantField: "email",
		},
		{
			name: "empty optional note",
			req:  &ReviewRechargeRequest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantField+":") {
				t.Fatalf("expected error to name %q, got %v", tt.wantField, err)
			}
		})
	}
}
