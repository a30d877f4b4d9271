package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

type rechargeServiceStub struct {
	submitFn  func(ctx context.Context, input usecase.SubmitRechargeInput) (*domain.RechargeRequest, error)
	approveFn func(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error)
	rejectFn  func(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error)
	getFn     func(ctx context.Context, id string) (*domain.RechargeRequest, error)
	listFn    func(ctx context.Context, filter domain.RechargeFilter) (*usecase.RechargePage, error)
}

func (s *rechargeServiceStub) Submit(ctx context.Context, input usecase.SubmitRechargeInput) (*domain.RechargeRequest, error) {
	return s.submitFn(ctx, input)
}

func (s *rechargeServiceStub) Approve(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error) {
	return s.approveFn(ctx, input)
}

func (s *rechargeServiceStub) Reject(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error) {
	return s.rejectFn(ctx, input)
}

func (s *rechargeServiceStub) Get(ctx context.Context, id string) (*domain.RechargeRequest, error) {
	return s.getFn(ctx, id)
}

func (s *rechargeServiceStub) List(ctx context.Context, filter domain.RechargeFilter) (*usecase.RechargePage, error) {
	return s.listFn(ctx, filter)
}

func TestRechargeHandler_Submit_DefaultsToCaller(t *testing.T) {
	var captured usecase.SubmitRechargeInput
	handler := NewRechargeHandler(&rechargeServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitRechargeInput) (*domain.RechargeRequest, error) {
			captured = input
			return &domain.RechargeRequest{
				ID:            "r-1",
				UserID:        input.UserID,
				PaymentMethod: input.PaymentMethod,
				Status:        domain.RechargeStatusPending,
				Amount:        input.Amount,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.SubmitRechargeRequest{Amount: "150", PaymentMethod: "bank_transfer", PaymentReference: "TRX-9"})
	req := httptest.NewRequest(http.MethodPost, "/recharges", bytes.NewReader(body))
	req = withUser(req, &domain.User{ID: "u-1", Role: domain.RoleMember})
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UserID != "u-1" || !captured.Amount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.RechargeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "PENDING" || resp.Amount != "150" {
		t.Fatalf("unexpected recharge %+v", resp)
	}
}

func TestRechargeHandler_Submit_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		user       *domain.User
		serviceErr error
		wantStatus int
	}{
		{"foreign wallet", `{"user_id":"u-2","amount":"10","payment_method":"cash"}`, &domain.User{ID: "u-1", Role: domain.RoleMember}, nil, http.StatusForbidden},
		{"bad amount", `{"user_id":"u-1","amount":"ten","payment_method":"cash"}`, nil, nil, http.StatusBadRequest},
		{"too many pending", `{"user_id":"u-1","amount":"10","payment_method":"cash"}`, nil, domain.ErrTooManyPendingRequests, http.StatusTooManyRequests},
		{"duplicate reference", `{"user_id":"u-1","amount":"10","payment_method":"cash"}`, nil, domain.ErrDuplicateRecharge, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRechargeHandler(&rechargeServiceStub{
				submitFn: func(ctx context.Context, input usecase.SubmitRechargeInput) (*domain.RechargeRequest, error) {
					if tt.serviceErr == nil {
						t.Fatal("Submit should not be called")
					}
					return nil, tt.serviceErr
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/recharges", bytes.NewBufferString(tt.body))
			if tt.user != nil {
				req = withUser(req, tt.user)
			}
			rec := httptest.NewRecorder()

			handler.Submit(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRechargeHandler_List(t *testing.T) {
	var captured domain.RechargeFilter
	handler := NewRechargeHandler(&rechargeServiceStub{
		listFn: func(ctx context.Context, filter domain.RechargeFilter) (*usecase.RechargePage, error) {
			captured = filter
			return &usecase.RechargePage{Items: []*domain.RechargeRequest{{ID: "r-1"}}, Total: 1, Page: 1, PageSize: 20}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/recharges?status=pending&user_id=u-2", nil)
	req = withUser(req, &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Status != domain.RechargeStatusPending || captured.UserID != "u-2" {
		t.Fatalf("unexpected filter %+v", captured)
	}

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/recharges?status=lost", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", rec.Code)
	}
}

func TestRechargeHandler_Get_ForeignRequestLooksMissing(t *testing.T) {
	handler := NewRechargeHandler(&rechargeServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.RechargeRequest, error) {
			return &domain.RechargeRequest{ID: id, UserID: "u-2"}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/recharges/r-1", nil), "id", "r-1")
	req = withUser(req, &domain.User{ID: "u-1", Role: domain.RoleMember})
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRechargeHandler_Review(t *testing.T) {
	entryID := "e-1"
	var approved, rejected usecase.ReviewInput
	handler := NewRechargeHandler(&rechargeServiceStub{
		approveFn: func(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error) {
			approved = input
			return &domain.RechargeRequest{ID: input.RechargeID, Status: domain.RechargeStatusApproved, EntryID: &entryID}, nil
		},
		rejectFn: func(ctx context.Context, input usecase.ReviewInput) (*domain.RechargeRequest, error) {
			rejected = input
			return nil, domain.ErrRechargeNotPending
		},
	})

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}

	req := setChiURLParam(httptest.NewRequest(http.MethodPost, "/recharges/r-1/approve", bytes.NewBufferString(`{"note":"verified"}`)), "id", "r-1")
	rec := httptest.NewRecorder()
	handler.Approve(rec, withUser(req, admin))

	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if approved.RechargeID != "r-1" || approved.ReviewerID != "admin-1" || approved.Note != "verified" {
		t.Fatalf("unexpected approve input %+v", approved)
	}

	req = setChiURLParam(httptest.NewRequest(http.MethodPost, "/recharges/r-1/reject", nil), "id", "r-1")
	rec = httptest.NewRecorder()
	handler.Reject(rec, withUser(req, admin))

	if rec.Code != http.StatusConflict {
		t.Fatalf("reject: expected 409, got %d", rec.Code)
	}
	if rejected.RechargeID != "r-1" || rejected.Note != "" {
		t.Fatalf("unexpected reject input %+v", rejected)
	}
}
