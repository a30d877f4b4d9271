package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/entries?page_size=50", nil)
	if got := parseIntQuery(req, "page_size", 10); got != 50 {
		t.Fatalf("expected page_size=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries?page_size=invalid", nil)
	if got := parseIntQuery(req, "page_size", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "page_size", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseTimeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/entries?from=2024-03-01&to=2024-03-31&at=2024-03-05T10:00:00Z&bad=yesterday", nil)

	from, err := parseTimeQuery(req, "from", false)
	if err != nil || !from.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v (%v)", from, err)
	}

	to, err := parseTimeQuery(req, "to", true)
	if err != nil || !to.Equal(time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)) {
		t.Fatalf("expected end of day, got %v (%v)", to, err)
	}

	at, err := parseTimeQuery(req, "at", true)
	if err != nil || !at.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("RFC3339 timestamps must be kept as is, got %v (%v)", at, err)
	}

	if _, err := parseTimeQuery(req, "bad", false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	missing, err := parseTimeQuery(req, "missing", false)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing parameter, got %v (%v)", missing, err)
	}
}

func TestParseEntryFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/entries?user_id=u-1&search=ana&transaction_type=recharge_request&entry_type=credit&status=success&page=2&page_size=5", nil)

	filter, err := parseEntryFilter(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.UserID != "u-1" || filter.Search != "ana" || filter.Page != 2 || filter.PageSize != 5 {
		t.Fatalf("unexpected filter %+v", filter)
	}
	if filter.TransactionType != domain.TransactionRechargeRequest ||
		filter.EntryType != domain.EntryTypeCredit ||
		filter.Status != domain.EntryStatusSuccess {
		t.Fatalf("enums not parsed: %+v", filter)
	}

	for _, query := range []string{"transaction_type=x", "entry_type=x", "status=x", "from=x"} {
		req := httptest.NewRequest(http.MethodGet, "/entries?"+query, nil)
		if _, err := parseEntryFilter(req); err == nil {
			t.Fatalf("expected error for %s", query)
		}
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"wallet not found", domain.ErrWalletNotFound, http.StatusNotFound},
		{"entry not found", domain.ErrEntryNotFound, http.StatusNotFound},
		{"recharge not found", domain.ErrRechargeNotFound, http.StatusNotFound},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"wrapped invalid input", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput), http.StatusBadRequest},
		{"reversal via post", domain.ErrReversalViaPost, http.StatusBadRequest},
		{"already reversed", domain.ErrAlreadyReversed, http.StatusConflict},
		{"not pending", domain.ErrRechargeNotPending, http.StatusConflict},
		{"duplicate recharge", domain.ErrDuplicateRecharge, http.StatusConflict},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"not reversible", domain.ErrNotReversible, http.StatusUnprocessableEntity},
		{"too many pending", domain.ErrTooManyPendingRequests, http.StatusTooManyRequests},
		{"busy", errors.Join(domain.ErrBusy, errors.New("55P03")), http.StatusServiceUnavailable},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout},
		{"storage failure", domain.ErrStorageFailure, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteDomainError_HidesServerErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	rec := httptest.NewRecorder()

	writeDomainError(rec, req, "failed to list entries",
		fmt.Errorf("%w: pq: relation ledger_entries does not exist", domain.ErrStorageFailure))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("storage details leaked: %+v", resp)
	}
}

func TestWriteDomainError_BusySetsRetryAfter(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/wallets/u-1/entries", nil)
	rec := httptest.NewRecorder()

	writeDomainError(rec, req, "failed to post entry", domain.ErrBusy)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" || resp.Message != "detail" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}

func TestCallerScoping(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	if !canAccessWallet(req, "u-2") || scopeToCaller(req, "u-2") != "u-2" || callerID(req) != "system" {
		t.Fatal("requests without a caller must be unrestricted")
	}

	member := withUser(req, &domain.User{ID: "u-1", Role: domain.RoleMember})
	if canAccessWallet(member, "u-2") || !canAccessWallet(member, "u-1") {
		t.Fatal("members may only access their own wallet")
	}
	if got := scopeToCaller(member, "u-2"); got != "u-1" {
		t.Fatalf("expected member filter pinned to u-1, got %s", got)
	}

	admin := withUser(req, &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
	if !canAccessWallet(admin, "u-2") || scopeToCaller(admin, "") != "" || callerID(admin) != "admin-1" {
		t.Fatal("admins see every wallet")
	}
}

func withUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(domain.ContextWithUser(r.Context(), user))
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
