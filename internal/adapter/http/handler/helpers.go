package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logger"
)

// maxBodyBytes bounds request bodies; metadata is capped well below this.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status code. Server-side failures are logged
// and answered with a generic message so storage details never leak.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error().
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Msg(message)

		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
		}
		writeError(w, status, message, http.StatusText(status))
		return
	}

	writeError(w, status, message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrRechargeNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrAlreadyReversed),
		errors.Is(err, domain.ErrRechargeNotPending),
		errors.Is(err, domain.ErrDuplicateRecharge),
		errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNotReversible):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrTooManyPendingRequests):
		return http.StatusTooManyRequests

	case errors.Is(err, domain.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrInvalidEntryType),
		errors.Is(err, domain.ErrInvalidTransactionType),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, domain.ErrMetadataTooLarge),
		errors.Is(err, domain.ErrReversalViaPost):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return validBody(w, v)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return validBody(w, v)
}

func validBody(w http.ResponseWriter, v any) bool {
	if err := dto.Validate(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseTimeQuery accepts RFC3339 timestamps or plain dates. A plain date used as
// an upper bound covers the whole day.
func parseTimeQuery(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", domain.ErrInvalidInput, key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// parseEntryFilter reads the ledger listing filters from the query string.
func parseEntryFilter(r *http.Request) (domain.EntryFilter, error) {
	q := r.URL.Query()
	filter := domain.EntryFilter{
		UserID:   q.Get("user_id"),
		Search:   q.Get("search"),
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", domain.DefaultPageSize),
	}

	var err error
	if v := q.Get("transaction_type"); v != "" {
		if filter.TransactionType, err = domain.ParseTransactionType(v); err != nil {
			return filter, err
		}
	}
	if v := q.Get("entry_type"); v != "" {
		if filter.EntryType, err = domain.ParseEntryType(v); err != nil {
			return filter, err
		}
	}
	if v := q.Get("status"); v != "" {
		if filter.Status, err = domain.ParseEntryStatus(v); err != nil {
			return filter, err
		}
	}
	if filter.From, err = parseTimeQuery(r, "from", false); err != nil {
		return filter, err
	}
	if filter.To, err = parseTimeQuery(r, "to", true); err != nil {
		return filter, err
	}

	return filter, nil
}

// canAccessWallet allows requests without an authenticated caller, which only
// happens when authentication is disabled.
func canAccessWallet(r *http.Request, userID string) bool {
	user, ok := domain.UserFromContext(r.Context())
	if !ok {
		return true
	}
	return user.CanAccessWallet(userID)
}

// scopeToCaller pins the user filter of members to their own id.
func scopeToCaller(r *http.Request, userID string) string {
	user, ok := domain.UserFromContext(r.Context())
	if !ok || user.Role.CanPost() {
		return userID
	}
	return user.ID
}

// callerID returns the authenticated user id, or "system" without authentication.
func callerID(r *http.Request) string {
	if user, ok := domain.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return "system"
}
