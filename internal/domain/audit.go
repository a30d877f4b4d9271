package domain

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // What action (entry.reverse, recharge.approve, ...)
	ResourceType string // Type of resource (entry, wallet, recharge)
	ResourceID   string // ID of the resource
	IPAddress    string // Client IP address
	UserAgent    string // Client user agent
	RequestID    string // Request ID for tracing
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure, error
	ErrorMessage string // If status=error, the error message
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Ledger actions
	AuditActionEntryPost    AuditAction = "entry.post"
	AuditActionEntryReverse AuditAction = "entry.reverse"
	AuditActionFundsLock    AuditAction = "funds.lock"
	AuditActionFundsUnlock  AuditAction = "funds.unlock"
	AuditActionFundsSettle  AuditAction = "funds.settle"

	// Recharge actions
	AuditActionRechargeSubmit  AuditAction = "recharge.submit"
	AuditActionRechargeApprove AuditAction = "recharge.approve"
	AuditActionRechargeReject  AuditAction = "recharge.reject"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

// NewAuditLog builds a success audit record for the user found in ctx.
// Requests without an authenticated user are attributed to "system".
func NewAuditLog(ctx context.Context, action AuditAction, resourceType, resourceID string, before, after any) *AuditLog {
	actor := "system"
	if user, ok := UserFromContext(ctx); ok {
		actor = user.ID
	}

	return &AuditLog{
		UserID:       actor,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    RequestIDFromContext(ctx),
		BeforeState:  MarshalState(before),
		AfterState:   MarshalState(after),
		Status:       string(AuditStatusSuccess),
	}
}

type requestIDKey struct{}

// ContextWithRequestID attaches a request id used for audit correlation.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
