package domain

import "time"

// Event types
const (
	EventTypeEntryPosted       = "entry.posted"
	EventTypeEntryFailed       = "entry.failed"
	EventTypeEntryReversed     = "entry.reversed"
	EventTypeRechargeSubmitted = "recharge.submitted"
	EventTypeRechargeApproved  = "recharge.approved"
	EventTypeRechargeRejected  = "recharge.rejected"
)

// Aggregate types
const (
	AggregateTypeWallet   = "wallet"
	AggregateTypeEntry    = "entry"
	AggregateTypeRecharge = "recharge"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// EntryPostedEvent payload
type EntryPostedEvent struct {
	EntryID         string `json:"entry_id"`
	WalletID        string `json:"wallet_id"`
	UserID          string `json:"user_id"`
	EntryType       string `json:"entry_type"`
	TransactionType string `json:"transaction_type"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	BalanceAfter    string `json:"balance_after"`
	LockedAfter     string `json:"locked_after"`
	ReferenceTable  string `json:"reference_table,omitempty"`
	ReferenceID     string `json:"reference_id,omitempty"`
}

// EntryReversedEvent payload
type EntryReversedEvent struct {
	ReversalEntryID string `json:"reversal_entry_id"`
	OriginalEntryID string `json:"original_entry_id"`
	UserID          string `json:"user_id"`
	Amount          string `json:"amount"`
	Reason          string `json:"reason,omitempty"`
}

// RechargeEvent payload
type RechargeEvent struct {
	RechargeID string `json:"recharge_id"`
	UserID     string `json:"user_id"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	EntryID    string `json:"entry_id,omitempty"`
	ReviewedBy string `json:"reviewed_by,omitempty"`
}

// NewEntryPostedEvent builds the payload published for a committed entry.
func NewEntryPostedEvent(e *Entry) EntryPostedEvent {
	return EntryPostedEvent{
		EntryID:         e.ID,
		WalletID:        e.WalletID,
		UserID:          e.UserID,
		EntryType:       string(e.EntryType),
		TransactionType: string(e.TransactionType),
		Status:          string(e.Status),
		Amount:          e.Amount.String(),
		BalanceAfter:    e.BalanceAfter.String(),
		LockedAfter:     e.LockedAfter.String(),
		ReferenceTable:  e.ReferenceTable,
		ReferenceID:     e.ReferenceID,
	}
}

// NewRechargeEvent builds the payload published for a recharge state change.
func NewRechargeEvent(r *RechargeRequest) RechargeEvent {
	ev := RechargeEvent{
		RechargeID: r.ID,
		UserID:     r.UserID,
		Amount:     r.Amount.String(),
		Status:     string(r.Status),
		ReviewedBy: r.ReviewedBy,
	}
	if r.EntryID != nil {
		ev.EntryID = *r.EntryID
	}
	return ev
}
