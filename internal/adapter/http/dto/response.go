package dto

import (
	"time"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Balance       string    `json:"balance"`
	LockedBalance string    `json:"locked_balance"`
	Total         string    `json:"total"`
	Version       int64     `json:"version"`
}

// WalletFromDomain converts a domain wallet to response.
func WalletFromDomain(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
		ID:            w.ID,
		UserID:        w.UserID,
		Balance:       w.Balance.String(),
		LockedBalance: w.LockedBalance.String(),
		Total:         w.Total().String(),
		Version:       w.Version,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []WalletResponse {
	result := make([]WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// ListWalletsResponse represents one page of wallets.
type ListWalletsResponse struct {
	Wallets  []WalletResponse `json:"wallets"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	CreatedAt       time.Time      `json:"created_at"`
	Meta            map[string]any `json:"meta,omitempty"`
	ReversalOf      *string        `json:"reversal_of,omitempty"`
	ID              string         `json:"id"`
	WalletID        string         `json:"wallet_id"`
	UserID          string         `json:"user_id"`
	ReferenceTable  string         `json:"reference_table,omitempty"`
	ReferenceID     string         `json:"reference_id,omitempty"`
	Description     string         `json:"description"`
	EntryType       string         `json:"entry_type"`
	TransactionType string         `json:"transaction_type"`
	Status          string         `json:"status"`
	Amount          string         `json:"amount"`
	BalanceBefore   string         `json:"balance_before"`
	BalanceAfter    string         `json:"balance_after"`
	LockedBefore    string         `json:"locked_before"`
	LockedAfter     string         `json:"locked_after"`
	WalletVersion   int64          `json:"wallet_version"`
	AffectsLocked   bool           `json:"affects_locked"`
}

// EntryFromDomain converts a domain entry to response.
func EntryFromDomain(e *domain.Entry) EntryResponse {
	return EntryResponse{
		CreatedAt:       e.CreatedAt,
		Meta:            e.Meta,
		ReversalOf:      e.ReversalOf,
		ID:              e.ID,
		WalletID:        e.WalletID,
		UserID:          e.UserID,
		ReferenceTable:  e.ReferenceTable,
		ReferenceID:     e.ReferenceID,
		Description:     e.Description,
		EntryType:       string(e.EntryType),
		TransactionType: string(e.TransactionType),
		Status:          string(e.Status),
		Amount:          e.Amount.String(),
		BalanceBefore:   e.BalanceBefore.String(),
		BalanceAfter:    e.BalanceAfter.String(),
		LockedBefore:    e.LockedBefore.String(),
		LockedAfter:     e.LockedAfter.String(),
		WalletVersion:   e.WalletVersion,
		AffectsLocked:   e.AffectsLocked,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []EntryResponse {
	result := make([]EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntryViewResponse is an entry joined with its owner's profile.
type EntryViewResponse struct {
	EntryResponse
	UserName  string `json:"user_name,omitempty"`
	UserPhone string `json:"user_phone,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// SummaryResponse totals the SUCCESS entries of one page.
type SummaryResponse struct {
	TotalCredit string `json:"total_credit"`
	TotalDebit  string `json:"total_debit"`
	Net         string `json:"net"`
	Count       int    `json:"count"`
}

// EntryPageResponse represents one page of a ledger listing.
type EntryPageResponse struct {
	Items      []EntryViewResponse `json:"items"`
	Summary    SummaryResponse     `json:"summary"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
	HasNext    bool                `json:"has_next"`
}

// EntryPageFromDomain converts a domain page to response.
func EntryPageFromDomain(p *domain.EntryPage) EntryPageResponse {
	items := make([]EntryViewResponse, len(p.Items))
	for i, v := range p.Items {
		items[i] = EntryViewResponse{
			EntryResponse: EntryFromDomain(&v.Entry),
			UserName:      v.UserName,
			UserPhone:     v.UserPhone,
			UserEmail:     v.UserEmail,
		}
	}

	return EntryPageResponse{
		Items: items,
		Summary: SummaryResponse{
			TotalCredit: p.Summary.TotalCredit.String(),
			TotalDebit:  p.Summary.TotalDebit.String(),
			Net:         p.Summary.Net.String(),
			Count:       p.Summary.Count,
		},
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
	}
}

// StatsRowResponse is one (transaction type, entry type) bucket.
type StatsRowResponse struct {
	TransactionType string `json:"transaction_type"`
	EntryType       string `json:"entry_type"`
	Total           string `json:"total"`
	Count           int64  `json:"count"`
}

// StatsResponse represents aggregate statistics over a filter.
type StatsResponse struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Rows        []StatsRowResponse `json:"rows"`
	TotalCredit string             `json:"total_credit"`
	TotalDebit  string             `json:"total_debit"`
	Count       int64              `json:"count"`
}

// StatsFromDomain converts domain stats to response.
func StatsFromDomain(s *domain.Stats) StatsResponse {
	rows := make([]StatsRowResponse, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = StatsRowResponse{
			TransactionType: string(r.TransactionType),
			EntryType:       string(r.EntryType),
			Total:           r.Total.String(),
			Count:           r.Count,
		}
	}

	return StatsResponse{
		GeneratedAt: s.GeneratedAt,
		Rows:        rows,
		TotalCredit: s.TotalCredit.String(),
		TotalDebit:  s.TotalDebit.String(),
		Count:       s.Count,
	}
}

// BalanceHistoryResponse represents a wallet balance at a point in time.
type BalanceHistoryResponse struct {
	At            time.Time `json:"at"`
	UserID        string    `json:"user_id"`
	Balance       string    `json:"balance"`
	LockedBalance string    `json:"locked_balance"`
}

// RechargeResponse represents a recharge request in API responses.
type RechargeResponse struct {
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	EntryID          *string    `json:"entry_id,omitempty"`
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	PaymentMethod    string     `json:"payment_method"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	ProofImage       string     `json:"proof_image,omitempty"`
	ReviewedBy       string     `json:"reviewed_by,omitempty"`
	ReviewNote       string     `json:"review_note,omitempty"`
	Status           string     `json:"status"`
	Amount           string     `json:"amount"`
}

// RechargeFromDomain converts a domain recharge request to response.
func RechargeFromDomain(r *domain.RechargeRequest) RechargeResponse {
	return RechargeResponse{
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		ReviewedAt:       r.ReviewedAt,
		EntryID:          r.EntryID,
		ID:               r.ID,
		UserID:           r.UserID,
		PaymentMethod:    r.PaymentMethod,
		PaymentReference: r.PaymentReference,
		ProofImage:       r.ProofImage,
		ReviewedBy:       r.ReviewedBy,
		ReviewNote:       r.ReviewNote,
		Status:           string(r.Status),
		Amount:           r.Amount.String(),
	}
}

// RechargePageResponse represents one page of recharge requests.
type RechargePageResponse struct {
	Items    []RechargeResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// RechargePageFromUseCase converts a use case page to response.
func RechargePageFromUseCase(p *usecase.RechargePage) RechargePageResponse {
	items := make([]RechargeResponse, len(p.Items))
	for i, r := range p.Items {
		items[i] = RechargeFromDomain(r)
	}

	return RechargePageResponse{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}

// ReconciliationResponse reports whether one wallet matches its ledger.
type ReconciliationResponse struct {
	Problems       []string `json:"problems,omitempty"`
	WalletID       string   `json:"wallet_id"`
	UserID         string   `json:"user_id"`
	Balance        string   `json:"balance"`
	LockedBalance  string   `json:"locked_balance"`
	LedgerBalance  string   `json:"ledger_balance"`
	LedgerLocked   string   `json:"ledger_locked"`
	EntriesChecked int      `json:"entries_checked"`
	Consistent     bool     `json:"consistent"`
}

// ReconciliationFromDomain converts a reconciliation result to response.
func ReconciliationFromDomain(r *domain.ReconciliationResult) ReconciliationResponse {
	return ReconciliationResponse{
		Problems:       r.Problems,
		WalletID:       r.WalletID,
		UserID:         r.UserID,
		Balance:        r.Balance.String(),
		LockedBalance:  r.LockedBalance.String(),
		LedgerBalance:  r.LedgerBalance.String(),
		LedgerLocked:   r.LedgerLocked.String(),
		EntriesChecked: r.EntriesChecked,
		Consistent:     r.Consistent,
	}
}

// ReconciliationReportResponse summarizes a reconciliation run over all wallets.
type ReconciliationReportResponse struct {
	CheckedAt         time.Time                `json:"checked_at"`
	Discrepancies     []ReconciliationResponse `json:"discrepancies"`
	TotalWallets      int                      `json:"total_wallets"`
	ConsistentWallets int                      `json:"consistent_wallets"`
	EntriesChecked    int                      `json:"entries_checked"`
	Healthy           bool                     `json:"healthy"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) ReconciliationReportResponse {
	discrepancies := make([]ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromDomain(d)
	}

	return ReconciliationReportResponse{
		CheckedAt:         r.CheckedAt,
		Discrepancies:     discrepancies,
		TotalWallets:      r.TotalWallets,
		ConsistentWallets: r.ConsistentWallets,
		EntriesChecked:    r.EntriesChecked,
		Healthy:           len(r.Discrepancies) == 0,
	}
}

// AuditLogResponse represents an audit record.
type AuditLogResponse struct {
	CreatedAt    time.Time      `json:"created_at"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// AuditLogsFromDomain converts audit records to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []AuditLogResponse {
	result := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = AuditLogResponse{
			CreatedAt:    l.CreatedAt,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			IPAddress:    l.IPAddress,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
		}
	}
	return result
}

// UserResponse represents a synced user profile.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Phone: u.Phone,
		Email: u.Email,
	}
}
