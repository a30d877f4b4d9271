package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
)

// EntryQueryService defines the ledger reads needed by EntryHandler.
type EntryQueryService interface {
	ListEntries(ctx context.Context, filter domain.EntryFilter) (*domain.EntryPage, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	Stats(ctx context.Context, filter domain.EntryFilter) (*domain.Stats, error)
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// ReversalService reverses committed entries.
type ReversalService interface {
	Reverse(ctx context.Context, entryID, reason string) (*domain.Entry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	queryUC    EntryQueryService
	reversalUC ReversalService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(queryUC EntryQueryService, reversalUC ReversalService) *EntryHandler {
	return &EntryHandler{queryUC: queryUC, reversalUC: reversalUC}
}

// List returns one filtered page of entries with its page summary.
// Members only ever see their own entries.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEntryFilter(r)
	if err != nil {
		writeDomainError(w, r, "invalid filter", err)
		return
	}
	filter.UserID = scopeToCaller(r, filter.UserID)

	page, err := h.queryUC.ListEntries(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryPageFromDomain(page))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.queryUC.GetEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get entry", err)
		return
	}
	if !canAccessWallet(r, entry.UserID) {
		writeDomainError(w, r, "failed to get entry", domain.ErrEntryNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Reverse posts the compensating entry for an entry.
func (h *EntryHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ReverseEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reversal, err := h.reversalUC.Reverse(r.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(w, r, "failed to reverse entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(reversal))
}

// Audit returns the audit trail of an entry.
func (h *EntryHandler) Audit(w http.ResponseWriter, r *http.Request) {
	logs, err := h.queryUC.ListAuditLogs(r.Context(), domain.AuditFilter{
		ResourceType: domain.AggregateTypeEntry,
		ResourceID:   chi.URLParam(r, "id"),
		Limit:        parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// AuditLogs lists audit records across all resources.
func (h *EntryHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseTimeQuery(r, "from", false)
	if err != nil {
		writeDomainError(w, r, "invalid filter", err)
		return
	}
	to, err := parseTimeQuery(r, "to", true)
	if err != nil {
		writeDomainError(w, r, "invalid filter", err)
		return
	}

	logs, err := h.queryUC.ListAuditLogs(r.Context(), domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		StartDate:    from,
		EndDate:      to,
		Limit:        parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// Stats aggregates entries over the whole filter, not just one page.
func (h *EntryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEntryFilter(r)
	if err != nil {
		writeDomainError(w, r, "invalid filter", err)
		return
	}

	stats, err := h.queryUC.Stats(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, "failed to compute stats", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromDomain(stats))
}
