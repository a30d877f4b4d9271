package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryFilter narrows ledger queries. Zero values mean "no constraint".
type EntryFilter struct {
	From            *time.Time
	To              *time.Time
	UserID          string
	Search          string
	TransactionType TransactionType
	EntryType       EntryType
	Status          EntryStatus
	Page            int
	PageSize        int
}

// Normalize applies pagination defaults and limits.
func (f EntryFilter) Normalize() EntryFilter {
	f.Page, f.PageSize = ValidatePagination(f.Page, f.PageSize)
	return f
}

// Offset returns the row offset of the current page.
func (f EntryFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// EntryView is a ledger entry joined with the owner's profile for listings.
type EntryView struct {
	Entry
	UserName  string
	UserPhone string
	UserEmail string
}

// PageSummary totals the SUCCESS entries of a single page only.
type PageSummary struct {
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
	Net         decimal.Decimal
	Count       int
}

// EntryPage is one page of a filtered ledger listing.
type EntryPage struct {
	Items      []*EntryView
	Summary    PageSummary
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
	HasNext    bool
}

// NewEntryPage computes the paging fields and the page summary.
func NewEntryPage(items []*EntryView, total int64, page, pageSize int) *EntryPage {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	if items == nil {
		items = []*EntryView{}
	}

	return &EntryPage{
		Items:      items,
		Summary:    Summarize(items),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// Summarize totals SUCCESS credits and debits. FAILED, PENDING and REVERSED rows are skipped.
func Summarize(items []*EntryView) PageSummary {
	sum := PageSummary{
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}

	for _, it := range items {
		if it.Status != EntryStatusSuccess {
			continue
		}
		sum.Count++
		if it.EntryType == EntryTypeCredit {
			sum.TotalCredit = sum.TotalCredit.Add(it.Amount)
		} else {
			sum.TotalDebit = sum.TotalDebit.Add(it.Amount)
		}
	}

	sum.Net = sum.TotalCredit.Sub(sum.TotalDebit)
	return sum
}

// StatsRow aggregates one (transaction type, entry type) bucket.
type StatsRow struct {
	TransactionType TransactionType
	EntryType       EntryType
	Count           int64
	Total           decimal.Decimal
}

// Stats is the aggregate view over a whole filter, not just one page.
type Stats struct {
	GeneratedAt time.Time
	Rows        []StatsRow
	TotalCredit decimal.Decimal
	TotalDebit  decimal.Decimal
	Count       int64
}

// NewStats folds rows into totals.
func NewStats(rows []StatsRow, now time.Time) *Stats {
	st := &Stats{
		GeneratedAt: now,
		Rows:        rows,
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}
	if st.Rows == nil {
		st.Rows = []StatsRow{}
	}

	for _, r := range rows {
		st.Count += r.Count
		if r.EntryType == EntryTypeCredit {
			st.TotalCredit = st.TotalCredit.Add(r.Total)
		} else {
			st.TotalDebit = st.TotalDebit.Add(r.Total)
		}
	}
	return st
}

// ReconciliationResult reports whether a wallet matches its ledger.
type ReconciliationResult struct {
	Problems       []string
	WalletID       string
	UserID         string
	Balance        decimal.Decimal
	LockedBalance  decimal.Decimal
	LedgerBalance  decimal.Decimal
	LedgerLocked   decimal.Decimal
	EntriesChecked int
	Consistent     bool
}
