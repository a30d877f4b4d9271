package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
)

const entryViewColumns = `e.id, e.wallet_id, e.user_id, e.entry_type, e.transaction_type, e.status, e.amount,
	e.balance_before, e.balance_after, e.locked_before, e.locked_after, e.affects_locked,
	e.reference_table, e.reference_id, e.reversal_of, e.description, e.meta, e.wallet_version, e.created_at,
	COALESCE(u.name, ''), COALESCE(u.phone, ''), COALESCE(u.email, '')`

const entryViewFrom = ` FROM ledger_entries e LEFT JOIN users u ON u.id = e.user_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ReportRepository implements usecase.ReportRepository with dynamically built SQL.
type ReportRepository struct {
	db generated.DBTX
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db generated.DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// buildEntryWhere renders the filter as a WHERE clause with positional arguments.
func buildEntryWhere(filter domain.EntryFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != "" {
		add("e.user_id = $%d", filter.UserID)
	}
	if filter.TransactionType != "" {
		add("e.transaction_type = $%d", string(filter.TransactionType))
	}
	if filter.EntryType != "" {
		add("e.entry_type = $%d", string(filter.EntryType))
	}
	if filter.Status != "" {
		add("e.status = $%d", string(filter.Status))
	}
	if filter.From != nil {
		add("e.created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("e.created_at <= $%d", *filter.To)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+likeEscaper.Replace(s)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(u.name ILIKE $%d OR u.phone ILIKE $%d OR u.email ILIKE $%d)", n, n, n))
	}

	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListEntries returns one page of joined entries, newest first, plus the total count.
func (r *ReportRepository) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.EntryView, int64, error) {
	filter = filter.Normalize()
	clause, args := buildEntryWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+entryViewFrom+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, nil)
	}

	query := "SELECT " + entryViewColumns + entryViewFrom + clause +
		fmt.Sprintf(" ORDER BY e.created_at DESC, e.seq DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, 0, mapError(err, nil)
	}
	defer rows.Close()

	var items []*domain.EntryView
	for rows.Next() {
		var (
			row                generated.LedgerEntry
			name, phone, email string
		)
		if err := rows.Scan(
			&row.ID,
			&row.WalletID,
			&row.UserID,
			&row.EntryType,
			&row.TransactionType,
			&row.Status,
			&row.Amount,
			&row.BalanceBefore,
			&row.BalanceAfter,
			&row.LockedBefore,
			&row.LockedAfter,
			&row.AffectsLocked,
			&row.ReferenceTable,
			&row.ReferenceID,
			&row.ReversalOf,
			&row.Description,
			&row.Meta,
			&row.WalletVersion,
			&row.CreatedAt,
			&name,
			&phone,
			&email,
		); err != nil {
			return nil, 0, mapError(err, nil)
		}
		items = append(items, &domain.EntryView{
			Entry:     *rowToEntry(row),
			UserName:  name,
			UserPhone: phone,
			UserEmail: email,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, nil)
	}

	return items, total, nil
}

// Stats aggregates matching entries grouped by transaction and entry type.
// Without a status filter only SUCCESS entries are counted.
func (r *ReportRepository) Stats(ctx context.Context, filter domain.EntryFilter) ([]domain.StatsRow, error) {
	if filter.Status == "" {
		filter.Status = domain.EntryStatusSuccess
	}
	clause, args := buildEntryWhere(filter)

	query := "SELECT e.transaction_type, e.entry_type, COUNT(*), COALESCE(SUM(e.amount), 0)" +
		entryViewFrom + clause +
		" GROUP BY e.transaction_type, e.entry_type ORDER BY e.transaction_type, e.entry_type"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, nil)
	}
	defer rows.Close()

	var out []domain.StatsRow
	for rows.Next() {
		var (
			txType, entryType string
			count             int64
			total             pgtype.Numeric
		)
		if err := rows.Scan(&txType, &entryType, &count, &total); err != nil {
			return nil, mapError(err, nil)
		}
		out = append(out, domain.StatsRow{
			TransactionType: domain.TransactionType(txType),
			EntryType:       domain.EntryType(entryType),
			Count:           count,
			Total:           numericToDecimal(total),
		})
	}

	return out, mapError(rows.Err(), nil)
}
