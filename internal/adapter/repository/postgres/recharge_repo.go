package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

const rechargeColumns = `id, user_id, amount, payment_method, payment_reference, proof_image, status,
	reviewed_by, review_note, reviewed_at, entry_id, created_at, updated_at`

// RechargeRepository implements usecase.RechargeRepository.
type RechargeRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewRechargeRepository creates a new RechargeRepository.
func NewRechargeRepository(db generated.DBTX) *RechargeRepository {
	return &RechargeRepository{db: db, queries: generated.New(db)}
}

// Create stores a new pending request.
func (r *RechargeRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.RechargeRequest) error {
	err := generated.New(pgxTx(tx)).CreateRechargeRequest(ctx, generated.CreateRechargeRequestParams{
		ID:               req.ID,
		UserID:           req.UserID,
		Amount:           decimalToNumeric(req.Amount),
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		ProofImage:       req.ProofImage,
		Status:           string(req.Status),
		CreatedAt:        timeToPgTimestamptz(req.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(req.UpdatedAt),
	})
	return mapError(err, nil)
}

// GetByID retrieves a request by ID.
func (r *RechargeRepository) GetByID(ctx context.Context, id string) (*domain.RechargeRequest, error) {
	row, err := r.queries.GetRechargeRequestByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrRechargeNotFound)
	}
	return rowToRecharge(row), nil
}

// GetByIDForUpdate retrieves a request and locks its row.
func (r *RechargeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RechargeRequest, error) {
	row, err := generated.New(pgxTx(tx)).GetRechargeRequestByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrRechargeNotFound)
	}
	return rowToRecharge(row), nil
}

// CountPending counts the user's requests still awaiting review.
func (r *RechargeRepository) CountPending(ctx context.Context, tx usecase.Transaction, userID string) (int, error) {
	n, err := generated.New(pgxTx(tx)).CountPendingRechargeRequests(ctx, userID)
	if err != nil {
		return 0, mapError(err, nil)
	}
	return int(n), nil
}

// UpdateReview records the review outcome. Only PENDING rows are updated.
func (r *RechargeRepository) UpdateReview(ctx context.Context, tx usecase.Transaction, req *domain.RechargeRequest) error {
	n, err := generated.New(pgxTx(tx)).UpdateRechargeReview(ctx, generated.UpdateRechargeReviewParams{
		ID:         req.ID,
		Status:     string(req.Status),
		ReviewedBy: req.ReviewedBy,
		ReviewNote: req.ReviewNote,
		ReviewedAt: optionalTimestamptz(req.ReviewedAt),
		EntryID:    optionalText(req.EntryID),
		UpdatedAt:  timeToPgTimestamptz(req.UpdatedAt),
	})
	if err != nil {
		return mapError(err, nil)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRechargeNotPending, req.ID)
	}
	return nil
}

// List returns requests newest first with the total matching count.
func (r *RechargeRepository) List(ctx context.Context, filter domain.RechargeFilter) ([]*domain.RechargeRequest, int64, error) {
	filter = filter.Normalize()

	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM recharge_requests"+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, nil)
	}

	query := "SELECT " + rechargeColumns + " FROM recharge_requests" + clause +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, 0, mapError(err, nil)
	}
	defer rows.Close()

	var items []*domain.RechargeRequest
	for rows.Next() {
		var row generated.RechargeRequest
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Amount,
			&row.PaymentMethod,
			&row.PaymentReference,
			&row.ProofImage,
			&row.Status,
			&row.ReviewedBy,
			&row.ReviewNote,
			&row.ReviewedAt,
			&row.EntryID,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, 0, mapError(err, nil)
		}
		items = append(items, rowToRecharge(row))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, nil)
	}

	return items, total, nil
}

func rowToRecharge(row generated.RechargeRequest) *domain.RechargeRequest {
	return &domain.RechargeRequest{
		ID:               row.ID,
		UserID:           row.UserID,
		Amount:           numericToDecimal(row.Amount),
		PaymentMethod:    row.PaymentMethod,
		PaymentReference: row.PaymentReference,
		ProofImage:       row.ProofImage,
		Status:           domain.RechargeStatus(row.Status),
		ReviewedBy:       row.ReviewedBy,
		ReviewNote:       row.ReviewNote,
		ReviewedAt:       timestamptzPtr(row.ReviewedAt),
		EntryID:          textPtr(row.EntryID),
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}
