package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// AuditRepository implements audit log persistence
type AuditRepository struct {
	db generated.DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateTx inserts an audit log entry in the caller's transaction
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	before, err := marshalJSON(log.BeforeState)
	if err != nil {
		return err
	}
	after, err := marshalJSON(log.AfterState)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, action, resource_type, resource_id,
			ip_address, user_agent, request_id,
			before_state, after_state, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = pgxTx(tx).Exec(ctx, query,
		log.ID,
		log.UserID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.IPAddress,
		log.UserAgent,
		log.RequestID,
		before,
		after,
		log.Status,
		log.ErrorMessage,
		log.CreatedAt,
	)

	return mapError(err, nil)
}

// List retrieves audit logs with filtering, newest first
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, user_id, action, resource_type, resource_id,
		       ip_address, user_agent, request_id,
		       before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []any{}

	arg := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(cond, len(args))
	}

	if filter.UserID != "" {
		arg(` AND user_id = $%d`, filter.UserID)
	}
	if filter.Action != "" {
		arg(` AND action = $%d`, filter.Action)
	}
	if filter.ResourceType != "" {
		arg(` AND resource_type = $%d`, filter.ResourceType)
	}
	if filter.ResourceID != "" {
		arg(` AND resource_id = $%d`, filter.ResourceID)
	}
	if filter.StartDate != nil {
		arg(` AND created_at >= $%d`, *filter.StartDate)
	}
	if filter.EndDate != nil {
		arg(` AND created_at <= $%d`, *filter.EndDate)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		arg(` LIMIT $%d`, filter.Limit)
	}
	if filter.Offset > 0 {
		arg(` OFFSET $%d`, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, nil)
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var beforeStateJSON, afterStateJSON []byte

		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.Action,
			&log.ResourceType,
			&log.ResourceID,
			&log.IPAddress,
			&log.UserAgent,
			&log.RequestID,
			&beforeStateJSON,
			&afterStateJSON,
			&log.Status,
			&log.ErrorMessage,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, mapError(err, nil)
		}

		if beforeStateJSON != nil {
			_ = json.Unmarshal(beforeStateJSON, &log.BeforeState)
		}

		if afterStateJSON != nil {
			_ = json.Unmarshal(afterStateJSON, &log.AfterState)
		}

		logs = append(logs, &log)
	}

	return logs, mapError(rows.Err(), nil)
}
