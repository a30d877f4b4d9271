package postgres

import (
	"context"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
)

// UserRepository maintains the local copy of user profiles used by search.
type UserRepository struct {
	db generated.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db generated.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts or refreshes a profile
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, phone, email, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, phone = EXCLUDED.phone, email = EXCLUDED.email, updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query, user.ID, user.Name, user.Phone, user.Email)
	return mapError(err, nil)
}

// GetByID retrieves a profile by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, name, phone, email FROM users WHERE id = $1`

	var user domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Email,
	)
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}

	return &user, nil
}
