package domain

import (
	"context"
	"errors"
)

// User is the caller identity and the read-only profile joined by ledger search.
// Profiles are owned by the user service; the ledger never writes them.
type User struct {
	ID    string
	Name  string
	Phone string
	Email string
	Role  Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin can post adjustments, reverse entries and review recharges
	RoleAdmin Role = "admin"

	// RoleOperator is a trusted internal service (commission engine, order service)
	RoleOperator Role = "operator"

	// RoleMember is a platform member who can only see and top up their own wallet
	RoleMember Role = "member"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleMember:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanPost checks if the role can post ledger entries for any wallet
func (r Role) CanPost() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanReview checks if the role can approve or reject recharges and reverse entries
func (r Role) CanReview() bool {
	return r == RoleAdmin
}

// CanAccessWallet checks if a caller may read the wallet of userID
func (u *User) CanAccessWallet(userID string) bool {
	if u == nil {
		return false
	}
	return u.Role.CanPost() || u.ID == userID
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}
