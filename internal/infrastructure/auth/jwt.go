package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/walletledger/internal/domain"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Issuer is stamped on every token and required on verification.
const Issuer = "walletledger"

// Claims represents the JWT claims
type Claims struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name,omitempty"`
	Phone  string      `json:"phone,omitempty"`
	Email  string      `json:"email,omitempty"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// User returns the caller identity carried by the token.
func (c *Claims) User() *domain.User {
	return &domain.User{
		ID:    c.UserID,
		Name:  c.Name,
		Phone: c.Phone,
		Email: c.Email,
		Role:  c.Role,
	}
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate issues a token for user. Services mint operator tokens the same way.
func (m *JWTManager) Generate(user *domain.User) (string, error) {
	if !user.Role.IsValid() {
		return "", fmt.Errorf("%w: role %q", domain.ErrInvalidInput, user.Role)
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Phone:  user.Phone,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return m.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
