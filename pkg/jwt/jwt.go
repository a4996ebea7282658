// Package jwt issues and verifies HS256 bearer tokens.
//
// A token carries the user ID and a role. Session tokens use the configured
// TTL; callers can issue shorter lived tokens with a purpose-specific role
// (e.g. a password reset) that session middleware will not accept.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
)

// DefaultSessionTTL applies when Config.TokenExpiry is zero.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claims are the token payload.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Token is a signed token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Config holds manager settings.
type Config struct {
	Secret      string
	Issuer      string
	TokenExpiry time.Duration
}

// Manager signs and verifies tokens with a shared secret.
type Manager struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewManager creates a Manager.
func NewManager(cfg *Config) *Manager {
	ttl := cfg.TokenExpiry
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		sessionTTL: ttl,
		now:        time.Now,
	}
}

// SessionTTL is the lifetime of tokens from Issue.
func (m *Manager) SessionTTL() time.Duration {
	return m.sessionTTL
}

// Issue signs a session token.
func (m *Manager) Issue(userID, role string) (Token, error) {
	return m.IssueWithTTL(userID, role, m.sessionTTL)
}

// IssueWithTTL signs a token that expires after ttl.
func (m *Manager) IssueWithTTL(userID, role string, ttl time.Duration) (Token, error) {
	now := m.now().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Parse verifies signature, issuer and lifetime. Failures are
// ErrTokenExpired or ErrTokenInvalid.
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired.WithError(err)
	case err != nil:
		return nil, apperrors.ErrTokenInvalid.WithError(err)
	case claims.UserID == "":
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}
