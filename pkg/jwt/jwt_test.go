package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
)

const testSecret = "test-secret-key-at-least-32-bytes-long"

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newManager(ttl time.Duration) *Manager {
	m := NewManager(&Config{Secret: testSecret, Issuer: "ktv", TokenExpiry: ttl})
	m.now = func() time.Time { return t0 }
	return m
}

func TestNewManager_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultSessionTTL, NewManager(&Config{Secret: testSecret}).SessionTTL())
}

func TestIssueAndParse(t *testing.T) {
	m := newManager(time.Hour)

	tok, err := m.Issue("user-1", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), tok.ExpiresAt)

	claims, err := m.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "ktv", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	other, err := m.Issue("user-1", "ADMIN")
	require.NoError(t, err)
	assert.NotEqual(t, tok.Value, other.Value, "token ids are unique")
}

func TestIssueWithTTL(t *testing.T) {
	m := newManager(time.Hour)

	tok, err := m.IssueWithTTL("user-1", "PASSWORD_RESET", 15*time.Minute)
	require.NoError(t, err)
	claims, err := m.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "PASSWORD_RESET", claims.Role)
	assert.True(t, t0.Add(15*time.Minute).Equal(claims.ExpiresAt.Time))

	m.now = func() time.Time { return t0.Add(16 * time.Minute) }
	_, err = m.Parse(tok.Value)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestParse_Rejections(t *testing.T) {
	m := newManager(time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager(&Config{Secret: "another-secret-0123456789abcdef", Issuer: "ktv"})
		tok, err := other.Issue("user-1", "USER")
		require.NoError(t, err)
		_, err = m.Parse(tok.Value)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewManager(&Config{Secret: testSecret, Issuer: "someone-else"})
		tok, err := other.Issue("user-1", "USER")
		require.NoError(t, err)
		_, err = m.Parse(tok.Value)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(raw)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("missing expiry", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "ktv"},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = m.Parse(raw)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}
