package auth

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestVerifier() *Verifier {
	return NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "inventory-ledger"})
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := newTestVerifier()
	id := Identity{TenantID: uuid.New(), UserID: uuid.New(), Username: "cashier"}

	token, err := v.Issue(id, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestVerifier_Rejects(t *testing.T) {
	v := newTestVerifier()
	id := Identity{TenantID: uuid.New(), UserID: uuid.New()}

	t.Run("expired", func(t *testing.T) {
		token, err := v.Issue(id, time.Hour)
		require.NoError(t, err)
		later := newTestVerifier()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewVerifier(config.JWTConfig{Secret: "another-secret-another-secret-xx", Issuer: "inventory-ledger"})
		token, err := other.Issue(id, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "someone-else"})
		token, err := other.Issue(id, time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing tenant", func(t *testing.T) {
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "inventory-ledger",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			UserID: uuid.NewString(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrMissingTenantID)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{TenantID: "x", UserID: "y"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
