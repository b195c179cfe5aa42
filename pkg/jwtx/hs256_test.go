package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHS256RoundTrip(t *testing.T) {
	h, err := NewHS256([]byte("test-secret"), "mockbank")
	require.NoError(t, err)

	claims := NewAccessClaims("user-1", "sess-1", []string{ScopeBanking}, "mockbank", time.Minute, time.Now())
	signed, err := h.Sign(claims)
	require.NoError(t, err)

	parsed, err := h.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", parsed.Subject)
	require.Equal(t, "sess-1", parsed.SID)
	require.True(t, parsed.HasScope(ScopeBanking))
	require.False(t, parsed.HasScope(ScopeTwoFactor))
	require.NotEmpty(t, parsed.ID, "jti must be set")
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	a, err := NewHS256([]byte("secret-a"), "mockbank")
	require.NoError(t, err)
	b, err := NewHS256([]byte("secret-b"), "mockbank")
	require.NoError(t, err)

	signed, err := a.Sign(NewAccessClaims("user-1", "sess-1", nil, "mockbank", time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = b.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256RejectsExpired(t *testing.T) {
	h, err := NewHS256([]byte("test-secret"), "mockbank")
	require.NoError(t, err)

	signed, err := h.Sign(NewAccessClaims("user-1", "sess-1", nil, "mockbank", time.Minute, time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	_, err = h.Parse(signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256RejectsWrongIssuer(t *testing.T) {
	h, err := NewHS256([]byte("test-secret"), "mockbank")
	require.NoError(t, err)

	signed, err := h.Sign(NewAccessClaims("user-1", "sess-1", nil, "someone-else", time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = h.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256RejectsUnsignedAlg(t *testing.T) {
	h, err := NewHS256([]byte("test-secret"), "mockbank")
	require.NoError(t, err)

	claims := NewAccessClaims("user-1", "sess-1", nil, "mockbank", time.Minute, time.Now())
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = h.Parse(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewHS256RequiresSecret(t *testing.T) {
	_, err := NewHS256(nil, "mockbank")
	require.Error(t, err)
}
