// Package jwtx wraps golang-jwt with the claim shape and HS256 helpers
// used by the mock bank's token endpoint and its bearer middleware.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope values carried in access tokens. The primary token minted by the
// password grant only carries the two-factor scope; full banking access
// requires the secondary token.
const (
	ScopeTwoFactor = "TWO_FACTOR"
	ScopeBanking   = "BANKING"
)

// Claims are the access-token claims minted by the mock bank.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the banking session identifier the token is bound to.
	SID string `json:"sid,omitempty"`

	// Scopes limits what the token may reach.
	Scopes []string `json:"scopes,omitempty"`
}

// HasScope reports whether the token carries the given scope.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// NewAccessClaims builds minimally-correct claims for an access token.
func NewAccessClaims(subject, sid string, scopes []string, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:    sid,
		Scopes: scopes,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
