package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
)

// TokenClaims is the informational content of an access token.
//
// The signature is NOT verified: the client does not hold the signing key.
// Use these claims for display only; authorization is always decided by the
// backend through GET /auth/me.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Role is the role the token was issued for
	Role string `json:"role,omitempty"`
}

// Email returns the subject, which the backend sets to the user's email
func (c *TokenClaims) Email() string {
	return c.Subject
}

// Expiry returns the expiry time, or the zero time when absent
func (c *TokenClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ExpiredAt reports whether the token had expired at t
func (c *TokenClaims) ExpiredAt(t time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !t.Before(exp)
}

// ParseTokenClaims decodes token's claims without verifying its signature.
func ParseTokenClaims(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, tberrors.New(tberrors.ErrCodeAuthTokenMalformed, "token is empty")
	}

	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, tberrors.Wrap(tberrors.ErrCodeAuthTokenMalformed, "token is not a valid JWT", err)
	}
	return claims, nil
}
