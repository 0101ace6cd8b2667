// Package session resolves the persisted login: the bearer token and the
// identity it was issued for.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims is the subset of token claims the client reads.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// identity prefers the email claim and falls back to the subject.
func (c *Claims) identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

func (c *Claims) expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}

// parseClaims decodes the token without checking its signature; the backend
// verifies tokens, the client only reads them.
func parseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
