package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of the backend access token the front end
// reads. The signature is never checked here; the backend remains the only
// authority and rejects forged tokens on the next call.
type TokenClaims struct {
	Subject string
	Email   string
	Name    string
	Role    string
	UserID  string
	Expiry  time.Time
}

// ParseClaims decodes the claims of a JWT without verifying it.
func ParseClaims(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parse token: %w", err)
	}
	tc := TokenClaims{
		Subject: claimString(claims, "sub"),
		Email:   claimString(claims, "email"),
		Name:    claimString(claims, "name"),
		Role:    claimString(claims, "role"),
		UserID:  claimString(claims, "user_id"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.Expiry = exp.Time
	}
	return tc, nil
}

// ID prefers user_id over sub.
func (tc TokenClaims) ID() string {
	if tc.UserID != "" {
		return tc.UserID
	}
	return tc.Subject
}

// Expired reports whether the token carries an exp in the past.
func (tc TokenClaims) Expired(now time.Time) bool {
	return !tc.Expiry.IsZero() && now.After(tc.Expiry)
}

// claimString reads string and numeric claims alike; numeric ids are common.
func claimString(c jwt.MapClaims, key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
