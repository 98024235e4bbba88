package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity provider's access-token claims. Only the fields the
// organization service reads are modelled; everything else is ignored.
type Claims struct {
	jwt.RegisteredClaims

	// Email bound to the account. Invitations are matched against it.
	Email string `json:"email,omitempty"`

	// Username for the authenticated user
	Username string `json:"username,omitempty"`

	// PreferredName is the display name for the user
	PreferredName string `json:"preferred_name,omitempty"`

	// Scopes granted by the identity provider, "profile:read" etc.
	Scopes []string `json:"scopes,omitempty"`
}

// DisplayName picks the best human readable name the token carries.
func (c *Claims) DisplayName() string {
	switch {
	case c.PreferredName != "":
		return c.PreferredName
	case c.Username != "":
		return c.Username
	default:
		return c.Email
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiryAt checks exp and nbf against now with a small grace period
// for clock skew between us and the identity provider.
func (c *Claims) ValidateExpiryAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
