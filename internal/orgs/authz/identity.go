package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

// Identity is what the identity provider vouches for.
type Identity struct {
	UserID string
	Email  string // lower-case
	Name   string
}

// IdentityVerifier turns a bearer credential into an Identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, bearer string) (Identity, error)
}

// JWTVerifier verifies identity provider access tokens with a jwtx.Verifier.
type JWTVerifier struct {
	Tokens jwtx.Verifier
}

// Verify wraps every failure in domain.ErrUnauthenticated. A token without
// an email is rejected since invitations are addressed by email.
func (v JWTVerifier) Verify(_ context.Context, bearer string) (Identity, error) {
	if bearer == "" {
		return Identity{}, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthenticated)
	}

	claims, err := v.Tokens.Verify(bearer)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return Identity{}, fmt.Errorf("%w: token has no email claim", domain.ErrUnauthenticated)
	}

	return Identity{
		UserID: claims.Subject,
		Email:  email,
		Name:   claims.DisplayName(),
	}, nil
}
