package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/policy"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

type ctxKey int

const (
	ctxKeyIdentity ctxKey = iota
	ctxKeyScope
)

func identityFrom(ctx context.Context) (authz.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(authz.Identity)
	return id, ok
}

func scopeFrom(ctx context.Context) (authz.Scope, bool) {
	sc, ok := ctx.Value(ctxKeyScope).(authz.Scope)
	return sc, ok
}

// allowedRoles picks the role allow-list for a request once the
// organization is known.
type allowedRoles func(org domain.Organization) []domain.Role

// rolesWith returns the roles the permission matrix grants c in the
// caller's organization, after plan masking and settings.
func rolesWith(c policy.Capability) allowedRoles {
	return func(org domain.Organization) []domain.Role {
		return policy.RolesFor(c, &org)
	}
}

// authenticate is the identity gate. It records the user on the context for
// rate limiting and logging.
func authenticate(g *authz.Gates, action string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer, _ := httpx.BearerToken(r)

			id, err := g.ResolveIdentity(r.Context(), action, bearer)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, id)
			ctx = httpx.WithUserID(ctx, id.UserID)
			ctx = slogx.With(ctx, "user_id", id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveOrganization is the organization gate. It must run after
// authenticate.
func resolveOrganization(g *authz.Gates, action string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identityFrom(r.Context())
			if !ok {
				writeError(w, r, domain.ErrUnauthenticated)
				return
			}

			sc, err := g.ResolveOrganization(r.Context(), action, id)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyScope, sc)
			ctx = slogx.With(ctx, "organization_id", sc.Organization.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireRole is the role gate. It must run after resolveOrganization.
func requireRole(g *authz.Gates, action string, roles allowedRoles, sensitive bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc, ok := scopeFrom(r.Context())
			if !ok {
				writeError(w, r, domain.ErrNoOrganization)
				return
			}

			if err := g.RequireRole(r.Context(), action, sc, roles(sc.Organization), sensitive); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
