// Package authz implements the request authorization gates: identity,
// organization membership and role. Each gate short-circuits on failure
// and records its decision in the audit log.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

// Scope is the request-scoped result of the identity and organization gates.
type Scope struct {
	Identity     Identity
	Organization domain.Organization
	Membership   domain.Member
}

// Gates holds the dependencies of the three gates.
type Gates struct {
	Verifier IdentityVerifier
	Store    store.Store
	Clock    clockwork.Clock
	Metrics  *metrics.Metrics
}

// ResolveIdentity is the first gate.
func (g *Gates) ResolveIdentity(ctx context.Context, action, bearer string) (Identity, error) {
	id, err := g.Verifier.Verify(ctx, bearer)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			err = fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
		}
		g.deny(ctx, "identity", action, "", "", "unauthenticated", slog.String("error", err.Error()))
		return Identity{}, err
	}
	g.Metrics.GateDecision("identity", slogx.OutcomeAllow, "")
	return id, nil
}

// ResolveOrganization is the second gate. It finds the single organization
// the user belongs to and checks the membership is active.
func (g *Gates) ResolveOrganization(ctx context.Context, action string, id Identity) (Scope, error) {
	log := slogx.FromContext(ctx)

	orgID, err := g.Store.UserOrganizations().GetOrganizationIDForUser(ctx, id.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		g.deny(ctx, "organization", action, id.UserID, "", "no_organization")
		return Scope{}, domain.ErrNoOrganization
	case err != nil:
		return Scope{}, fmt.Errorf("resolve organization for user %s: %w", id.UserID, err)
	}

	org, err := g.Store.Organizations().GetOrganizationByID(ctx, orgID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Error("user mapped to missing organization",
			"user_id", id.UserID,
			"organization_id", orgID,
			"integrity", true,
		)
		g.deny(ctx, "organization", action, id.UserID, orgID, "organization_not_found")
		return Scope{}, domain.ErrOrganizationNotFound
	case err != nil:
		return Scope{}, fmt.Errorf("load organization %s: %w", orgID, err)
	}

	member, err := g.Store.Members().GetMemberByUserID(ctx, org.ID, id.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		g.deny(ctx, "organization", action, id.UserID, org.ID, "not_a_member")
		return Scope{}, domain.ErrNotAMember
	case err != nil:
		return Scope{}, fmt.Errorf("load membership: %w", err)
	}

	if !member.IsActive() {
		g.deny(ctx, "organization", action, id.UserID, org.ID, "member_not_active",
			slog.String("status", string(member.Status)))
		return Scope{}, domain.ErrMemberNotActive
	}

	// Best effort; a failed touch must not fail the request.
	if err := g.Store.Members().TouchLastActive(ctx, member.ID, g.Clock.Now()); err != nil {
		log.Warn("failed to record member activity", "member_id", member.ID, "error", err)
	}

	g.Metrics.GateDecision("organization", slogx.OutcomeAllow, "")
	return Scope{Identity: id, Organization: org, Membership: member}, nil
}

// RequireRole is the third gate. Sensitive actions are audited on allow too.
func (g *Gates) RequireRole(ctx context.Context, action string, sc Scope, allowed []domain.Role, sensitive bool) error {
	if !slices.Contains(allowed, sc.Membership.Role) {
		err := &domain.InsufficientPermissionsError{Required: allowed, Actual: sc.Membership.Role}
		g.deny(ctx, "role", action, sc.Identity.UserID, sc.Organization.ID, "insufficient_permissions",
			slog.Any("required_roles", domain.RoleStrings(allowed)),
			slog.String("actual_role", string(sc.Membership.Role)),
		)
		return err
	}

	g.Metrics.GateDecision("role", slogx.OutcomeAllow, "")
	if sensitive {
		slogx.AuditAt(ctx, g.Clock.Now().UTC(), slogx.AuditEvent{
			Action:         action,
			UserID:         sc.Identity.UserID,
			OrganizationID: sc.Organization.ID,
			Outcome:        slogx.OutcomeAllow,
			Attrs:          []slog.Attr{slog.String("role", string(sc.Membership.Role))},
		})
	}
	return nil
}

func (g *Gates) deny(ctx context.Context, gate, action, userID, orgID, reason string, attrs ...slog.Attr) {
	g.Metrics.GateDecision(gate, slogx.OutcomeDeny, reason)
	slogx.AuditAt(ctx, g.Clock.Now().UTC(), slogx.AuditEvent{
		Action:         action,
		UserID:         userID,
		OrganizationID: orgID,
		Outcome:        slogx.OutcomeDeny,
		Reason:         reason,
		Attrs:          append([]slog.Attr{slog.String("gate", gate)}, attrs...),
	})
}
