package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/policy"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

type OrganizationService struct {
	Store   store.Store
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
}

type CreateOrganizationParams struct {
	Name string `json:"name" validate:"required,max=200"`
	Plan string `json:"plan" validate:"required,oneof=solo team business"`
}

// OrganizationView is an organization with its seat usage spelled out.
type OrganizationView struct {
	Organization       domain.Organization
	AvailableSeats     int
	PendingInvitations int
}

// Create signs up a new organization owned by the caller, who takes the
// first seat.
func (s *OrganizationService) Create(ctx context.Context, id authz.Identity, p CreateOrganizationParams) (domain.Organization, domain.Member, error) {
	log := slogx.FromContext(ctx)

	if err := validateParams(p); err != nil {
		return domain.Organization{}, domain.Member{}, err
	}
	plan, err := domain.ParsePlan(p.Plan)
	if err != nil {
		return domain.Organization{}, domain.Member{}, domain.ErrInvalidPlan
	}

	now := s.Clock.Now().UTC()
	org := domain.Organization{
		ID:           idx.New().String(),
		Name:         p.Name,
		OwnerUserID:  id.UserID,
		Plan:         plan,
		MaxSeats:     plan.MaxSeats(),
		CurrentSeats: 1,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	owner := domain.Member{
		ID:             idx.New().String(),
		OrganizationID: org.ID,
		UserID:         id.UserID,
		Email:          id.Email,
		Name:           id.Name,
		Role:           domain.RoleOwner,
		Status:         domain.MemberActive,
		JoinedAt:       now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// The user mapping references the organization, so it goes last. A
		// second signup by the same user rolls the whole thing back.
		if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
			return err
		}
		if err := tx.Members().CreateMember(ctx, owner); err != nil {
			return err
		}
		if err := tx.UserOrganizations().MapUser(ctx, id.UserID, org.ID, now); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ErrAlreadyInOrganization
			}
			return err
		}
		return appendEvent(ctx, tx, now, domain.EventMembershipChanged, org.ID, domain.MembershipEventPayload{
			Change:         domain.MembershipJoined,
			OrganizationID: org.ID,
			MemberID:       owner.ID,
			UserID:         owner.UserID,
			Role:           owner.Role,
			ActorUserID:    id.UserID,
			CurrentSeats:   org.CurrentSeats,
		})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyInOrganization) {
			log.Error("failed to create organization", slog.Any("error", err))
		}
		return domain.Organization{}, domain.Member{}, record(s.Metrics, "organization.create", err)
	}

	log.Info("organization created",
		slog.String("organization_id", org.ID),
		slog.String("owner_user_id", id.UserID),
		slog.String("plan", string(plan)),
	)
	return org, owner, record(s.Metrics, "organization.create", nil)
}

// Get returns the caller's organization with fresh seat figures.
func (s *OrganizationService) Get(ctx context.Context, sc authz.Scope) (OrganizationView, error) {
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, sc.Organization.ID)
	if err != nil {
		return OrganizationView{}, fmt.Errorf("load organization: %w", err)
	}

	pending, err := outstandingInvitations(ctx, s.Store.Invitations(), org.ID, s.Clock.Now())
	if err != nil {
		return OrganizationView{}, err
	}

	return OrganizationView{
		Organization:       org,
		AvailableSeats:     max(policy.AvailableSeats(&org), 0),
		PendingInvitations: len(pending),
	}, nil
}

type UpdateSettingsParams struct {
	RequireAdminApprovalForDeletes *bool `json:"require_admin_approval_for_deletes"`
	AllowMembersToInvite           *bool `json:"allow_members_to_invite"`
}

// UpdateSettings applies a partial settings update. Only the owner passes
// the role gate for this.
func (s *OrganizationService) UpdateSettings(ctx context.Context, sc authz.Scope, p UpdateSettingsParams) (domain.Organization, error) {
	now := s.Clock.Now().UTC()

	var updated domain.Organization
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganizationByID(ctx, sc.Organization.ID)
		if err != nil {
			return err
		}

		settings := org.Settings
		if p.RequireAdminApprovalForDeletes != nil {
			settings.RequireAdminApprovalForDeletes = *p.RequireAdminApprovalForDeletes
		}
		if p.AllowMembersToInvite != nil {
			settings.AllowMembersToInvite = *p.AllowMembersToInvite
		}

		if err := tx.Organizations().UpdateSettings(ctx, org.ID, settings, now); err != nil {
			return err
		}
		org.Settings = settings
		org.UpdatedAt = now
		updated = org
		return nil
	})
	if err != nil {
		return domain.Organization{}, record(s.Metrics, "organization.settings", err)
	}

	slogx.FromContext(ctx).Info("organization settings updated",
		slog.String("organization_id", updated.ID),
		slog.Bool("allow_members_to_invite", updated.Settings.AllowMembersToInvite),
		slog.Bool("require_admin_approval_for_deletes", updated.Settings.RequireAdminApprovalForDeletes),
	)
	return updated, record(s.Metrics, "organization.settings", nil)
}

// Permissions returns what the caller may do, for UIs to render.
func (s *OrganizationService) Permissions(sc authz.Scope) map[policy.Capability]bool {
	return policy.Capabilities(sc.Membership.Role, &sc.Organization)
}

// VerifySeats checks the stored seat counter against the number of active
// memberships.
func (s *OrganizationService) VerifySeats(ctx context.Context, orgID string) error {
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, orgID)
	if err != nil {
		return err
	}
	active, err := s.Store.Members().CountActiveMembers(ctx, orgID)
	if err != nil {
		return err
	}
	if active != org.CurrentSeats {
		return fmt.Errorf("%w: organization %s has current_seats=%d but %d active members",
			policy.ErrSeatAccounting, orgID, org.CurrentSeats, active)
	}
	return nil
}
