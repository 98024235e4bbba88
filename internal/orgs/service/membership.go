package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/policy"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

type MembershipService struct {
	Store   store.Store
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
}

type ChangeRoleParams struct {
	Role string `json:"role" validate:"required"`
}

// List returns every membership of the caller's organization, owner first.
func (s *MembershipService) List(ctx context.Context, sc authz.Scope) ([]domain.Member, error) {
	return s.Store.Members().ListMembers(ctx, sc.Organization.ID)
}

// ChangeRole moves a member between admin and member. Seats are unaffected.
func (s *MembershipService) ChangeRole(ctx context.Context, sc authz.Scope, memberID string, p ChangeRoleParams) (domain.Member, error) {
	if err := validateParams(p); err != nil {
		return domain.Member{}, err
	}
	role, err := domain.ParseRole(p.Role)
	if err != nil || !role.Assignable() {
		return domain.Member{}, record(s.Metrics, "member.change_role", domain.ErrInvalidRole)
	}

	now := s.Clock.Now().UTC()
	var (
		target   domain.Member
		previous domain.Role
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		target, err = getMember(ctx, tx, sc.Organization.ID, memberID)
		if err != nil {
			return err
		}
		if err := policy.CheckTarget(&sc.Membership, &target); err != nil {
			return err
		}

		previous = target.Role
		if previous == role {
			return nil
		}

		if err := tx.Members().UpdateMemberRole(ctx, sc.Organization.ID, target.ID, role); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}
		target.Role = role

		org, err := tx.Organizations().GetOrganizationByID(ctx, sc.Organization.ID)
		if err != nil {
			return err
		}
		return appendEvent(ctx, tx, now, domain.EventMembershipChanged, org.ID, domain.MembershipEventPayload{
			Change:         domain.MembershipRoleChanged,
			OrganizationID: org.ID,
			MemberID:       target.ID,
			UserID:         target.UserID,
			Role:           role,
			PreviousRole:   previous,
			ActorUserID:    sc.Identity.UserID,
			CurrentSeats:   org.CurrentSeats,
		})
	})
	if err != nil {
		return domain.Member{}, record(s.Metrics, "member.change_role", err)
	}

	if previous != role {
		slogx.AuditAt(ctx, now, slogx.AuditEvent{
			Action:         "member.change_role",
			UserID:         sc.Identity.UserID,
			OrganizationID: sc.Organization.ID,
			Outcome:        slogx.OutcomeAllow,
			Attrs: []slog.Attr{
				slog.String("member_id", target.ID),
				slog.String("previous_role", string(previous)),
				slog.String("role", string(role)),
			},
		})
	}
	return target, record(s.Metrics, "member.change_role", nil)
}

// Remove deletes a membership and frees the seat it held. The user is left
// without an organization and may be invited elsewhere.
func (s *MembershipService) Remove(ctx context.Context, sc authz.Scope, memberID string) error {
	now := s.Clock.Now().UTC()

	var target domain.Member
	var seats int
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		target, err = getMember(ctx, tx, sc.Organization.ID, memberID)
		if err != nil {
			return err
		}
		if err := policy.CheckTarget(&sc.Membership, &target); err != nil {
			return err
		}

		org, err := tx.Organizations().GetOrganizationByID(ctx, sc.Organization.ID)
		if err != nil {
			return err
		}
		seats = org.CurrentSeats

		// Only active memberships hold a seat.
		if target.IsActive() {
			if err := policy.CanRemove(&org, &target); err != nil {
				return err
			}
		}

		if err := tx.Members().DeleteMember(ctx, org.ID, target.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}

		if target.IsActive() {
			if err := tx.Organizations().DecrementSeats(ctx, org.ID, org.Version, now); err != nil {
				return seatConflict(err)
			}
			seats--
		}

		if err := tx.UserOrganizations().UnmapUser(ctx, target.UserID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		return appendEvent(ctx, tx, now, domain.EventMembershipChanged, org.ID, domain.MembershipEventPayload{
			Change:         domain.MembershipRemoved,
			OrganizationID: org.ID,
			MemberID:       target.ID,
			UserID:         target.UserID,
			Role:           target.Role,
			ActorUserID:    sc.Identity.UserID,
			CurrentSeats:   seats,
		})
	})
	if err != nil {
		return record(s.Metrics, "member.remove", err)
	}

	slogx.AuditAt(ctx, now, slogx.AuditEvent{
		Action:         "member.remove",
		UserID:         sc.Identity.UserID,
		OrganizationID: sc.Organization.ID,
		Outcome:        slogx.OutcomeAllow,
		Attrs: []slog.Attr{
			slog.String("member_id", target.ID),
			slog.String("removed_user_id", target.UserID),
			slog.Int("current_seats", seats),
		},
	})
	return record(s.Metrics, "member.remove", nil)
}

func getMember(ctx context.Context, tx store.Tx, orgID, memberID string) (domain.Member, error) {
	m, err := tx.Members().GetMemberByID(ctx, orgID, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Member{}, domain.ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	return m, nil
}
