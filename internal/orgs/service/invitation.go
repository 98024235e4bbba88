package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/policy"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

type InvitationService struct {
	Store   store.Store
	Clock   clockwork.Clock
	Sealer  *cryptox.Sealer
	Metrics *metrics.Metrics

	// LinkBase is the public invitation URL prefix; the token is appended
	// as the last path segment.
	LinkBase string
}

type InviteParams struct {
	Email string `json:"email" validate:"required,email,max=320"`
	Role  string `json:"role" validate:"required,oneof=admin member"`
}

// IssuedInvitation is returned to the inviter. AcceptURL embeds the token.
type IssuedInvitation struct {
	Invitation domain.Invitation
	AcceptURL  string
}

// InvitationDetails is what the public lookup reveals.
type InvitationDetails struct {
	Invitation       domain.Invitation
	OrganizationName string
}

// Accepted is the outcome of a successful accept.
type Accepted struct {
	Organization domain.Organization
	Member       domain.Member
}

// AcceptURL builds the public link for token.
func (s *InvitationService) AcceptURL(token string) string {
	return acceptURL(s.LinkBase, token)
}

func acceptURL(base, token string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(token)
}

// Invite creates a pending invitation. A seat is reserved for every
// outstanding invitation, so inviting fails once pending invitations would
// fill the organization.
func (s *InvitationService) Invite(ctx context.Context, sc authz.Scope, p InviteParams) (IssuedInvitation, error) {
	log := slogx.FromContext(ctx)

	p.Email = normalizeEmail(p.Email)
	if err := validateParams(p); err != nil {
		return IssuedInvitation{}, err
	}
	role, err := domain.ParseRole(p.Role)
	if err != nil || !role.Assignable() {
		return IssuedInvitation{}, domain.ErrInvalidRole
	}
	if err := policy.CheckInvitedRole(sc.Membership.Role, role); err != nil {
		return IssuedInvitation{}, record(s.Metrics, "invitation.create", err)
	}
	email := p.Email

	// 1. Mint the token outside the transaction.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return IssuedInvitation{}, err
	}
	sealed, err := s.Sealer.Seal([]byte(token))
	if err != nil {
		log.Error("failed to seal invitation token", slog.Any("error", err))
		return IssuedInvitation{}, err
	}

	now := s.Clock.Now().UTC()
	inv := domain.Invitation{
		ID:              idx.New().String(),
		TokenHash:       cryptox.FingerprintToken(token),
		TokenSealed:     sealed,
		OrganizationID:  sc.Organization.ID,
		Email:           email,
		Role:            role,
		InvitedByUserID: sc.Identity.UserID,
		InvitedByName:   inviterName(sc),
		Status:          domain.InvitationPending,
		CreatedAt:       now,
		ExpiresAt:       now.Add(domain.InvitationTTL),
		UpdatedAt:       now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Re-read the organization so seat figures are current.
		org, err := tx.Organizations().GetOrganizationByID(ctx, sc.Organization.ID)
		if err != nil {
			return err
		}

		// 3. The email must not already hold an active membership.
		if _, err := tx.Members().GetActiveMemberByEmail(ctx, org.ID, email); err == nil {
			return domain.ErrEmailAlreadyMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// 4. One live invitation per email, and a seat left after reservations.
		outstanding, err := outstandingInvitations(ctx, tx.Invitations(), org.ID, now)
		if err != nil {
			return err
		}
		for _, o := range outstanding {
			if o.Email == email {
				return domain.ErrInvitationPending
			}
		}
		if err := policy.CanInvite(&org, len(outstanding)); err != nil {
			return err
		}

		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			return err
		}
		return appendEvent(ctx, tx, now, domain.EventInvitationCreated, org.ID, invitationPayload(inv, org.Name))
	})
	if err != nil {
		log.Info("invitation rejected",
			slog.String("organization_id", sc.Organization.ID),
			slog.String("role", string(role)),
			slog.Any("error", err),
		)
		return IssuedInvitation{}, record(s.Metrics, "invitation.create", err)
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("organization_id", inv.OrganizationID),
		slog.String("role", string(role)),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return IssuedInvitation{Invitation: inv, AcceptURL: s.AcceptURL(token)}, record(s.Metrics, "invitation.create", nil)
}

// Resend pushes expiry out by another TTL and re-delivers the same link. A
// lapsed invitation no longer holds a seat, so reviving it re-checks capacity.
func (s *InvitationService) Resend(ctx context.Context, sc authz.Scope, invitationID string) (IssuedInvitation, error) {
	now := s.Clock.Now().UTC()

	var inv domain.Invitation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = getInvitation(ctx, tx, sc.Organization.ID, invitationID)
		if err != nil {
			return err
		}
		if err := policy.CheckInvitationOwner(&sc.Membership, &inv); err != nil {
			return err
		}
		if inv.Status != domain.InvitationPending {
			return domain.ErrInvitationInvalid
		}

		org, err := tx.Organizations().GetOrganizationByID(ctx, sc.Organization.ID)
		if err != nil {
			return err
		}

		if inv.EffectiveStatus(now) == domain.InvitationExpired {
			if _, err := tx.Members().GetActiveMemberByEmail(ctx, org.ID, inv.Email); err == nil {
				return domain.ErrEmailAlreadyMember
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			outstanding, err := outstandingInvitations(ctx, tx.Invitations(), org.ID, now)
			if err != nil {
				return err
			}
			for _, o := range outstanding {
				if o.Email == inv.Email {
					return domain.ErrInvitationPending
				}
			}
			if err := policy.CanInvite(&org, len(outstanding)); err != nil {
				return err
			}
		}

		inv.ExpiresAt = now.Add(domain.InvitationTTL)
		inv.UpdatedAt = now
		if err := tx.Invitations().ExtendInvitation(ctx, inv.ID, inv.ExpiresAt, now); err != nil {
			if errors.Is(err, store.ErrStale) {
				return domain.ErrInvitationInvalid
			}
			return err
		}
		return appendEvent(ctx, tx, now, domain.EventInvitationResent, org.ID, invitationPayload(inv, org.Name))
	})
	if err != nil {
		return IssuedInvitation{}, record(s.Metrics, "invitation.resend", err)
	}

	token, err := s.Sealer.Open(inv.TokenSealed)
	if err != nil {
		// The resend itself succeeded; the link is re-delivered by the dispatcher.
		slogx.FromContext(ctx).Error("failed to open sealed invitation token",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return IssuedInvitation{Invitation: inv}, record(s.Metrics, "invitation.resend", nil)
	}

	slogx.FromContext(ctx).Info("invitation resent",
		slog.String("invitation_id", inv.ID),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return IssuedInvitation{Invitation: inv, AcceptURL: s.AcceptURL(string(token))}, record(s.Metrics, "invitation.resend", nil)
}

// Cancel makes a pending invitation permanently unusable.
func (s *InvitationService) Cancel(ctx context.Context, sc authz.Scope, invitationID string) (domain.Invitation, error) {
	now := s.Clock.Now().UTC()

	var inv domain.Invitation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = getInvitation(ctx, tx, sc.Organization.ID, invitationID)
		if err != nil {
			return err
		}
		if err := policy.CheckInvitationOwner(&sc.Membership, &inv); err != nil {
			return err
		}
		if inv.Status != domain.InvitationPending {
			return domain.ErrInvitationInvalid
		}

		if err := tx.Invitations().TransitionInvitation(ctx, inv.ID, domain.InvitationCanceled, "", now); err != nil {
			if errors.Is(err, store.ErrStale) {
				return domain.ErrInvitationInvalid
			}
			return err
		}
		inv.Status = domain.InvitationCanceled
		inv.UpdatedAt = now

		return appendEvent(ctx, tx, now, domain.EventInvitationCanceled, inv.OrganizationID,
			invitationPayload(inv, sc.Organization.Name))
	})
	if err != nil {
		return domain.Invitation{}, record(s.Metrics, "invitation.cancel", err)
	}

	slogx.FromContext(ctx).Info("invitation canceled",
		slog.String("invitation_id", inv.ID),
		slog.String("canceled_by", sc.Identity.UserID),
	)
	return inv, record(s.Metrics, "invitation.cancel", nil)
}

// Lookup resolves a public token without mutating anything. Canceled and
// accepted invitations are indistinguishable from unknown tokens.
func (s *InvitationService) Lookup(ctx context.Context, token string) (InvitationDetails, error) {
	inv, err := resolveToken(ctx, s.Store, token, s.Clock.Now())
	if err != nil {
		return InvitationDetails{}, record(s.Metrics, "invitation.lookup", err)
	}

	org, err := s.Store.Organizations().GetOrganizationByID(ctx, inv.OrganizationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("invitation references missing organization",
				slog.String("invitation_id", inv.ID),
				slog.String("organization_id", inv.OrganizationID),
				slog.Bool("integrity", true),
			)
			return InvitationDetails{}, record(s.Metrics, "invitation.lookup", domain.ErrOrganizationNotFound)
		}
		return InvitationDetails{}, err
	}

	return InvitationDetails{Invitation: inv, OrganizationName: org.Name}, record(s.Metrics, "invitation.lookup", nil)
}

// Accept redeems an invitation for the authenticated user. The invitation
// transition, the seat increment, the membership and the user mapping are
// applied together or not at all.
func (s *InvitationService) Accept(ctx context.Context, id authz.Identity, token string) (Accepted, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now().UTC()

	var out Accepted
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Re-validate; time may have passed since lookup.
		inv, err := resolveToken(ctx, tx, token, now)
		if err != nil {
			return err
		}

		// 2. The signed in account must be the invited one.
		if normalizeEmail(id.Email) != inv.Email {
			return domain.ErrEmailMismatch
		}

		// 3. One organization per user.
		if _, err := tx.UserOrganizations().GetOrganizationIDForUser(ctx, id.UserID); err == nil {
			return domain.ErrAlreadyInOrganization
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		org, err := tx.Organizations().GetOrganizationByID(ctx, inv.OrganizationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrOrganizationNotFound
			}
			return err
		}
		if err := policy.CanAccept(&org); err != nil {
			return err
		}

		// 4. Claim the invitation. Losing this race means someone else
		// already accepted or canceled it.
		if err := tx.Invitations().TransitionInvitation(ctx, inv.ID, domain.InvitationAccepted, id.UserID, now); err != nil {
			if errors.Is(err, store.ErrStale) {
				return domain.ErrInvitationInvalid
			}
			return err
		}

		// 5. Charge the seat against the version we read.
		if err := tx.Organizations().IncrementSeats(ctx, org.ID, org.Version, now); err != nil {
			return seatConflict(err)
		}
		org.CurrentSeats++
		org.Version++
		org.UpdatedAt = now

		invitedAt := inv.CreatedAt
		member := domain.Member{
			ID:              idx.New().String(),
			OrganizationID:  org.ID,
			UserID:          id.UserID,
			Email:           inv.Email,
			Name:            id.Name,
			Role:            inv.Role,
			Status:          domain.MemberActive,
			InvitedByUserID: inv.InvitedByUserID,
			InvitedAt:       &invitedAt,
			JoinedAt:        now,
		}
		if err := tx.Members().CreateMember(ctx, member); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ErrAlreadyInOrganization
			}
			return err
		}
		if err := tx.UserOrganizations().MapUser(ctx, id.UserID, org.ID, now); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ErrAlreadyInOrganization
			}
			return err
		}

		out = Accepted{Organization: org, Member: member}
		return appendEvent(ctx, tx, now, domain.EventMembershipChanged, org.ID, domain.MembershipEventPayload{
			Change:         domain.MembershipJoined,
			OrganizationID: org.ID,
			MemberID:       member.ID,
			UserID:         member.UserID,
			Role:           member.Role,
			ActorUserID:    id.UserID,
			CurrentSeats:   org.CurrentSeats,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			log.Error("invitation references missing organization", slog.Bool("integrity", true))
		}
		log.Info("invitation accept rejected", slog.String("user_id", id.UserID), slog.Any("error", err))
		return Accepted{}, record(s.Metrics, "invitation.accept", err)
	}

	slogx.AuditAt(ctx, now, slogx.AuditEvent{
		Action:         "invitation.accept",
		UserID:         id.UserID,
		OrganizationID: out.Organization.ID,
		Outcome:        slogx.OutcomeAllow,
		Attrs:          []slog.Attr{slog.String("role", string(out.Member.Role))},
	})
	return out, record(s.Metrics, "invitation.accept", nil)
}

// List returns every invitation of the organization with expiry applied to
// the status.
func (s *InvitationService) List(ctx context.Context, sc authz.Scope) ([]domain.Invitation, error) {
	invs, err := s.Store.Invitations().ListInvitations(ctx, sc.Organization.ID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	for i := range invs {
		invs[i].Status = invs[i].EffectiveStatus(now)
	}
	return invs, nil
}

// tokenStore is the slice of store.Store that token resolution needs; both
// the root store and a Tx satisfy it.
type tokenStore interface {
	Invitations() store.Invitations
}

func resolveToken(ctx context.Context, s tokenStore, token string, now time.Time) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, domain.ErrInvitationInvalid
	}

	inv, err := s.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, domain.ErrInvitationInvalid
		}
		return domain.Invitation{}, fmt.Errorf("lookup invitation: %w", err)
	}

	switch inv.EffectiveStatus(now) {
	case domain.InvitationPending:
		return inv, nil
	case domain.InvitationExpired:
		return domain.Invitation{}, domain.ErrInvitationExpired
	default:
		return domain.Invitation{}, domain.ErrInvitationInvalid
	}
}

func getInvitation(ctx context.Context, tx store.Tx, orgID, id string) (domain.Invitation, error) {
	inv, err := tx.Invitations().GetInvitationByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, domain.ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}
	return inv, nil
}

// outstandingInvitations lists invitations still holding a seat reservation.
func outstandingInvitations(ctx context.Context, invs store.Invitations, orgID string, now time.Time) ([]domain.Invitation, error) {
	pending, err := invs.ListPendingInvitations(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}
	out := pending[:0]
	for _, inv := range pending {
		if inv.Outstanding(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func invitationPayload(inv domain.Invitation, orgName string) domain.InvitationEventPayload {
	return domain.InvitationEventPayload{
		InvitationID:     inv.ID,
		OrganizationID:   inv.OrganizationID,
		OrganizationName: orgName,
		Email:            inv.Email,
		Role:             inv.Role,
		InvitedByName:    inv.InvitedByName,
		ExpiresAt:        inv.ExpiresAt,
	}
}

func inviterName(sc authz.Scope) string {
	switch {
	case sc.Membership.Name != "":
		return sc.Membership.Name
	case sc.Identity.Name != "":
		return sc.Identity.Name
	}
	return sc.Identity.Email
}
