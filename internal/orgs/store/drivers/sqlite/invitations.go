package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, token_hash, token_sealed, organization_id, email, role,
	invited_by_user_id, invited_by_name, accepted_by_user_id, status,
	created_at, expires_at, updated_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	if inv.Status != domain.InvitationPending {
		return fmt.Errorf("new invitation must be pending, got %q", inv.Status)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.TokenSealed, inv.OrganizationID, strings.ToLower(inv.Email), string(inv.Role),
		inv.InvitedByUserID, inv.InvitedByName, mapStringNull(inv.AcceptedByUserID), string(inv.Status),
		inv.CreatedAt.UTC(), inv.ExpiresAt.UTC(), inv.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, orgID, id string) (domain.Invitation, error) {
	return r.getOne(ctx, `WHERE organization_id = ? AND id = ?`, orgID, id)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	return r.getOne(ctx, `WHERE token_hash = ?`, hash)
}

func (r *invitationsRepo) getOne(ctx context.Context, where string, args ...any) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM invitations `+where, args...)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, orgID string) ([]domain.Invitation, error) {
	return r.list(ctx, `WHERE organization_id = ? ORDER BY created_at DESC, id DESC`, orgID)
}

func (r *invitationsRepo) ListPendingInvitations(ctx context.Context, orgID string) ([]domain.Invitation, error) {
	return r.list(ctx, `WHERE organization_id = ? AND status = 'pending' ORDER BY created_at, id`, orgID)
}

func (r *invitationsRepo) list(ctx context.Context, where string, args ...any) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+invitationColumns+` FROM invitations `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) ExtendInvitation(ctx context.Context, id string, expiresAt, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET expires_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		expiresAt.UTC(), now.UTC(), id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrStale)
}

func (r *invitationsRepo) TransitionInvitation(
	ctx context.Context,
	id string,
	to domain.InvitationStatus,
	acceptedBy string,
	now time.Time,
) error {
	switch to {
	case domain.InvitationAccepted:
		if acceptedBy == "" {
			return fmt.Errorf("accepting invitation %s requires a user", id)
		}
	case domain.InvitationCanceled:
		acceptedBy = ""
	default:
		return fmt.Errorf("cannot transition invitation to %q", to)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = ?, accepted_by_user_id = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(to), mapStringNull(acceptedBy), now.UTC(), id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrStale)
}

func scanInvitation(s scanner) (domain.Invitation, error) {
	var (
		inv          domain.Invitation
		role, status string
		acceptedBy   sql.NullString
	)
	err := s.Scan(
		&inv.ID, &inv.TokenHash, &inv.TokenSealed, &inv.OrganizationID, &inv.Email, &role,
		&inv.InvitedByUserID, &inv.InvitedByName, &acceptedBy, &status,
		&inv.CreatedAt, &inv.ExpiresAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}

	if inv.Role, err = domain.ParseRole(role); err != nil || !inv.Role.Assignable() {
		return domain.Invitation{}, fmt.Errorf("invitation %s: invalid role %q", inv.ID, role)
	}
	if inv.Status, err = domain.ParseInvitationStatus(status); err != nil {
		return domain.Invitation{}, fmt.Errorf("invitation %s: %w", inv.ID, err)
	}
	inv.AcceptedByUserID = mapNullString(acceptedBy)
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return inv, nil
}
