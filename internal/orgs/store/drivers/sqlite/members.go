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

type membersRepo struct {
	db dbtx
}

const memberColumns = `id, organization_id, user_id, email, name, role, status,
	invited_by_user_id, invited_at, joined_at, last_active_at`

func (r *membersRepo) CreateMember(ctx context.Context, m domain.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OrganizationID, m.UserID, strings.ToLower(m.Email), m.Name, string(m.Role), string(m.Status),
		mapStringNull(m.InvitedByUserID), mapOptionalTime(m.InvitedAt), m.JoinedAt.UTC(), mapOptionalTime(m.LastActiveAt),
	)
	return mapConstraint(err)
}

func (r *membersRepo) GetMemberByID(ctx context.Context, orgID, memberID string) (domain.Member, error) {
	return r.getOne(ctx, `WHERE organization_id = ? AND id = ?`, orgID, memberID)
}

func (r *membersRepo) GetMemberByUserID(ctx context.Context, orgID, userID string) (domain.Member, error) {
	return r.getOne(ctx, `WHERE organization_id = ? AND user_id = ?`, orgID, userID)
}

func (r *membersRepo) GetActiveMemberByEmail(ctx context.Context, orgID, email string) (domain.Member, error) {
	return r.getOne(ctx, `WHERE organization_id = ? AND email = ? AND status = 'active' LIMIT 1`,
		orgID, strings.ToLower(email))
}

func (r *membersRepo) getOne(ctx context.Context, where string, args ...any) (domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members `+where, args...)
	m, err := scanMember(row)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membersRepo) ListMembers(ctx context.Context, orgID string) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE organization_id = ?
		ORDER BY role = 'owner' DESC, joined_at, id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membersRepo) CountActiveMembers(ctx context.Context, orgID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE organization_id = ? AND status = 'active'`, orgID,
	).Scan(&n)
	return n, err
}

func (r *membersRepo) UpdateMemberRole(ctx context.Context, orgID, memberID string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members SET role = ?
		WHERE organization_id = ? AND id = ? AND role != 'owner'`,
		string(role), orgID, memberID,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}

func (r *membersRepo) DeleteMember(ctx context.Context, orgID, memberID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM members WHERE organization_id = ? AND id = ? AND role != 'owner'`,
		orgID, memberID,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}

func (r *membersRepo) TouchLastActive(ctx context.Context, memberID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE members SET last_active_at = ? WHERE id = ?`, at.UTC(), memberID)
	return err
}

func scanMember(s scanner) (domain.Member, error) {
	var (
		m                     domain.Member
		role, status          string
		invitedBy             sql.NullString
		invitedAt, lastActive sql.NullTime
	)
	err := s.Scan(
		&m.ID, &m.OrganizationID, &m.UserID, &m.Email, &m.Name, &role, &status,
		&invitedBy, &invitedAt, &m.JoinedAt, &lastActive,
	)
	if err != nil {
		return domain.Member{}, err
	}

	if m.Role, err = domain.ParseRole(role); err != nil {
		return domain.Member{}, fmt.Errorf("member %s: %w", m.ID, err)
	}
	if m.Status, err = domain.ParseMemberStatus(status); err != nil {
		return domain.Member{}, fmt.Errorf("member %s: %w", m.ID, err)
	}
	m.InvitedByUserID = mapNullString(invitedBy)
	m.InvitedAt = mapNullTimePtr(invitedAt)
	m.LastActiveAt = mapNullTimePtr(lastActive)
	m.JoinedAt = m.JoinedAt.UTC()
	return m, nil
}
