package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
)

type organizationsRepo struct {
	db dbtx
}

const organizationColumns = `id, name, owner_user_id, plan, max_seats, current_seats,
	require_admin_approval_for_deletes, allow_members_to_invite,
	billing_status, billing_period_end, billing_trial_end,
	version, created_at, updated_at`

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (`+organizationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.OwnerUserID, string(o.Plan), o.MaxSeats, o.CurrentSeats,
		o.Settings.RequireAdminApprovalForDeletes, o.Settings.AllowMembersToInvite,
		o.Billing.Status, mapOptionalTime(o.Billing.PeriodEnd), mapOptionalTime(o.Billing.TrialEnd),
		o.Version, o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id)
	o, err := scanOrganization(row)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return o, nil
}

func (r *organizationsRepo) UpdateSettings(ctx context.Context, orgID string, s domain.Settings, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE organizations
		SET require_admin_approval_for_deletes = ?, allow_members_to_invite = ?, updated_at = ?
		WHERE id = ?`,
		s.RequireAdminApprovalForDeletes, s.AllowMembersToInvite, now.UTC(), orgID,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}

func (r *organizationsRepo) IncrementSeats(ctx context.Context, orgID string, expectedVersion int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE organizations
		SET current_seats = current_seats + 1, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ? AND current_seats < max_seats`,
		now.UTC(), orgID, expectedVersion,
	)
	if err != nil {
		return err
	}
	if err := expectOne(res, store.ErrStale); err == nil {
		return nil
	}
	return r.explainSeatMiss(ctx, orgID, expectedVersion)
}

func (r *organizationsRepo) DecrementSeats(ctx context.Context, orgID string, expectedVersion int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE organizations
		SET current_seats = current_seats - 1, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ? AND current_seats > 1`,
		now.UTC(), orgID, expectedVersion,
	)
	if err != nil {
		return err
	}
	if err := expectOne(res, store.ErrStale); err == nil {
		return nil
	}
	return r.explainSeatMiss(ctx, orgID, expectedVersion)
}

// explainSeatMiss works out why a seat CAS matched no row.
func (r *organizationsRepo) explainSeatMiss(ctx context.Context, orgID string, expectedVersion int64) error {
	o, err := r.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return err
	}
	if o.Version != expectedVersion {
		return store.ErrStale
	}
	if o.CurrentSeats >= o.MaxSeats {
		return store.ErrNoCapacity
	}
	return fmt.Errorf("seat update rejected for organization %s (current_seats=%d)", orgID, o.CurrentSeats)
}

func scanOrganization(s scanner) (domain.Organization, error) {
	var (
		o                   domain.Organization
		plan                string
		periodEnd, trialEnd sql.NullTime
	)
	err := s.Scan(
		&o.ID, &o.Name, &o.OwnerUserID, &plan, &o.MaxSeats, &o.CurrentSeats,
		&o.Settings.RequireAdminApprovalForDeletes, &o.Settings.AllowMembersToInvite,
		&o.Billing.Status, &periodEnd, &trialEnd,
		&o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Organization{}, err
	}

	if o.Plan, err = domain.ParsePlan(plan); err != nil {
		return domain.Organization{}, fmt.Errorf("organization %s: %w", o.ID, err)
	}
	o.Billing.PeriodEnd = mapNullTimePtr(periodEnd)
	o.Billing.TrialEnd = mapNullTimePtr(trialEnd)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}
