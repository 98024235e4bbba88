package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
)

type userOrgsRepo struct {
	db dbtx
}

func (r *userOrgsRepo) MapUser(ctx context.Context, userID, orgID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_organizations (user_id, organization_id, created_at) VALUES (?, ?, ?)`,
		userID, orgID, now.UTC(),
	)
	return mapConstraint(err)
}

func (r *userOrgsRepo) GetOrganizationIDForUser(ctx context.Context, userID string) (string, error) {
	var orgID string
	err := r.db.QueryRowContext(ctx,
		`SELECT organization_id FROM user_organizations WHERE user_id = ?`, userID,
	).Scan(&orgID)
	if err != nil {
		return "", mapNotFound(err)
	}
	return orgID, nil
}

func (r *userOrgsRepo) UnmapUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_organizations WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}
