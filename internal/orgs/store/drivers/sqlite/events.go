package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
)

type eventsRepo struct {
	db dbtx
}

func (r *eventsRepo) AppendEvent(ctx context.Context, ev domain.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, type, organization_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Type), ev.OrganizationID, string(ev.Payload), ev.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *eventsRepo) ListUndelivered(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, organization_id, payload, created_at, delivered_at, attempts
		FROM events
		WHERE delivered_at IS NULL
		ORDER BY created_at, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			ev        domain.Event
			typ       string
			payload   string
			delivered sql.NullTime
		)
		if err := rows.Scan(&ev.ID, &typ, &ev.OrganizationID, &payload, &ev.CreatedAt, &delivered, &ev.Attempts); err != nil {
			return nil, err
		}
		ev.Type = domain.EventType(typ)
		ev.Payload = []byte(payload)
		ev.CreatedAt = ev.CreatedAt.UTC()
		ev.DeliveredAt = mapNullTimePtr(delivered)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventsRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET delivered_at = ?, attempts = attempts + 1, last_error = '' WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}

func (r *eventsRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		reason, id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}

func (r *eventsRepo) PurgeDelivered(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE delivered_at IS NOT NULL AND delivered_at < ?`, before.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
