package slogx

import (
	"context"
	"log/slog"
	"time"
)

// Audit outcomes.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
)

// AuditEvent is one access decision or sensitive mutation.
type AuditEvent struct {
	Action         string
	UserID         string
	OrganizationID string
	Outcome        string
	Reason         string
	Attrs          []slog.Attr
}

// Audit writes ev as an INFO record tagged audit=true on the request logger,
// so audit lines can be filtered out of the normal log stream.
func Audit(ctx context.Context, ev AuditEvent) {
	AuditAt(ctx, time.Now().UTC(), ev)
}

// AuditAt is Audit with an explicit timestamp.
func AuditAt(ctx context.Context, at time.Time, ev AuditEvent) {
	attrs := make([]slog.Attr, 0, 7+len(ev.Attrs))
	attrs = append(attrs,
		slog.Bool("audit", true),
		slog.String("action", ev.Action),
		slog.String("outcome", ev.Outcome),
		slog.Time("at", at),
	)
	if ev.UserID != "" {
		attrs = append(attrs, slog.String("user_id", ev.UserID))
	}
	if ev.OrganizationID != "" {
		attrs = append(attrs, slog.String("organization_id", ev.OrganizationID))
	}
	if ev.Reason != "" {
		attrs = append(attrs, slog.String("reason", ev.Reason))
	}
	attrs = append(attrs, ev.Attrs...)

	FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}
