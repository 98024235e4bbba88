package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/jonboulle/clockwork"
)

const (
	defaultDispatchInterval = 10 * time.Second
	defaultDispatchBatch    = 50
	defaultMaxAttempts      = 10
	defaultEventRetention   = 7 * 24 * time.Hour
)

// EventDispatcher drains the event outbox to a webhook. Delivery happens
// after the producing transaction has committed, so a slow or failing
// receiver never affects the request that caused the event.
type EventDispatcher struct {
	Store      store.Store
	Logger     *slog.Logger
	Clock      clockwork.Clock
	Metrics    *metrics.Metrics
	HTTPClient *http.Client

	// WebhookURL receives one POST per event. Empty disables delivery;
	// events are then only purged.
	WebhookURL string

	// Sealer and LinkBase let invitation events carry the accept link.
	// The link is rebuilt at delivery time so the raw token never sits in
	// the outbox.
	Sealer   *cryptox.Sealer
	LinkBase string

	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	Retention   time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewEventDispatcher creates a dispatcher. If interval is 0 or negative,
// defaults to 10 seconds.
func NewEventDispatcher(st store.Store, logger *slog.Logger, webhookURL string, interval time.Duration) *EventDispatcher {
	if interval <= 0 {
		interval = defaultDispatchInterval
	}

	return &EventDispatcher{
		Store:       st,
		Logger:      logger,
		Clock:       clockwork.NewRealClock(),
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		WebhookURL:  webhookURL,
		Interval:    interval,
		BatchSize:   defaultDispatchBatch,
		MaxAttempts: defaultMaxAttempts,
		Retention:   defaultEventRetention,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (d *EventDispatcher) Start() {
	go d.run()
	d.Logger.Info("event dispatcher started",
		slog.Duration("interval", d.Interval),
		slog.Bool("webhook_enabled", d.WebhookURL != ""),
	)
}

// Stop blocks until any in-progress batch has finished.
func (d *EventDispatcher) Stop() {
	close(d.stopCh)
	<-d.doneCh
	d.Logger.Info("event dispatcher stopped")
}

func (d *EventDispatcher) run() {
	defer close(d.doneCh)

	ticker := d.Clock.NewTicker(d.Interval)
	defer ticker.Stop()

	d.tick()

	for {
		select {
		case <-ticker.Chan():
			d.tick()
		case <-d.stopCh:
			return
		}
	}
}

func (d *EventDispatcher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), d.Interval+30*time.Second)
	defer cancel()

	if _, err := d.Dispatch(ctx); err != nil {
		d.Logger.Error("event dispatch failed", slog.Any("error", err))
	}
	if _, err := d.Purge(ctx); err != nil {
		d.Logger.Error("event purge failed", slog.Any("error", err))
	}
}

// Dispatch delivers one batch of undelivered events in creation order and
// returns how many were delivered. Per-event failures are recorded on the
// event and do not stop the batch.
func (d *EventDispatcher) Dispatch(ctx context.Context) (int, error) {
	if d.WebhookURL == "" {
		return 0, nil
	}

	events, err := d.Store.Events().ListUndelivered(ctx, d.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list undelivered events: %w", err)
	}

	delivered := 0
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		err := d.deliver(ctx, ev)
		if err == nil {
			if err := d.Store.Events().MarkDelivered(ctx, ev.ID, d.Clock.Now().UTC()); err != nil {
				d.Logger.Error("failed to mark event delivered", slog.String("event_id", ev.ID), slog.Any("error", err))
				continue
			}
			d.Metrics.EventDelivery(string(ev.Type), "delivered")
			delivered++
			continue
		}

		if ev.Attempts+1 >= d.MaxAttempts {
			// Give up; marking it delivered takes it out of the queue.
			d.Logger.Error("dropping event after repeated delivery failures",
				slog.String("event_id", ev.ID),
				slog.String("type", string(ev.Type)),
				slog.Int("attempts", ev.Attempts+1),
				slog.Any("error", err),
			)
			if err := d.Store.Events().MarkDelivered(ctx, ev.ID, d.Clock.Now().UTC()); err != nil {
				d.Logger.Error("failed to drop event", slog.String("event_id", ev.ID), slog.Any("error", err))
			}
			d.Metrics.EventDelivery(string(ev.Type), "dropped")
			continue
		}

		d.Logger.Warn("event delivery failed",
			slog.String("event_id", ev.ID),
			slog.String("type", string(ev.Type)),
			slog.Int("attempts", ev.Attempts+1),
			slog.Any("error", err),
		)
		if err := d.Store.Events().MarkFailed(ctx, ev.ID, err.Error()); err != nil {
			d.Logger.Error("failed to record event failure", slog.String("event_id", ev.ID), slog.Any("error", err))
		}
		d.Metrics.EventDelivery(string(ev.Type), "failed")
	}

	if delivered > 0 {
		d.Logger.Debug("events delivered", slog.Int("count", delivered))
	}
	return delivered, nil
}

// Purge deletes delivered events older than the retention window.
func (d *EventDispatcher) Purge(ctx context.Context) (int64, error) {
	n, err := d.Store.Events().PurgeDelivered(ctx, d.Clock.Now().Add(-d.Retention))
	if err != nil {
		return 0, fmt.Errorf("purge delivered events: %w", err)
	}
	if n > 0 {
		d.Logger.Info("purged delivered events", slog.Int64("count", n))
	}
	return n, nil
}

// webhookEnvelope is the body POSTed for every event.
type webhookEnvelope struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	OrganizationID string          `json:"organization_id"`
	CreatedAt      time.Time       `json:"created_at"`
	Data           json.RawMessage `json:"data"`
}

func (d *EventDispatcher) deliver(ctx context.Context, ev domain.Event) error {
	data, err := d.enrich(ctx, ev)
	if err != nil {
		return err
	}

	body, err := json.Marshal(webhookEnvelope{
		ID:             ev.ID,
		Type:           string(ev.Type),
		OrganizationID: ev.OrganizationID,
		CreatedAt:      ev.CreatedAt,
		Data:           data,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", ev.ID)
	req.Header.Set("X-Event-Type", string(ev.Type))

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// enrich adds the accept link to invitation.created and invitation.resent
// payloads while the invitation is still pending.
func (d *EventDispatcher) enrich(ctx context.Context, ev domain.Event) (json.RawMessage, error) {
	if ev.Type != domain.EventInvitationCreated && ev.Type != domain.EventInvitationResent {
		return ev.Payload, nil
	}
	if d.Sealer == nil || d.LinkBase == "" {
		return ev.Payload, nil
	}

	var p domain.InvitationEventPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode invitation payload: %w", err)
	}

	inv, err := d.Store.Invitations().GetInvitationByID(ctx, ev.OrganizationID, p.InvitationID)
	if err != nil {
		return nil, fmt.Errorf("load invitation %s: %w", p.InvitationID, err)
	}
	if inv.EffectiveStatus(d.Clock.Now()) != domain.InvitationPending {
		return ev.Payload, nil
	}

	token, err := d.Sealer.Open(inv.TokenSealed)
	if err != nil {
		return nil, fmt.Errorf("open invitation token: %w", err)
	}
	p.AcceptURL = acceptURL(d.LinkBase, string(token))

	return json.Marshal(p)
}
