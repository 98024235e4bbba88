package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	OrganizationID string          `json:"organization_id"`
	Data           json.RawMessage `json:"data"`
	header         http.Header
}

type receiver struct {
	mu         sync.Mutex
	status     int
	deliveries []delivery
}

func (r *receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	var d delivery
	_ = json.Unmarshal(body, &d)
	d.header = req.Header.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, d)
	if r.status != 0 {
		w.WriteHeader(r.status)
	}
}

func (r *receiver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deliveries)
}

func (e *env) dispatcher(t *testing.T, url string) *service.EventDispatcher {
	t.Helper()
	d := service.NewEventDispatcher(e.store, discardLogger(), url, time.Minute)
	d.Clock = e.clock
	d.Metrics = e.metrics
	d.Sealer = e.sealer
	d.LinkBase = linkBase
	return d
}

func TestEventsAreWrittenWithTheChange(t *testing.T) {
	e := newEnv(t)
	_, owner := e.signup(t, domain.PlanTeam)
	inv, token := e.invite(t, owner, "alice@example.test", domain.RoleMember)

	events, err := e.store.Events().ListUndelivered(e.ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.EventMembershipChanged, events[0].Type, "signup seats the owner")
	require.Equal(t, domain.EventInvitationCreated, events[1].Type)
	require.NotContains(t, string(events[1].Payload), token, "outbox never stores the raw token")

	var p domain.InvitationEventPayload
	require.NoError(t, json.Unmarshal(events[1].Payload, &p))
	require.Equal(t, inv.ID, p.InvitationID)
	require.Equal(t, "Harbour Electrical", p.OrganizationName)
	require.Empty(t, p.AcceptURL)

	// A rejected operation leaves no event behind.
	_, err = e.invites.Invite(e.ctx, owner, service.InviteParams{Email: "alice@example.test", Role: "member"})
	require.ErrorIs(t, err, domain.ErrInvitationPending)

	_, err = e.invites.Accept(e.ctx, authz.Identity{UserID: "u-alice", Email: "alice@example.test"}, token)
	require.NoError(t, err)

	events, err = e.store.Events().ListUndelivered(e.ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, domain.EventMembershipChanged, events[2].Type)

	var m domain.MembershipEventPayload
	require.NoError(t, json.Unmarshal(events[2].Payload, &m))
	require.Equal(t, domain.MembershipJoined, m.Change)
	require.Equal(t, "u-alice", m.UserID)
	require.Equal(t, 2, m.CurrentSeats)
}

func TestDispatchDeliversWithAcceptLink(t *testing.T) {
	e := newEnv(t)
	_, owner := e.signup(t, domain.PlanTeam)
	_, token := e.invite(t, owner, "alice@example.test", domain.RoleMember)
	other, _ := e.invite(t, owner, "bob@example.test", domain.RoleMember)
	_, err := e.invites.Cancel(e.ctx, owner, other.ID)
	require.NoError(t, err)

	rcv := &receiver{}
	srv := httptest.NewServer(rcv)
	t.Cleanup(srv.Close)

	d := e.dispatcher(t, srv.URL)
	n, err := d.Dispatch(e.ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	require.Len(t, rcv.deliveries, 4)
	require.Equal(t, "membership.changed", rcv.deliveries[0].Type)
	first := rcv.deliveries[1]
	require.Equal(t, "invitation.created", first.Type)
	require.Equal(t, first.ID, first.header.Get("X-Event-ID"))
	require.Equal(t, "application/json", first.header.Get("Content-Type"))

	var p domain.InvitationEventPayload
	require.NoError(t, json.Unmarshal(first.Data, &p))
	require.Equal(t, linkBase+"/"+token, p.AcceptURL)

	// bob's invitation was canceled before delivery, so no link goes out.
	var canceled domain.InvitationEventPayload
	require.NoError(t, json.Unmarshal(rcv.deliveries[2].Data, &canceled))
	require.Equal(t, other.ID, canceled.InvitationID)
	require.Empty(t, canceled.AcceptURL)
	require.Equal(t, "invitation.canceled", rcv.deliveries[3].Type)

	events, err := e.store.Events().ListUndelivered(e.ctx, 10)
	require.NoError(t, err)
	require.Empty(t, events)

	n, err = d.Dispatch(e.ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDispatchRetriesThenDrops(t *testing.T) {
	e := newEnv(t)
	_, owner := e.signup(t, domain.PlanTeam)
	e.invite(t, owner, "alice@example.test", domain.RoleMember)

	rcv := &receiver{status: http.StatusServiceUnavailable}
	srv := httptest.NewServer(rcv)
	t.Cleanup(srv.Close)

	d := e.dispatcher(t, srv.URL)
	d.MaxAttempts = 3

	for range 2 {
		n, err := d.Dispatch(e.ctx)
		require.NoError(t, err)
		require.Zero(t, n)
	}
	events, err := e.store.Events().ListUndelivered(e.ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, ev := range events {
		require.Equal(t, 2, ev.Attempts)
	}

	_, err = d.Dispatch(e.ctx)
	require.NoError(t, err)
	events, err = e.store.Events().ListUndelivered(e.ctx, 10)
	require.NoError(t, err)
	require.Empty(t, events, "event is dropped after the last attempt")
	require.Len(t, rcv.deliveries, 6)
}

func TestDispatchPurgesOldEvents(t *testing.T) {
	e := newEnv(t)
	_, owner := e.signup(t, domain.PlanTeam)
	e.invite(t, owner, "alice@example.test", domain.RoleMember)

	srv := httptest.NewServer(&receiver{})
	t.Cleanup(srv.Close)

	d := e.dispatcher(t, srv.URL)
	d.Retention = 24 * time.Hour
	_, err := d.Dispatch(e.ctx)
	require.NoError(t, err)

	n, err := d.Purge(e.ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	e.clock.Advance(25 * time.Hour)
	n, err = d.Purge(e.ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestDispatchWithoutWebhook(t *testing.T) {
	e := newEnv(t)
	_, owner := e.signup(t, domain.PlanTeam)
	e.invite(t, owner, "alice@example.test", domain.RoleMember)

	d := e.dispatcher(t, "")
	n, err := d.Dispatch(e.ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	events, err := e.store.Events().ListUndelivered(e.ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestDispatcherRunsOnTheClock(t *testing.T) {
	e := newEnv(t)
	_, owner := e.signup(t, domain.PlanTeam)
	e.invite(t, owner, "alice@example.test", domain.RoleMember)

	rcv := &receiver{}
	srv := httptest.NewServer(rcv)
	t.Cleanup(srv.Close)

	d := e.dispatcher(t, srv.URL)
	d.Start()
	t.Cleanup(d.Stop)

	ctx, cancel := context.WithTimeout(e.ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, e.clock.BlockUntilContext(ctx, 1))

	// The first batch goes out on start.
	require.Eventually(t, func() bool { return rcv.count() == 2 }, 5*time.Second, 10*time.Millisecond)

	e.invite(t, owner, "bob@example.test", domain.RoleMember)
	require.Never(t, func() bool { return rcv.count() > 2 }, 100*time.Millisecond, 10*time.Millisecond)

	e.clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return rcv.count() == 3 }, 5*time.Second, 10*time.Millisecond)
}
