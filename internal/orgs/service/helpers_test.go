package service_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const linkBase = "https://app.example.test/invite"

var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type env struct {
	ctx     context.Context
	store   *sqlite.Store
	clock   *clockwork.FakeClock
	sealer  *cryptox.Sealer
	metrics *metrics.Metrics

	orgs    *service.OrganizationService
	invites *service.InvitationService
	members *service.MembershipService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	sealer, err := cryptox.NewSealer([]byte("test-key-material"))
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(t0)
	m := metrics.New(prometheus.NewRegistry(), "orgs_test")

	return &env{
		ctx:     context.Background(),
		store:   s,
		clock:   clock,
		sealer:  sealer,
		metrics: m,
		orgs:    &service.OrganizationService{Store: s, Clock: clock, Metrics: m},
		invites: &service.InvitationService{Store: s, Clock: clock, Sealer: sealer, Metrics: m, LinkBase: linkBase},
		members: &service.MembershipService{Store: s, Clock: clock, Metrics: m},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// signup creates an organization the way a new owner does. Team plans hold
// five seats.
func (e *env) signup(t *testing.T, plan domain.Plan) (domain.Organization, authz.Scope) {
	t.Helper()

	id := authz.Identity{UserID: "u-owner", Email: "owner@harbour.test", Name: "Olive Owner"}
	org, _, err := e.orgs.Create(e.ctx, id, service.CreateOrganizationParams{Name: "Harbour Electrical", Plan: string(plan)})
	require.NoError(t, err)
	require.Equal(t, plan.MaxSeats(), org.MaxSeats)

	return org, e.scope(t, id.UserID)
}

// scope resolves what the organization gate would attach to a request.
func (e *env) scope(t *testing.T, userID string) authz.Scope {
	t.Helper()

	orgID, err := e.store.UserOrganizations().GetOrganizationIDForUser(e.ctx, userID)
	require.NoError(t, err)
	org, err := e.store.Organizations().GetOrganizationByID(e.ctx, orgID)
	require.NoError(t, err)
	m, err := e.store.Members().GetMemberByUserID(e.ctx, orgID, userID)
	require.NoError(t, err)

	return authz.Scope{
		Identity:     authz.Identity{UserID: userID, Email: m.Email, Name: m.Name},
		Organization: org,
		Membership:   m,
	}
}

func (e *env) invite(t *testing.T, sc authz.Scope, email string, role domain.Role) (domain.Invitation, string) {
	t.Helper()
	issued, err := e.invites.Invite(e.ctx, sc, service.InviteParams{Email: email, Role: string(role)})
	require.NoError(t, err)
	return issued.Invitation, tokenOf(t, issued.AcceptURL)
}

// join invites email and accepts as userID, returning the new member's scope.
func (e *env) join(t *testing.T, sc authz.Scope, userID, email string, role domain.Role) authz.Scope {
	t.Helper()
	_, token := e.invite(t, sc, email, role)
	_, err := e.invites.Accept(e.ctx, authz.Identity{UserID: userID, Email: email, Name: userID}, token)
	require.NoError(t, err)
	return e.scope(t, userID)
}

func (e *env) seats(t *testing.T, orgID string) int {
	t.Helper()
	org, err := e.store.Organizations().GetOrganizationByID(e.ctx, orgID)
	require.NoError(t, err)
	return org.CurrentSeats
}

func tokenOf(t *testing.T, acceptURL string) string {
	t.Helper()
	token, ok := strings.CutPrefix(acceptURL, linkBase+"/")
	require.True(t, ok, "unexpected accept url %q", acceptURL)
	require.NotEmpty(t, token)
	return token
}
