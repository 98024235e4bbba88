package http_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	orgshttp "github.com/aussiebroadwan/tenancy/internal/orgs/http"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 7, 13, 11, 0, 0, 0, time.UTC)

type profile struct {
	sub, email, name string
}

// users are the accounts the test identity provider issues tokens for,
// keyed by the name tests refer to them by.
var users = map[string]profile{
	"owner-token":  {"u-owner", "owner@harbour.test", "Olive Owner"},
	"member-token": {"u-member", "mia@harbour.test", "Mia Member"},
	"admin-token":  {"u-admin", "ada@harbour.test", "Ada Admin"},
	"guest-token":  {"u-guest", "gus@elsewhere.test", "Gus Guest"},
}

const issuer = "https://idp.harbour.test"

type server struct {
	t      *testing.T
	ts     *httptest.Server
	clock  *clockwork.FakeClock
	store  *sqlite.Store
	tokens map[string]string
}

func newServer(t *testing.T) *server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	sealer, err := cryptox.NewSealer([]byte("router-test-key"))
	require.NoError(t, err)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(jwtx.NewEd25519JWK("idp-1", pub)))

	clock := clockwork.NewFakeClockAt(t0)
	m := metrics.New(prometheus.NewRegistry(), "orgs_http_test")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	gates := &authz.Gates{
		Verifier: authz.JWTVerifier{
			Tokens: jwtx.NewKeySetVerifier(keys, jwtx.VerifyOptions{
				Issuer:   issuer,
				Audience: []string{"orgs"},
			}),
		},
		Store:   st,
		Clock:   clock,
		Metrics: m,
	}
	r := orgshttp.NewRouter(gates, keys, "test", st, m, logger)
	r.OrganizationService = &service.OrganizationService{Store: st, Clock: clock, Metrics: m}
	r.InvitationService = &service.InvitationService{
		Store:    st,
		Clock:    clock,
		Sealer:   sealer,
		Metrics:  m,
		LinkBase: "https://app.harbour.test/invite",
	}
	r.MembershipService = &service.MembershipService{Store: st, Clock: clock, Metrics: m}
	r.ApplyRoutes()

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	tokens := make(map[string]string, len(users))
	for name, p := range users {
		tokens[name] = sign(t, priv, p)
	}

	return &server{t: t, ts: ts, clock: clock, store: st, tokens: tokens}
}

func sign(t *testing.T, priv ed25519.PrivateKey, p profile) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.sub,
			Audience:  jwt.ClaimStrings{"orgs"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:         p.email,
		PreferredName: p.name,
	})
	tok.Header["kid"] = "idp-1"
	s, err := tok.SignedString(priv)
	require.NoError(t, err)
	return s
}

// do sends a request as the named user. Names without a minted token are
// sent verbatim as the bearer credential.
func (s *server) do(method, path, as string, body any) *http.Response {
	s.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.ts.URL+path, rd)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != "" {
		bearer := as
		if signed, ok := s.tokens[as]; ok {
			bearer = signed
		}
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.ts.Client().Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func requireError(t *testing.T, resp *http.Response, status int, code string) orgsdk.ErrorResponse {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	e := decode[orgsdk.ErrorResponse](t, resp)
	require.Equal(t, code, e.Error)
	return e
}

// signup creates the owner's organization on the given plan.
func (s *server) signup(plan string) orgsdk.CreateOrganizationResponse {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/v1/organizations", "owner-token", orgsdk.CreateOrganizationRequest{
		Name: "Harbour Electrical",
		Plan: plan,
	})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	return decode[orgsdk.CreateOrganizationResponse](s.t, resp)
}

// onboard invites email and accepts the invitation as token.
func (s *server) onboard(token, email, role string) orgsdk.AcceptInvitationResponse {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/v1/invitations", "owner-token", orgsdk.InviteRequest{Email: email, Role: role})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	inv := decode[orgsdk.InvitationResponse](s.t, resp)

	resp = s.do(http.MethodPost, "/v1/invites/"+tokenFromURL(s.t, inv.AcceptURL)+"/accept", token, nil)
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	return decode[orgsdk.AcceptInvitationResponse](s.t, resp)
}

func tokenFromURL(t *testing.T, acceptURL string) string {
	t.Helper()
	const prefix = "https://app.harbour.test/invite/"
	require.Greater(t, len(acceptURL), len(prefix))
	require.Equal(t, prefix, acceptURL[:len(prefix)])
	return acceptURL[len(prefix):]
}

func TestIdentityGate(t *testing.T) {
	s := newServer(t)

	resp := s.do(http.MethodGet, "/v1/organization", "", nil)
	requireError(t, resp, http.StatusUnauthorized, orgsdk.ErrorCodeUnauthenticated)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")

	resp = s.do(http.MethodGet, "/v1/members", "forged", nil)
	requireError(t, resp, http.StatusUnauthorized, orgsdk.ErrorCodeUnauthenticated)
}

func TestOrganizationGate(t *testing.T) {
	s := newServer(t)

	resp := s.do(http.MethodGet, "/v1/organization", "guest-token", nil)
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeNoOrganization)
}

func TestSignupAndView(t *testing.T) {
	s := newServer(t)

	created := s.signup("team")
	require.Equal(t, "owner", created.Member.Role)
	require.Equal(t, 1, created.Organization.CurrentSeats)
	require.Equal(t, 4, created.Organization.AvailableSeats)

	resp := s.do(http.MethodPost, "/v1/organizations", "owner-token", orgsdk.CreateOrganizationRequest{
		Name: "Second Shop",
		Plan: "team",
	})
	requireError(t, resp, http.StatusConflict, orgsdk.ErrorCodeAlreadyInOrganization)

	resp = s.do(http.MethodGet, "/v1/organization", "owner-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	org := decode[orgsdk.OrganizationResponse](t, resp)
	require.Equal(t, created.Organization.ID, org.ID)
	require.Equal(t, "Harbour Electrical", org.Name)
}

func TestValidationErrorShape(t *testing.T) {
	s := newServer(t)

	resp := s.do(http.MethodPost, "/v1/organizations", "owner-token", orgsdk.CreateOrganizationRequest{
		Name: "Harbour Electrical",
		Plan: "enterprise",
	})
	e := requireError(t, resp, http.StatusBadRequest, orgsdk.ErrorCodeValidation)
	require.Equal(t, "oneof=solo team business", e.Details["plan"])

	s.signup("team")
	resp = s.do(http.MethodPost, "/v1/invitations", "owner-token", orgsdk.InviteRequest{Email: "not-an-email", Role: "member"})
	e = requireError(t, resp, http.StatusBadRequest, orgsdk.ErrorCodeValidation)
	require.Equal(t, "email", e.Details["email"])

	resp = s.do(http.MethodPost, "/v1/invitations", "owner-token", "{")
	requireError(t, resp, http.StatusBadRequest, orgsdk.ErrorCodeInvalidRequest)
}

func TestRoleGateFollowsSettings(t *testing.T) {
	s := newServer(t)
	s.signup("team")
	s.onboard("member-token", "mia@harbour.test", "member")

	invite := orgsdk.InviteRequest{Email: "new@harbour.test", Role: "member"}

	resp := s.do(http.MethodPost, "/v1/invitations", "member-token", invite)
	e := requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeInsufficientPermissions)
	require.Equal(t, []string{"owner", "admin"}, e.RequiredRoles)
	require.Equal(t, "member", e.ActualRole)

	allow := true
	resp = s.do(http.MethodPatch, "/v1/organization/settings", "member-token", orgsdk.UpdateSettingsRequest{AllowMembersToInvite: &allow})
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeInsufficientPermissions)

	resp = s.do(http.MethodPatch, "/v1/organization/settings", "owner-token", orgsdk.UpdateSettingsRequest{AllowMembersToInvite: &allow})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	org := decode[orgsdk.OrganizationResponse](t, resp)
	require.True(t, org.Settings.AllowMembersToInvite)

	resp = s.do(http.MethodPost, "/v1/invitations", "member-token", invite)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Inviting does not let a member hand out roles they cannot assign.
	resp = s.do(http.MethodPost, "/v1/invitations", "member-token", orgsdk.InviteRequest{Email: "boss@harbour.test", Role: "admin"})
	e = requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeInsufficientPermissions)
	require.Equal(t, []string{"owner", "admin"}, e.RequiredRoles)
	require.Equal(t, "member", e.ActualRole)

	resp = s.do(http.MethodGet, "/v1/organization/permissions", "member-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	perms := decode[orgsdk.PermissionsResponse](t, resp)
	require.Equal(t, "member", perms.Role)
	require.True(t, perms.Capabilities["invite"])
	require.False(t, perms.Capabilities["remove_members"])
}

func TestInviteOnSoloPlan(t *testing.T) {
	s := newServer(t)
	s.signup("solo")

	resp := s.do(http.MethodPost, "/v1/invitations", "owner-token", orgsdk.InviteRequest{Email: "mia@harbour.test", Role: "member"})
	requireError(t, resp, http.StatusConflict, orgsdk.ErrorCodeSeatsExhausted)

	resp = s.do(http.MethodGet, "/v1/organization/permissions", "owner-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	perms := decode[orgsdk.PermissionsResponse](t, resp)
	require.False(t, perms.Capabilities["view_members"])

	// The role gate agrees with the reported permissions.
	resp = s.do(http.MethodGet, "/v1/members", "owner-token", nil)
	e := requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeInsufficientPermissions)
	require.Empty(t, e.RequiredRoles)
	require.Equal(t, "owner", e.ActualRole)

	resp = s.do(http.MethodDelete, "/v1/members/"+idx.New().String(), "owner-token", nil)
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeInsufficientPermissions)
	resp = s.do(http.MethodPatch, "/v1/members/"+idx.New().String()+"/role", "owner-token", orgsdk.ChangeRoleRequest{Role: "admin"})
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeInsufficientPermissions)

	resp = s.do(http.MethodGet, "/v1/organization", "owner-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInvitationLinkFlow(t *testing.T) {
	s := newServer(t)
	s.signup("team")

	resp := s.do(http.MethodPost, "/v1/invitations", "owner-token", orgsdk.InviteRequest{Email: "Ada@Harbour.test", Role: "admin"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inv := decode[orgsdk.InvitationResponse](t, resp)
	require.Equal(t, "ada@harbour.test", inv.Email)
	require.Equal(t, "pending", inv.Status)
	token := tokenFromURL(t, inv.AcceptURL)

	resp = s.do(http.MethodGet, "/v1/invites/"+token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lookup := decode[orgsdk.InvitationLookupResponse](t, resp)
	require.Equal(t, "Harbour Electrical", lookup.OrganizationName)
	require.Equal(t, "admin", lookup.Role)
	require.Equal(t, "Olive Owner", lookup.InvitedByName)

	resp = s.do(http.MethodGet, "/v1/invites/not-a-real-token", "", nil)
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeInvitationInvalid)

	resp = s.do(http.MethodPost, "/v1/invites/"+token+"/accept", "", nil)
	requireError(t, resp, http.StatusUnauthorized, orgsdk.ErrorCodeUnauthenticated)

	resp = s.do(http.MethodPost, "/v1/invites/"+token+"/accept", "guest-token", nil)
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeEmailMismatch)

	resp = s.do(http.MethodPost, "/v1/invites/"+token+"/accept", "admin-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accepted := decode[orgsdk.AcceptInvitationResponse](t, resp)
	require.Equal(t, "admin", accepted.Member.Role)
	require.Equal(t, 2, accepted.Organization.CurrentSeats)
	require.Equal(t, 0, accepted.Organization.PendingInvitations)

	resp = s.do(http.MethodPost, "/v1/invites/"+token+"/accept", "admin-token", nil)
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeInvitationInvalid)

	resp = s.do(http.MethodGet, "/v1/members", "admin-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[orgsdk.ListMembersResponse](t, resp)
	require.Len(t, list.Members, 2)
	require.Equal(t, "owner", list.Members[0].Role)
}

func TestExpiredInvitationLink(t *testing.T) {
	s := newServer(t)
	s.signup("team")

	resp := s.do(http.MethodPost, "/v1/invitations", "owner-token", orgsdk.InviteRequest{Email: "mia@harbour.test", Role: "member"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := tokenFromURL(t, decode[orgsdk.InvitationResponse](t, resp).AcceptURL)

	s.clock.Advance(8 * 24 * time.Hour)

	resp = s.do(http.MethodGet, "/v1/invites/"+token, "", nil)
	requireError(t, resp, http.StatusGone, orgsdk.ErrorCodeInvitationExpired)

	resp = s.do(http.MethodGet, "/v1/invitations", "owner-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[orgsdk.ListInvitationsResponse](t, resp)
	require.Len(t, list.Invitations, 1)
	require.Equal(t, "expired", list.Invitations[0].Status)
	require.Empty(t, list.Invitations[0].AcceptURL)
}

func TestResendAndCancel(t *testing.T) {
	s := newServer(t)
	s.signup("team")

	resp := s.do(http.MethodPost, "/v1/invitations", "owner-token", orgsdk.InviteRequest{Email: "mia@harbour.test", Role: "member"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inv := decode[orgsdk.InvitationResponse](t, resp)

	s.clock.Advance(2 * 24 * time.Hour)
	resp = s.do(http.MethodPost, "/v1/invitations/"+inv.ID+"/resend", "owner-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resent := decode[orgsdk.InvitationResponse](t, resp)
	require.Equal(t, inv.AcceptURL, resent.AcceptURL)
	require.True(t, resent.ExpiresAt.After(inv.ExpiresAt))

	resp = s.do(http.MethodPost, "/v1/invitations/"+inv.ID+"/cancel", "owner-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "canceled", decode[orgsdk.InvitationResponse](t, resp).Status)

	resp = s.do(http.MethodPost, "/v1/invitations/"+inv.ID+"/cancel", "owner-token", nil)
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeInvitationInvalid)

	resp = s.do(http.MethodPost, "/v1/invitations/inv-missing/resend", "owner-token", nil)
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeInvitationNotFound)
	resp = s.do(http.MethodPost, "/v1/invitations/"+idx.New().String()+"/cancel", "owner-token", nil)
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeInvitationNotFound)
}

func TestMemberManagement(t *testing.T) {
	s := newServer(t)
	created := s.signup("team")
	admin := s.onboard("admin-token", "ada@harbour.test", "admin")
	member := s.onboard("member-token", "mia@harbour.test", "member")

	resp := s.do(http.MethodPatch, "/v1/members/"+created.Member.ID+"/role", "admin-token", orgsdk.ChangeRoleRequest{Role: "member"})
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeCannotModifyOwner)

	resp = s.do(http.MethodPatch, "/v1/members/"+admin.Member.ID+"/role", "admin-token", orgsdk.ChangeRoleRequest{Role: "member"})
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeSelfActionForbidden)

	resp = s.do(http.MethodPatch, "/v1/members/"+member.Member.ID+"/role", "admin-token", orgsdk.ChangeRoleRequest{Role: "owner"})
	requireError(t, resp, http.StatusBadRequest, orgsdk.ErrorCodeInvalidRequest)

	resp = s.do(http.MethodPatch, "/v1/members/"+member.Member.ID+"/role", "admin-token", orgsdk.ChangeRoleRequest{Role: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "admin", decode[orgsdk.MemberResponse](t, resp).Role)

	resp = s.do(http.MethodDelete, "/v1/members/m-missing", "owner-token", nil)
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeMemberNotFound)
	resp = s.do(http.MethodPatch, "/v1/members/m-missing/role", "owner-token", orgsdk.ChangeRoleRequest{Role: "admin"})
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeMemberNotFound)
	resp = s.do(http.MethodDelete, "/v1/members/"+idx.New().String(), "owner-token", nil)
	requireError(t, resp, http.StatusNotFound, orgsdk.ErrorCodeMemberNotFound)

	resp = s.do(http.MethodDelete, "/v1/members/"+member.Member.ID, "owner-token", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/v1/organization", "member-token", nil)
	requireError(t, resp, http.StatusForbidden, orgsdk.ErrorCodeNoOrganization)

	resp = s.do(http.MethodGet, "/v1/organization", "owner-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, decode[orgsdk.OrganizationResponse](t, resp).CurrentSeats)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	resp := s.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decode[orgsdk.HealthResponse](t, resp).Status)

	resp = s.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[orgsdk.HealthResponse](t, resp)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.IdentityKeys)

	// Generate at least one observed route.
	s.do(http.MethodGet, "/v1/organization", "", nil)

	resp = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "orgs_http_test_http_requests_total")
	require.Contains(t, string(body), `route="/v1/organization"`)
}

func TestReadyzWithoutKeys(t *testing.T) {
	s := newServer(t)

	rec := httptest.NewRecorder()
	orgshttp.ReadyzHandler(t0, "test", s.store, jwtx.NewKeySet()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var health orgsdk.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "error: no keys loaded", health.Checks.IdentityKeys)
}
