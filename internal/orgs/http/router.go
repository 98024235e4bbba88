package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/policy"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"

	_ "github.com/aussiebroadwan/tenancy/api/orgs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	gates        *authz.Gates
	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store               store.Store
	OrganizationService *service.OrganizationService
	InvitationService   *service.InvitationService
	MembershipService   *service.MembershipService
}

// NewRouter creates a router. keys is only consulted by the readiness probe
// and may be nil.
func NewRouter(
	gates *authz.Gates,
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		gates:        gates,
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOrganization()
	r.registerMembers()
	r.registerInvitations()
	r.registerInviteLinks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Organization Access Service API
//	@version		0.1.0
//	@description	Organizations, memberships, seats and the invitation lifecycle.
//	@description
//	@description				Every authenticated endpoint expects an access token issued by the identity provider.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tenancy
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h behind mws and records request metrics under the
// route pattern.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	method, route, _ := strings.Cut(pattern, " ")
	chained := httpx.Chain(h, mws...)

	r.Mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rw := slogx.NewResponseWriter(w)
		chained.ServeHTTP(rw, req)
		r.metrics.ObserveHTTP(method, route, rw.Status(), time.Since(start))
	}))
}

// member builds the full three-gate chain for an organization-scoped action.
func (r *Router) member(action string, roles allowedRoles, sensitive bool, limit httpx.RateLimitConfig) []httpx.Middleware {
	return []httpx.Middleware{
		authenticate(r.gates, action),
		httpx.RateLimitByUser(limit),
		resolveOrganization(r.gates, action),
		requireRole(r.gates, action, roles, sensitive),
	}
}

func (r *Router) registerOrganization() {
	h := &OrganizationHandler{Organizations: r.OrganizationService}

	// POST /v1/organizations - signup, identity gate only
	r.handle("POST /v1/organizations", http.HandlerFunc(h.HandleCreate),
		authenticate(r.gates, "organization.create"),
		httpx.RateLimitByUser(httpx.MutationLimit),
	)

	r.handle("GET /v1/organization", http.HandlerFunc(h.HandleGet),
		r.member("organization.view", rolesWith(policy.CapViewOrganization), false, httpx.ReadLimit)...,
	)
	r.handle("GET /v1/organization/permissions", http.HandlerFunc(h.HandlePermissions),
		r.member("organization.permissions", rolesWith(policy.CapViewOrganization), false, httpx.ReadLimit)...,
	)

	// PATCH /v1/organization/settings - owner only
	r.handle("PATCH /v1/organization/settings", http.HandlerFunc(h.HandleUpdateSettings),
		r.member("organization.settings", rolesWith(policy.CapEditSettings), true, httpx.MutationLimit)...,
	)
}

func (r *Router) registerMembers() {
	h := &MembersHandler{Members: r.MembershipService}

	r.handle("GET /v1/members", http.HandlerFunc(h.HandleList),
		r.member("member.list", rolesWith(policy.CapViewMembers), false, httpx.ReadLimit)...,
	)
	r.handle("PATCH /v1/members/{id}/role", http.HandlerFunc(h.HandleChangeRole),
		r.member("member.change_role", rolesWith(policy.CapChangeRoles), true, httpx.MutationLimit)...,
	)
	r.handle("DELETE /v1/members/{id}", http.HandlerFunc(h.HandleRemove),
		r.member("member.remove", rolesWith(policy.CapRemoveMembers), true, httpx.MutationLimit)...,
	)
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{Invitations: r.InvitationService}

	r.handle("GET /v1/invitations", http.HandlerFunc(h.HandleList),
		r.member("invitation.list", rolesWith(policy.CapViewInvitations), false, httpx.ReadLimit)...,
	)

	// The invite allow-list follows the organization's allow_members_to_invite setting.
	r.handle("POST /v1/invitations", http.HandlerFunc(h.HandleCreate),
		r.member("invitation.create", rolesWith(policy.CapInvite), true, httpx.MutationLimit)...,
	)

	// Resend also sends mail, so each invitation gets its own tighter bucket.
	r.handle("POST /v1/invitations/{id}/resend", http.HandlerFunc(h.HandleResend),
		append(r.member("invitation.resend", rolesWith(policy.CapInvite), false, httpx.MutationLimit),
			httpx.RateLimitByIPAndPathValue(httpx.InviteTokenLimit, "id"))...,
	)
	r.handle("POST /v1/invitations/{id}/cancel", http.HandlerFunc(h.HandleCancel),
		r.member("invitation.cancel", rolesWith(policy.CapInvite), true, httpx.MutationLimit)...,
	)
}

func (r *Router) registerInviteLinks() {
	h := &InviteLinkHandler{
		Invitations:   r.InvitationService,
		Organizations: r.OrganizationService,
	}

	// GET /v1/invites/{token} - public, strict rate limit by IP
	r.handle("GET /v1/invites/{token}", http.HandlerFunc(h.HandleLookup),
		httpx.RateLimitByIP(httpx.InviteTokenLimit),
	)

	// POST /v1/invites/{token}/accept - identity gate only; the caller has no
	// organization yet
	r.handle("POST /v1/invites/{token}/accept", http.HandlerFunc(h.HandleAccept),
		httpx.RateLimitByIP(httpx.InviteTokenLimit),
		authenticate(r.gates, "invitation.accept"),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.ReadLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.ReadLimit),
		),
	)
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
