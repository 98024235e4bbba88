package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
)

type OrganizationHandler struct {
	Organizations *service.OrganizationService
}

// HandleCreate godoc
//
//	@Summary		Create Organization
//	@Description	Sign up a new organization. The caller becomes its owner and takes the first seat.
//	@Description	A user belongs to at most one organization.
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Param			request	body		orgsdk.CreateOrganizationRequest	true	"Organization name and plan"
//	@Success		201		{object}	orgsdk.CreateOrganizationResponse
//	@Failure		400		{object}	orgsdk.ErrorResponse	"invalid_request, validation_error"
//	@Failure		401		{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		409		{object}	orgsdk.ErrorResponse	"already_in_organization"
//	@Security		BearerAuth
//	@Router			/v1/organizations [post].
func (h *OrganizationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := identityFrom(ctx)

	var req orgsdk.CreateOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	org, owner, err := h.Organizations.Create(ctx, id, service.CreateOrganizationParams{
		Name: req.Name,
		Plan: req.Plan,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.Organizations.Get(ctx, authz.Scope{Organization: org})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, orgsdk.CreateOrganizationResponse{
		Organization: toOrganizationResponse(view),
		Member:       toMemberResponse(owner),
	})
}

// HandleGet godoc
//
//	@Summary		Get Organization
//	@Description	The caller's organization with seat usage.
//	@Tags			Organization
//	@Produce		json
//	@Success		200	{object}	orgsdk.OrganizationResponse
//	@Failure		401	{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	orgsdk.ErrorResponse	"no_organization, not_a_member, member_not_active"
//	@Security		BearerAuth
//	@Router			/v1/organization [get].
func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sc, _ := scopeFrom(r.Context())

	view, err := h.Organizations.Get(r.Context(), sc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(view))
}

// HandleUpdateSettings godoc
//
//	@Summary		Update Settings
//	@Description	Partially update organization settings. Owner only.
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Param			request	body		orgsdk.UpdateSettingsRequest	true	"Settings to change"
//	@Success		200		{object}	orgsdk.OrganizationResponse
//	@Failure		400		{object}	orgsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403		{object}	orgsdk.ErrorResponse	"insufficient_permissions"
//	@Security		BearerAuth
//	@Router			/v1/organization/settings [patch].
func (h *OrganizationHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sc, _ := scopeFrom(ctx)

	var req orgsdk.UpdateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	if _, err := h.Organizations.UpdateSettings(ctx, sc, service.UpdateSettingsParams{
		RequireAdminApprovalForDeletes: req.RequireAdminApprovalForDeletes,
		AllowMembersToInvite:           req.AllowMembersToInvite,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.Organizations.Get(ctx, sc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(view))
}

// HandlePermissions godoc
//
//	@Summary		Caller Permissions
//	@Description	Capabilities the caller holds in their organization, for UIs to render.
//	@Tags			Organization
//	@Produce		json
//	@Success		200	{object}	orgsdk.PermissionsResponse
//	@Failure		401	{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	orgsdk.ErrorResponse	"no_organization, not_a_member, member_not_active"
//	@Security		BearerAuth
//	@Router			/v1/organization/permissions [get].
func (h *OrganizationHandler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	sc, _ := scopeFrom(r.Context())

	caps := h.Organizations.Permissions(sc)
	out := make(map[string]bool, len(caps))
	for c, ok := range caps {
		out[string(c)] = ok
	}

	httpx.WriteJSON(w, http.StatusOK, orgsdk.PermissionsResponse{
		Role:         string(sc.Membership.Role),
		Plan:         string(sc.Organization.Plan),
		Capabilities: out,
	})
}
