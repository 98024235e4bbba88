package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
)

// InviteLinkHandler serves the endpoints behind an invitation link. The
// token in the path is the only credential for the lookup.
type InviteLinkHandler struct {
	Invitations   *service.InvitationService
	Organizations *service.OrganizationService
}

// HandleLookup godoc
//
//	@Summary		Look Up Invitation
//	@Description	Resolve an invitation token so the invitee can see what they are joining.
//	@Description	Unknown, canceled and already accepted tokens are indistinguishable.
//	@Tags			Invite Links
//	@Produce		json
//	@Param			token	path		string	true	"Invitation token"
//	@Success		200		{object}	orgsdk.InvitationLookupResponse
//	@Failure		404		{object}	orgsdk.ErrorResponse	"invitation_invalid"
//	@Failure		410		{object}	orgsdk.ErrorResponse	"invitation_expired"
//	@Failure		429		{object}	orgsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/v1/invites/{token} [get].
func (h *InviteLinkHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	details, err := h.Invitations.Lookup(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv := details.Invitation
	httpx.WriteJSON(w, http.StatusOK, orgsdk.InvitationLookupResponse{
		OrganizationName: details.OrganizationName,
		Email:            inv.Email,
		Role:             string(inv.Role),
		InvitedByName:    inv.InvitedByName,
		ExpiresAt:        inv.ExpiresAt,
	})
}

// HandleAccept godoc
//
//	@Summary		Accept Invitation
//	@Description	Join the invitation's organization. The signed in email must match the
//	@Description	invited one and the caller must not already belong to an organization.
//	@Tags			Invite Links
//	@Produce		json
//	@Param			token	path		string	true	"Invitation token"
//	@Success		200		{object}	orgsdk.AcceptInvitationResponse
//	@Failure		401		{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403		{object}	orgsdk.ErrorResponse	"email_mismatch"
//	@Failure		404		{object}	orgsdk.ErrorResponse	"invitation_invalid"
//	@Failure		409		{object}	orgsdk.ErrorResponse	"seats_exhausted, already_in_organization, conflict"
//	@Failure		410		{object}	orgsdk.ErrorResponse	"invitation_expired"
//	@Security		BearerAuth
//	@Router			/v1/invites/{token}/accept [post].
func (h *InviteLinkHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := identityFrom(ctx)

	res, err := h.Invitations.Accept(ctx, id, r.PathValue("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.Organizations.Get(ctx, authz.Scope{Organization: res.Organization})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, orgsdk.AcceptInvitationResponse{
		Organization: toOrganizationResponse(view),
		Member:       toMemberResponse(res.Member),
	})
}
