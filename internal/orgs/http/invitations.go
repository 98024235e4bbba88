package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
)

type InvitationsHandler struct {
	Invitations *service.InvitationService
}

// HandleList godoc
//
//	@Summary		List Invitations
//	@Description	Every invitation of the organization, newest first. Pending invitations past
//	@Description	their expiry are reported as expired.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{object}	orgsdk.ListInvitationsResponse
//	@Failure		401	{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	orgsdk.ErrorResponse	"insufficient_permissions"
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sc, _ := scopeFrom(r.Context())

	invs, err := h.Invitations.List(r.Context(), sc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := orgsdk.ListInvitationsResponse{Invitations: make([]orgsdk.InvitationResponse, 0, len(invs))}
	for _, inv := range invs {
		out.Invitations = append(out.Invitations, toInvitationResponse(inv, ""))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Invite
//	@Description	Invite an email address as admin or member. Each pending invitation reserves a seat.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		orgsdk.InviteRequest	true	"Invitee email and role"
//	@Success		201		{object}	orgsdk.InvitationResponse
//	@Failure		400		{object}	orgsdk.ErrorResponse	"invalid_request, validation_error"
//	@Failure		401		{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403		{object}	orgsdk.ErrorResponse	"insufficient_permissions"
//	@Failure		409		{object}	orgsdk.ErrorResponse	"seats_exhausted, email_already_member, invitation_pending"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sc, _ := scopeFrom(ctx)

	var req orgsdk.InviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	issued, err := h.Invitations.Invite(ctx, sc, service.InviteParams{Email: req.Email, Role: req.Role})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvitationResponse(issued.Invitation, issued.AcceptURL))
}

// HandleResend godoc
//
//	@Summary		Resend Invitation
//	@Description	Extend a pending invitation by another week and re-issue the same link.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Invitation ID"
//	@Success		200	{object}	orgsdk.InvitationResponse
//	@Failure		401	{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	orgsdk.ErrorResponse	"insufficient_permissions"
//	@Failure		404	{object}	orgsdk.ErrorResponse	"invitation_not_found, invitation_invalid"
//	@Failure		409	{object}	orgsdk.ErrorResponse	"seats_exhausted"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/resend [post].
func (h *InvitationsHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	sc, _ := scopeFrom(r.Context())

	id, err := pathID(r, domain.ErrInvitationNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	issued, err := h.Invitations.Resend(r.Context(), sc, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInvitationResponse(issued.Invitation, issued.AcceptURL))
}

// HandleCancel godoc
//
//	@Summary		Cancel Invitation
//	@Description	Make a pending invitation permanently unusable and release its seat reservation.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Invitation ID"
//	@Success		200	{object}	orgsdk.InvitationResponse
//	@Failure		401	{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	orgsdk.ErrorResponse	"insufficient_permissions"
//	@Failure		404	{object}	orgsdk.ErrorResponse	"invitation_not_found, invitation_invalid"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/cancel [post].
func (h *InvitationsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	sc, _ := scopeFrom(r.Context())

	id, err := pathID(r, domain.ErrInvitationNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Invitations.Cancel(r.Context(), sc, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInvitationResponse(inv, ""))
}
