package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
)

type MembersHandler struct {
	Members *service.MembershipService
}

// HandleList godoc
//
//	@Summary		List Members
//	@Description	Every membership of the caller's organization, owner first.
//	@Tags			Members
//	@Produce		json
//	@Success		200	{object}	orgsdk.ListMembersResponse
//	@Failure		401	{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	orgsdk.ErrorResponse	"no_organization, not_a_member, member_not_active"
//	@Security		BearerAuth
//	@Router			/v1/members [get].
func (h *MembersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sc, _ := scopeFrom(r.Context())

	members, err := h.Members.List(r.Context(), sc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := orgsdk.ListMembersResponse{Members: make([]orgsdk.MemberResponse, 0, len(members))}
	for _, m := range members {
		out.Members = append(out.Members, toMemberResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleChangeRole godoc
//
//	@Summary		Change Member Role
//	@Description	Set a member's role to admin or member. The owner cannot be changed and
//	@Description	callers cannot change their own role.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Member ID"
//	@Param			request	body		orgsdk.ChangeRoleRequest	true	"New role"
//	@Success		200		{object}	orgsdk.MemberResponse
//	@Failure		400		{object}	orgsdk.ErrorResponse	"invalid_request, validation_error"
//	@Failure		401		{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403		{object}	orgsdk.ErrorResponse	"insufficient_permissions, cannot_modify_owner, self_action_forbidden"
//	@Failure		404		{object}	orgsdk.ErrorResponse	"member_not_found"
//	@Security		BearerAuth
//	@Router			/v1/members/{id}/role [patch].
func (h *MembersHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sc, _ := scopeFrom(ctx)

	id, err := pathID(r, domain.ErrMemberNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req orgsdk.ChangeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	m, err := h.Members.ChangeRole(ctx, sc, id, service.ChangeRoleParams{Role: req.Role})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMemberResponse(m))
}

// HandleRemove godoc
//
//	@Summary		Remove Member
//	@Description	Remove a member and free their seat. The owner cannot be removed and
//	@Description	callers cannot remove themselves.
//	@Tags			Members
//	@Param			id	path	string	true	"Member ID"
//	@Success		204
//	@Failure		401	{object}	orgsdk.ErrorResponse	"unauthenticated"
//	@Failure		403	{object}	orgsdk.ErrorResponse	"insufficient_permissions, cannot_modify_owner, self_action_forbidden"
//	@Failure		404	{object}	orgsdk.ErrorResponse	"member_not_found"
//	@Failure		409	{object}	orgsdk.ErrorResponse	"conflict"
//	@Security		BearerAuth
//	@Router			/v1/members/{id} [delete].
func (h *MembersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	sc, _ := scopeFrom(r.Context())

	id, err := pathID(r, domain.ErrMemberNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Members.Remove(r.Context(), sc, id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
