package orgsdk

import (
	"context"
	"net/http"
)

// Invite creates an invitation. The response carries the accept link.
func (s *Session) Invite(ctx context.Context, req InviteRequest) (*InvitationResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/invitations", req)
	if err != nil {
		return nil, err
	}

	var out InvitationResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvitations lists every invitation of the organization.
func (s *Session) ListInvitations(ctx context.Context) (*ListInvitationsResponse, error) {
	var out ListInvitationsResponse
	if err := s.getJSON(ctx, "/v1/invitations", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendInvitation extends a pending invitation and re-issues its link.
func (s *Session) ResendInvitation(ctx context.Context, invitationID string) (*InvitationResponse, error) {
	return s.invitationAction(ctx, invitationID, "resend")
}

// CancelInvitation makes a pending invitation unusable.
func (s *Session) CancelInvitation(ctx context.Context, invitationID string) (*InvitationResponse, error) {
	return s.invitationAction(ctx, invitationID, "cancel")
}

func (s *Session) invitationAction(ctx context.Context, invitationID, action string) (*InvitationResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/invitations/"+pathID(invitationID)+"/"+action, nil)
	if err != nil {
		return nil, err
	}

	var out InvitationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
