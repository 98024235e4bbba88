package orgsdk

import (
	"context"
	"net/http"
)

// LookupInvitation resolves an invitation token without signing in.
func (c *SDKClient) LookupInvitation(ctx context.Context, token string) (*InvitationLookupResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/invites/"+pathID(token), nil, "")
	if err != nil {
		return nil, err
	}

	var out InvitationLookupResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvitation joins the invitation's organization as the session user.
func (s *Session) AcceptInvitation(ctx context.Context, token string) (*AcceptInvitationResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/invites/"+pathID(token)+"/accept", nil)
	if err != nil {
		return nil, err
	}

	var out AcceptInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
