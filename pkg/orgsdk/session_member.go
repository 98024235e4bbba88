package orgsdk

import (
	"context"
	"net/http"
)

// ListMembers lists the organization's members, owner first.
func (s *Session) ListMembers(ctx context.Context) (*ListMembersResponse, error) {
	var out ListMembersResponse
	if err := s.getJSON(ctx, "/v1/members", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeRole sets a member's role. Requires owner or admin.
func (s *Session) ChangeRole(ctx context.Context, memberID, role string) (*MemberResponse, error) {
	resp, err := s.do(ctx, http.MethodPatch, "/v1/members/"+pathID(memberID)+"/role", ChangeRoleRequest{Role: role})
	if err != nil {
		return nil, err
	}

	var out MemberResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveMember removes a member and frees their seat. Requires owner or admin.
func (s *Session) RemoveMember(ctx context.Context, memberID string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/v1/members/"+pathID(memberID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
