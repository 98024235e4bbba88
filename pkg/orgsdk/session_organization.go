package orgsdk

import (
	"context"
	"net/http"
)

// CreateOrganization signs the session user up as owner of a new organization.
func (s *Session) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*CreateOrganizationResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/organizations", req)
	if err != nil {
		return nil, err
	}

	var out CreateOrganizationResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrganization returns the session user's organization.
func (s *Session) GetOrganization(ctx context.Context) (*OrganizationResponse, error) {
	var out OrganizationResponse
	if err := s.getJSON(ctx, "/v1/organization", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings changes organization settings. Owner only.
func (s *Session) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*OrganizationResponse, error) {
	resp, err := s.do(ctx, http.MethodPatch, "/v1/organization/settings", req)
	if err != nil {
		return nil, err
	}

	var out OrganizationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPermissions returns the session user's capabilities.
func (s *Session) GetPermissions(ctx context.Context) (*PermissionsResponse, error) {
	var out PermissionsResponse
	if err := s.getJSON(ctx, "/v1/organization/permissions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
