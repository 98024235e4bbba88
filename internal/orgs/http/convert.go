package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
)

// pathID reads the {id} path value. Anything that is not a ULID cannot name
// a stored row and is reported as missing.
func pathID(r *http.Request, missing error) (string, error) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		return "", missing
	}
	return id.String(), nil
}

func toOrganizationResponse(v service.OrganizationView) orgsdk.OrganizationResponse {
	org := v.Organization
	return orgsdk.OrganizationResponse{
		ID:                 org.ID,
		Name:               org.Name,
		OwnerUserID:        org.OwnerUserID,
		Plan:               string(org.Plan),
		MaxSeats:           org.MaxSeats,
		CurrentSeats:       org.CurrentSeats,
		AvailableSeats:     v.AvailableSeats,
		PendingInvitations: v.PendingInvitations,
		Settings: orgsdk.Settings{
			RequireAdminApprovalForDeletes: org.Settings.RequireAdminApprovalForDeletes,
			AllowMembersToInvite:           org.Settings.AllowMembersToInvite,
		},
		Billing: orgsdk.Billing{
			Status:    org.Billing.Status,
			PeriodEnd: org.Billing.PeriodEnd,
			TrialEnd:  org.Billing.TrialEnd,
		},
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

func toMemberResponse(m domain.Member) orgsdk.MemberResponse {
	return orgsdk.MemberResponse{
		ID:              m.ID,
		UserID:          m.UserID,
		Email:           m.Email,
		Name:            m.Name,
		Role:            string(m.Role),
		Status:          string(m.Status),
		InvitedByUserID: m.InvitedByUserID,
		InvitedAt:       m.InvitedAt,
		JoinedAt:        m.JoinedAt,
		LastActiveAt:    m.LastActiveAt,
	}
}

func toInvitationResponse(inv domain.Invitation, acceptURL string) orgsdk.InvitationResponse {
	return orgsdk.InvitationResponse{
		ID:               inv.ID,
		Email:            inv.Email,
		Role:             string(inv.Role),
		Status:           string(inv.Status),
		InvitedByUserID:  inv.InvitedByUserID,
		InvitedByName:    inv.InvitedByName,
		AcceptedByUserID: inv.AcceptedByUserID,
		CreatedAt:        inv.CreatedAt,
		ExpiresAt:        inv.ExpiresAt,
		AcceptURL:        acceptURL,
	}
}
