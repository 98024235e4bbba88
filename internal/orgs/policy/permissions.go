package policy

import (
	"slices"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
)

// Capability is one thing a role may do inside its organization.
type Capability string

const (
	CapViewOrganization Capability = "view_organization"
	CapViewMembers      Capability = "view_members"
	CapViewInvitations  Capability = "view_invitations"
	CapEditSettings     Capability = "edit_settings"
	CapInvite           Capability = "invite"
	CapChangeRoles      Capability = "change_roles"
	CapRemoveMembers    Capability = "remove_members"
	CapManageBilling    Capability = "manage_billing"
	CapEditRecords      Capability = "edit_records"
	CapDeleteRecords    Capability = "delete_records"
	CapRecordPayments   Capability = "record_payments"
	CapVoidInvoices     Capability = "void_invoices"
)

// AllCapabilities in display order.
var AllCapabilities = []Capability{
	CapViewOrganization, CapViewMembers, CapViewInvitations, CapEditSettings,
	CapInvite, CapChangeRoles, CapRemoveMembers, CapManageBilling,
	CapEditRecords, CapDeleteRecords, CapRecordPayments, CapVoidInvoices,
}

var matrix = map[domain.Role]map[Capability]bool{
	domain.RoleOwner: {
		CapViewOrganization: true, CapViewMembers: true, CapViewInvitations: true,
		CapEditSettings: true, CapInvite: true, CapChangeRoles: true,
		CapRemoveMembers: true, CapManageBilling: true, CapEditRecords: true,
		CapDeleteRecords: true, CapRecordPayments: true, CapVoidInvoices: true,
	},
	domain.RoleAdmin: {
		CapViewOrganization: true, CapViewMembers: true, CapViewInvitations: true,
		CapInvite: true, CapChangeRoles: true, CapRemoveMembers: true,
		CapEditRecords: true, CapDeleteRecords: true, CapRecordPayments: true,
	},
	domain.RoleMember: {
		CapViewOrganization: true, CapViewMembers: true, CapEditRecords: true,
	},
}

// teamCapabilities are meaningless without a second seat.
var teamCapabilities = map[Capability]bool{
	CapInvite:        true,
	CapViewMembers:   true,
	CapChangeRoles:   true,
	CapRemoveMembers: true,
}

// Capabilities returns the full capability map for a role on a plan. Unknown
// roles get nothing.
func Capabilities(role domain.Role, org *domain.Organization) map[Capability]bool {
	out := make(map[Capability]bool, len(AllCapabilities))
	for _, c := range AllCapabilities {
		out[c] = Can(role, org, c)
	}
	return out
}

// Can reports whether role holds capability c in org.
func Can(role domain.Role, org *domain.Organization, c Capability) bool {
	if org != nil && org.IsSolo() && teamCapabilities[c] {
		return false
	}
	if c == CapInvite && role == domain.RoleMember && org != nil && org.Settings.AllowMembersToInvite {
		return true
	}
	return matrix[role][c]
}

// RolesFor builds the role gate allow-list for an operation in org. On a
// solo plan team capabilities are granted to nobody, except invite: a solo
// owner inviting is answered by the seat check with SeatsExhausted.
func RolesFor(c Capability, org *domain.Organization) []domain.Role {
	if org.IsSolo() && teamCapabilities[c] && c != CapInvite {
		return nil
	}

	roles := granted(c)
	if c == CapInvite && org.Settings.AllowMembersToInvite && !slices.Contains(roles, domain.RoleMember) {
		roles = append(roles, domain.RoleMember)
	}
	return roles
}

// granted lists the roles the matrix gives c, in role order.
func granted(c Capability) []domain.Role {
	roles := make([]domain.Role, 0, len(domain.AllRoles))
	for _, r := range domain.AllRoles {
		if matrix[r][c] {
			roles = append(roles, r)
		}
	}
	return roles
}

// CheckInvitedRole stops an inviter from granting a role they could not
// assign by changing roles. Members may only invite members.
func CheckInvitedRole(inviter, invited domain.Role) error {
	if invited == domain.RoleMember || matrix[inviter][CapChangeRoles] {
		return nil
	}
	return &domain.InsufficientPermissionsError{
		Required: granted(CapChangeRoles),
		Actual:   inviter,
	}
}

// CheckInvitationOwner lets owners and admins manage any invitation, and
// everyone else only the ones they sent.
func CheckInvitationOwner(actor *domain.Member, inv *domain.Invitation) error {
	if matrix[actor.Role][CapChangeRoles] || inv.InvitedByUserID == actor.UserID {
		return nil
	}
	return &domain.InsufficientPermissionsError{
		Required: granted(CapChangeRoles),
		Actual:   actor.Role,
	}
}

// CheckTarget applies the rules that hold regardless of the actor's role:
// the owner membership is untouchable and nobody acts on themself.
func CheckTarget(actor, target *domain.Member) error {
	if target.IsOwner() {
		return domain.ErrCannotModifyOwner
	}
	if actor.ID == target.ID || actor.UserID == target.UserID {
		return domain.ErrSelfActionForbidden
	}
	return nil
}
