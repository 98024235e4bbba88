package orgsdk

import "time"

// ============================================================================
// Error Envelope
// ============================================================================

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	// Error is a stable machine-readable code (e.g. "seats_exhausted")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`

	// RequiredRoles and ActualRole are set for insufficient_permissions
	RequiredRoles []string `json:"required_roles,omitempty"`
	ActualRole    string   `json:"actual_role,omitempty"`

	// Details maps JSON field names to the rule they broke (validation_error)
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Organization Types
// ============================================================================

// CreateOrganizationRequest signs the caller up as owner of a new organization.
type CreateOrganizationRequest struct {
	Name string `json:"name" example:"Harbour Electrical"`
	Plan string `json:"plan" example:"team" enums:"solo,team,business"`
}

// Settings are the owner-editable organization toggles.
type Settings struct {
	RequireAdminApprovalForDeletes bool `json:"require_admin_approval_for_deletes"`
	AllowMembersToInvite           bool `json:"allow_members_to_invite"`
}

// UpdateSettingsRequest is a partial update; omitted fields are unchanged.
type UpdateSettingsRequest struct {
	RequireAdminApprovalForDeletes *bool `json:"require_admin_approval_for_deletes,omitempty"`
	AllowMembersToInvite           *bool `json:"allow_members_to_invite,omitempty"`
}

// Billing is read-only data owned by the billing system.
type Billing struct {
	Status    string     `json:"status,omitempty"`
	PeriodEnd *time.Time `json:"period_end,omitempty"`
	TrialEnd  *time.Time `json:"trial_end,omitempty"`
}

// OrganizationResponse describes an organization and its seat usage.
type OrganizationResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	OwnerUserID        string    `json:"owner_user_id"`
	Plan               string    `json:"plan"`
	MaxSeats           int       `json:"max_seats"`
	CurrentSeats       int       `json:"current_seats"`
	AvailableSeats     int       `json:"available_seats"`
	PendingInvitations int       `json:"pending_invitations"`
	Settings           Settings  `json:"settings"`
	Billing            Billing   `json:"billing"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreateOrganizationResponse is returned by signup.
type CreateOrganizationResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Member       MemberResponse       `json:"member"`
}

// PermissionsResponse lists what the caller may do.
type PermissionsResponse struct {
	Role         string          `json:"role"`
	Plan         string          `json:"plan"`
	Capabilities map[string]bool `json:"capabilities"`
}

// ============================================================================
// Member Types
// ============================================================================

// MemberResponse describes a membership.
type MemberResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Email           string     `json:"email"`
	Name            string     `json:"name,omitempty"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	InvitedByUserID string     `json:"invited_by_user_id,omitempty"`
	InvitedAt       *time.Time `json:"invited_at,omitempty"`
	JoinedAt        time.Time  `json:"joined_at"`
	LastActiveAt    *time.Time `json:"last_active_at,omitempty"`
}

// ListMembersResponse wraps a member list.
type ListMembersResponse struct {
	Members []MemberResponse `json:"members"`
}

// ChangeRoleRequest sets a member's role to admin or member.
type ChangeRoleRequest struct {
	Role string `json:"role" example:"admin" enums:"admin,member"`
}

// ============================================================================
// Invitation Types
// ============================================================================

// InviteRequest invites an email address into the caller's organization.
type InviteRequest struct {
	Email string `json:"email" example:"alice@example.com"`
	Role  string `json:"role" example:"member" enums:"admin,member"`
}

// InvitationResponse describes an invitation. AcceptURL is only present in
// responses to the inviter (create and resend).
type InvitationResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Status           string    `json:"status" enums:"pending,accepted,canceled,expired"`
	InvitedByUserID  string    `json:"invited_by_user_id"`
	InvitedByName    string    `json:"invited_by_name,omitempty"`
	AcceptedByUserID string    `json:"accepted_by_user_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	AcceptURL        string    `json:"accept_url,omitempty"`
}

// ListInvitationsResponse wraps an invitation list, newest first.
type ListInvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

// InvitationLookupResponse is what an invitee sees before accepting.
type InvitationLookupResponse struct {
	OrganizationName string    `json:"organization_name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	InvitedByName    string    `json:"invited_by_name,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// AcceptInvitationResponse is returned once the caller has joined.
type AcceptInvitationResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Member       MemberResponse       `json:"member"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains the status of individual components (only in /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// IdentityKeys indicates whether identity provider keys are loaded
	IdentityKeys string `json:"identity_keys"`
}
