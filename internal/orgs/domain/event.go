package domain

import (
	"encoding/json"
	"time"
)

// EventType names a notification for external collaborators.
type EventType string

const (
	EventInvitationCreated  EventType = "invitation.created"
	EventInvitationResent   EventType = "invitation.resent"
	EventInvitationCanceled EventType = "invitation.canceled"
	EventMembershipChanged  EventType = "membership.changed"
)

// Event is an outbox row written in the same transaction as the change it
// describes, and delivered after commit.
type Event struct {
	ID             string
	Type           EventType
	OrganizationID string
	Payload        json.RawMessage
	CreatedAt      time.Time
	DeliveredAt    *time.Time
	Attempts       int
}

// InvitationEventPayload is the body of invitation.* events. AcceptURL is
// only populated for created/resent so the mail collaborator can deliver it.
type InvitationEventPayload struct {
	InvitationID     string    `json:"invitation_id"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	InvitedByName    string    `json:"invited_by_name"`
	ExpiresAt        time.Time `json:"expires_at"`
	AcceptURL        string    `json:"accept_url,omitempty"`
}

// MembershipChange describes what happened to a membership.
type MembershipChange string

const (
	MembershipJoined      MembershipChange = "joined"
	MembershipRoleChanged MembershipChange = "role_changed"
	MembershipRemoved     MembershipChange = "removed"
)

// MembershipEventPayload is the body of membership.changed events.
type MembershipEventPayload struct {
	Change         MembershipChange `json:"change"`
	OrganizationID string           `json:"organization_id"`
	MemberID       string           `json:"member_id"`
	UserID         string           `json:"user_id"`
	Role           Role             `json:"role"`
	PreviousRole   Role             `json:"previous_role,omitempty"`
	ActorUserID    string           `json:"actor_user_id"`
	CurrentSeats   int              `json:"current_seats"`
}
