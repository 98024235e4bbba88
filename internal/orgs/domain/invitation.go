package domain

import (
	"fmt"
	"time"
)

// InvitationTTL is how long an invitation link stays valid after it is
// created or resent.
const InvitationTTL = 7 * 24 * time.Hour

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationCanceled InvitationStatus = "canceled"
	// InvitationExpired is never stored. It is derived from ExpiresAt.
	InvitationExpired InvitationStatus = "expired"
)

func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationCanceled, InvitationExpired:
		return true
	}
	return false
}

// Stored reports whether s may be persisted.
func (s InvitationStatus) Stored() bool {
	return s == InvitationPending || s == InvitationAccepted || s == InvitationCanceled
}

func ParseInvitationStatus(s string) (InvitationStatus, error) {
	st := InvitationStatus(s)
	if !st.Stored() {
		return "", fmt.Errorf("invalid stored invitation status %q", s)
	}
	return st, nil
}

type Invitation struct {
	ID               string
	TokenHash        string // SHA-256 fingerprint of the public token
	TokenSealed      []byte // AES-GCM sealed token, so resend can re-deliver the same link
	OrganizationID   string
	Email            string // lower-case
	Role             Role
	InvitedByUserID  string
	InvitedByName    string
	AcceptedByUserID string // set once accepted
	Status           InvitationStatus
	CreatedAt        time.Time
	ExpiresAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveStatus folds expiry into the stored status.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// Outstanding reports whether the invitation still holds a seat reservation.
func (i *Invitation) Outstanding(now time.Time) bool {
	return i.EffectiveStatus(now) == InvitationPending
}
