package domain

import (
	"fmt"
	"time"
)

type MemberStatus string

const (
	// MemberPending exists for compatibility with stored data. Memberships are
	// created active; invitations carry the pending state.
	MemberPending  MemberStatus = "pending"
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberPending, MemberActive, MemberInactive:
		return true
	}
	return false
}

func ParseMemberStatus(s string) (MemberStatus, error) {
	st := MemberStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown member status %q", s)
	}
	return st, nil
}

type Member struct {
	ID              string
	OrganizationID  string
	UserID          string
	Email           string
	Name            string
	Role            Role
	Status          MemberStatus
	InvitedByUserID string // empty for the owner
	InvitedAt       *time.Time
	JoinedAt        time.Time
	LastActiveAt    *time.Time
}

func (m *Member) IsActive() bool { return m.Status == MemberActive }

func (m *Member) IsOwner() bool { return m.Role == RoleOwner }
