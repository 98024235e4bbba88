package domain

import "time"

type Organization struct {
	ID           string
	Name         string
	OwnerUserID  string // immutable
	Plan         Plan
	MaxSeats     int
	CurrentSeats int // active memberships, owner included
	Settings     Settings
	Billing      Billing
	Version      int64 // bumped on every seat mutation
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AvailableSeats may be negative if capacity was lowered below usage by the
// billing side. Callers must treat <= 0 as full.
func (o *Organization) AvailableSeats() int {
	return o.MaxSeats - o.CurrentSeats
}

// IsSolo reports whether the organization can never hold a second member.
func (o *Organization) IsSolo() bool {
	return o.Plan == PlanSolo || o.MaxSeats <= 1
}

// Settings are policy toggles consulted by callers.
type Settings struct {
	RequireAdminApprovalForDeletes bool `json:"require_admin_approval_for_deletes"`
	AllowMembersToInvite           bool `json:"allow_members_to_invite"`
}

// Billing is owned by the billing collaborator. Read only here.
type Billing struct {
	Status    string
	PeriodEnd *time.Time
	TrialEnd  *time.Time
}
