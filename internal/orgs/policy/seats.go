// Package policy holds the pure rules of organization access: seat
// arithmetic and the role permission matrix. Nothing here does I/O.
package policy

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
)

// ErrSeatAccounting means the stored counters cannot be right, e.g. removing
// a member would leave the organization with no seats used.
var ErrSeatAccounting = errors.New("seat accounting inconsistent")

// AvailableSeats returns free capacity, ignoring pending invitations.
func AvailableSeats(org *domain.Organization) int {
	return org.MaxSeats - org.CurrentSeats
}

// CanInvite checks that a seat remains once every outstanding invitation
// has been given its reserved seat.
func CanInvite(org *domain.Organization, outstanding int) error {
	if outstanding < 0 {
		return fmt.Errorf("%w: negative outstanding count %d", ErrSeatAccounting, outstanding)
	}
	if AvailableSeats(org)-outstanding <= 0 {
		return domain.ErrSeatsExhausted
	}
	return nil
}

// CanAccept re-checks capacity when an invitation is redeemed. The
// invitation's own reservation is being consumed, so only active members
// count. Capacity may have been lowered since the invite was issued.
func CanAccept(org *domain.Organization) error {
	if AvailableSeats(org) <= 0 {
		return domain.ErrSeatsExhausted
	}
	return nil
}

// CanRemove succeeds for active, non-owner members.
func CanRemove(org *domain.Organization, member *domain.Member) error {
	if member.IsOwner() {
		return domain.ErrCannotModifyOwner
	}
	if !member.IsActive() {
		return domain.ErrMemberNotActive
	}
	// The owner always holds a seat, so a removable member implies >= 2.
	if org.CurrentSeats < 2 {
		return fmt.Errorf("%w: organization %s has %d seats in use", ErrSeatAccounting, org.ID, org.CurrentSeats)
	}
	return nil
}
