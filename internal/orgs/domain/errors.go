package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Gate failures.
var (
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrNoOrganization          = errors.New("user has no organization")
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrNotAMember              = errors.New("user is not a member of the organization")
	ErrMemberNotActive         = errors.New("membership is not active")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// Lifecycle and mutation failures.
var (
	ErrSeatsExhausted        = errors.New("no seats available")
	ErrEmailAlreadyMember    = errors.New("email already belongs to an active member")
	ErrInvitationPending     = errors.New("an invitation for this email is already pending")
	ErrInvitationInvalid     = errors.New("invitation is invalid")
	ErrInvitationExpired     = errors.New("invitation has expired")
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrEmailMismatch         = errors.New("signed in email does not match the invitation")
	ErrAlreadyInOrganization = errors.New("user already belongs to an organization")
	ErrCannotModifyOwner     = errors.New("the organization owner cannot be modified")
	ErrSelfActionForbidden   = errors.New("cannot perform this action on your own membership")
	ErrMemberNotFound        = errors.New("member not found")
	ErrInvalidRole           = errors.New("role must be admin or member")
	ErrInvalidPlan           = errors.New("unknown plan")
)

// ErrConflict is the only retryable error. A concurrent writer changed the
// organization between read and write; re-fetch and retry once.
var ErrConflict = errors.New("concurrent modification, retry")

// InsufficientPermissionsError carries the role gate's allow-list and the
// caller's role. errors.Is(err, ErrInsufficientPermissions) matches it.
type InsufficientPermissionsError struct {
	Required []Role
	Actual   Role
}

func (e *InsufficientPermissionsError) Error() string {
	return fmt.Sprintf("insufficient permissions: requires one of [%s], have %s",
		strings.Join(RoleStrings(e.Required), ", "), e.Actual)
}

func (e *InsufficientPermissionsError) Is(target error) bool {
	return target == ErrInsufficientPermissions
}
