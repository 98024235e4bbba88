package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale is returned by compare-and-set writes whose precondition no
	// longer holds: the row changed since it was read.
	ErrStale = errors.New("store: stale write")

	// ErrNoCapacity is returned by IncrementSeats when the organization is
	// at or over its seat limit.
	ErrNoCapacity = errors.New("store: no seat capacity")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories so a Tx-scoped store looks exactly like the root
// one. Code running inside WithTx must only touch the tx it was handed.
type Store interface {
	Organizations() Organizations
	Members() Members
	UserOrganizations() UserOrganizations
	Invitations() Invitations
	Events() Events

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Organizations interface {
	CreateOrganization(ctx context.Context, org domain.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
	UpdateSettings(ctx context.Context, orgID string, s domain.Settings, now time.Time) error

	// IncrementSeats adds one seat if the organization is still at
	// expectedVersion and below max_seats, bumping the version.
	// Returns ErrStale on a version miss and ErrNoCapacity when full.
	IncrementSeats(ctx context.Context, orgID string, expectedVersion int64, now time.Time) error

	// DecrementSeats releases one seat if the organization is still at
	// expectedVersion, bumping the version. The owner's seat is never released.
	DecrementSeats(ctx context.Context, orgID string, expectedVersion int64, now time.Time) error
}

type Members interface {
	CreateMember(ctx context.Context, m domain.Member) error
	GetMemberByID(ctx context.Context, orgID, memberID string) (domain.Member, error)
	GetMemberByUserID(ctx context.Context, orgID, userID string) (domain.Member, error)

	// GetActiveMemberByEmail matches case-insensitively.
	GetActiveMemberByEmail(ctx context.Context, orgID, email string) (domain.Member, error)

	// ListMembers returns the owner first, then members by join time.
	ListMembers(ctx context.Context, orgID string) ([]domain.Member, error)
	CountActiveMembers(ctx context.Context, orgID string) (int, error)

	// UpdateMemberRole only touches non-owner rows; ErrNotFound otherwise.
	UpdateMemberRole(ctx context.Context, orgID, memberID string, role domain.Role) error

	// DeleteMember only removes non-owner rows; ErrNotFound otherwise.
	DeleteMember(ctx context.Context, orgID, memberID string) error

	TouchLastActive(ctx context.Context, memberID string, at time.Time) error
}

// UserOrganizations maps a user to the single organization they belong to.
type UserOrganizations interface {
	// MapUser returns ErrAlreadyExists if the user already has an organization.
	MapUser(ctx context.Context, userID, orgID string, now time.Time) error
	GetOrganizationIDForUser(ctx context.Context, userID string) (string, error)
	UnmapUser(ctx context.Context, userID string) error
}

type Invitations interface {
	CreateInvitation(ctx context.Context, inv domain.Invitation) error
	GetInvitationByID(ctx context.Context, orgID, id string) (domain.Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// ListInvitations returns all invitations of an organization, newest first.
	ListInvitations(ctx context.Context, orgID string) ([]domain.Invitation, error)

	// ListPendingInvitations returns rows stored as pending, expired or not.
	ListPendingInvitations(ctx context.Context, orgID string) ([]domain.Invitation, error)

	// ExtendInvitation sets expires_at on a still pending invitation.
	// Returns ErrStale if it is no longer pending.
	ExtendInvitation(ctx context.Context, id string, expiresAt, now time.Time) error

	// TransitionInvitation moves an invitation out of pending. Only one
	// caller can win; the rest get ErrStale.
	TransitionInvitation(ctx context.Context, id string, to domain.InvitationStatus, acceptedBy string, now time.Time) error
}

// Events is the outbox of notifications for external collaborators.
type Events interface {
	AppendEvent(ctx context.Context, ev domain.Event) error
	ListUndelivered(ctx context.Context, limit int) ([]domain.Event, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error

	// PurgeDelivered deletes events delivered before the cutoff.
	PurgeDelivered(ctx context.Context, before time.Time) (int64, error)
}
