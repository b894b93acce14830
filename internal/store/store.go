package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized is returned when the caller has no standing to perform
	// the operation on this record (wrong party, not the owner, not the blocker).
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidState is returned when an operation is attempted against a
	// record whose current status does not allow it.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrAlreadyConnected is returned when requesting a connection that is
	// already accepted.
	ErrAlreadyConnected = errors.New("users are already connected")

	// ErrAlreadyPending is returned when a pending request already exists for
	// the pair, in either direction.
	ErrAlreadyPending = errors.New("a connection request is already pending")

	// ErrBlocked is returned when a blocked relationship forbids the operation.
	// It deliberately does not reveal which side placed the block.
	ErrBlocked = errors.New("cannot connect with this user")

	// ErrSelfConnection is returned when a user attempts to connect with themselves.
	ErrSelfConnection = errors.New("cannot connect with yourself")

	// ErrInvalidRecipients is returned when a connection share targets a user
	// who is not an accepted connection of the owner.
	ErrInvalidRecipients = errors.New("recipients must be accepted connections")

	// ErrNotAGrantee is returned when a user acts on a share they were never
	// granted access to.
	ErrNotAGrantee = errors.New("no grant exists for this user")
)

// ConnectionStoreIface exposes all connection graph operations.
// No handler MAY query the connections table directly; all access goes
// through this interface.
type ConnectionStoreIface interface {
	Request(ctx context.Context, requesterID, targetID string) (*Connection, error)
	Accept(ctx context.Context, connectionID, byUserID string) (*Connection, error)
	Remove(ctx context.Context, connectionID, byUserID string) error
	Block(ctx context.Context, blockerID, targetID, reason string) (*Connection, error)
	Unblock(ctx context.Context, blockerID, targetID string) error
	Relationship(ctx context.Context, userAID, userBID string) (*Connection, error)
	GetByID(ctx context.Context, id string) (*Connection, error)
	ListForUser(ctx context.Context, userID, status string) ([]*Connection, error)
	IsBlocked(ctx context.Context, userAID, userBID string) (bool, error)
	IsAccepted(ctx context.Context, userAID, userBID string) (bool, error)
}

// ShareStoreIface exposes all share policy and grant operations.
type ShareStoreIface interface {
	Upsert(ctx context.Context, p UpsertShareParams) (*ShareConfig, string, error)
	Revoke(ctx context.Context, shareConfigID, byUserID string) error
	GetByID(ctx context.Context, id string) (*ShareConfig, error)
	GetActiveByItem(ctx context.Context, itemID, itemType string) (*ShareConfig, error)
	GetActiveByTokenHash(ctx context.Context, tokenHash string) (*ShareConfig, error)
	IncrementAccessCount(ctx context.Context, id string) error
	AcceptGrant(ctx context.Context, shareConfigID, recipientUserID string) (*ShareGrant, error)
	DeclineOrLeave(ctx context.Context, shareConfigID, recipientUserID string) error
	GetGrant(ctx context.Context, shareConfigID, recipientUserID string) (*ShareGrant, error)
	ListGrants(ctx context.Context, shareConfigID string) ([]*ShareGrant, error)
	ListByOwner(ctx context.Context, ownerID, itemType string) ([]*ShareConfig, error)
	ListForRecipient(ctx context.Context, viewerID, itemType string) ([]*SharedWithMe, error)
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
