package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Connection statuses.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionBlocked  = "blocked"
)

// Connection represents a row in the connections table. Exactly one row
// exists per unordered user pair; UserLow/UserHigh hold the pair in canonical
// ascending order so the unique index can enforce that.
type Connection struct {
	ID          string         `db:"id"`
	UserLow     string         `db:"user_low"`
	UserHigh    string         `db:"user_high"`
	RequesterID string         `db:"requester_id"`
	Status      string         `db:"status"`
	BlockedByID sql.NullString `db:"blocked_by_id"`
	BlockReason sql.NullString `db:"block_reason"`
	CreatedAt   time.Time      `db:"created_at"`
	RespondedAt sql.NullTime   `db:"responded_at"`
}

// Involves reports whether userID is one of the two parties.
func (c *Connection) Involves(userID string) bool {
	return c.UserLow == userID || c.UserHigh == userID
}

// OtherParty returns the counterpart of userID, or "" if userID is not a party.
func (c *Connection) OtherParty(userID string) string {
	switch userID {
	case c.UserLow:
		return c.UserHigh
	case c.UserHigh:
		return c.UserLow
	}
	return ""
}

// PairKey returns the canonical (low, high) ordering for two user IDs.
func PairKey(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// ConnectionStore is the sqlx-backed implementation of ConnectionStoreIface.
type ConnectionStore struct {
	db *sqlx.DB
}

func NewConnectionStore(db *sqlx.DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *ConnectionStore) q(query string) string { return s.db.Rebind(query) }

// Request creates a pending connection from requesterID to targetID.
// It returns ErrAlreadyConnected, ErrAlreadyPending, or ErrBlocked when a row
// for the pair already exists. Two concurrent calls for the same pair race on
// the unique pair index; the loser's insert is reported as ErrAlreadyPending.
func (s *ConnectionStore) Request(ctx context.Context, requesterID, targetID string) (*Connection, error) {
	if requesterID == targetID {
		return nil, ErrSelfConnection
	}
	low, high := PairKey(requesterID, targetID)

	existing, err := s.getByPair(ctx, low, high)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, statusConflictErr(existing.Status)
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO connections (id, user_low, user_high, requester_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, low, high, requesterID, ConnectionPending, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			// A concurrent request for the same pair won the insert. Report
			// the committed state rather than a raw constraint error.
			committed, gerr := s.getByPair(ctx, low, high)
			if gerr == nil {
				return nil, statusConflictErr(committed.Status)
			}
			return nil, ErrAlreadyPending
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func statusConflictErr(status string) error {
	switch status {
	case ConnectionAccepted:
		return ErrAlreadyConnected
	case ConnectionBlocked:
		return ErrBlocked
	default:
		return ErrAlreadyPending
	}
}

// Accept transitions a pending connection to accepted. Only the non-requester
// party may accept.
func (s *ConnectionStore) Accept(ctx context.Context, connectionID, byUserID string) (*Connection, error) {
	conn, err := s.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(byUserID) || conn.RequesterID == byUserID {
		return nil, ErrNotAuthorized
	}
	if conn.Status != ConnectionPending {
		return nil, ErrInvalidState
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE connections SET status = ?, responded_at = ? WHERE id = ? AND status = ?
	`), ConnectionAccepted, now, connectionID, ConnectionPending)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lost a race with a concurrent block or remove.
		return nil, ErrInvalidState
	}
	return s.GetByID(ctx, connectionID)
}

// Remove deletes a pending or accepted connection. Either party may remove.
// Blocked rows can only be cleared via Unblock.
func (s *ConnectionStore) Remove(ctx context.Context, connectionID, byUserID string) error {
	conn, err := s.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if !conn.Involves(byUserID) {
		return ErrNotAuthorized
	}
	if conn.Status == ConnectionBlocked {
		return ErrInvalidState
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		DELETE FROM connections WHERE id = ? AND status != ?
	`), connectionID, ConnectionBlocked)
	return err
}

// Block upserts the pair row to blocked, from any prior state. Idempotent:
// blocking an already-blocked pair succeeds without changing the original
// blocker. The reason is only ever surfaced to the blocker.
func (s *ConnectionStore) Block(ctx context.Context, blockerID, targetID, reason string) (*Connection, error) {
	if blockerID == targetID {
		return nil, ErrSelfConnection
	}
	low, high := PairKey(blockerID, targetID)
	now := time.Now().UTC()

	existing, err := s.getByPair(ctx, low, high)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == ConnectionBlocked {
			return existing, nil
		}
		_, err = s.db.ExecContext(ctx, s.q(`
			UPDATE connections
			SET status = ?, blocked_by_id = ?, block_reason = ?, responded_at = ?
			WHERE id = ?
		`), ConnectionBlocked, blockerID, reason, now, existing.ID)
		if err != nil {
			return nil, err
		}
		return s.GetByID(ctx, existing.ID)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO connections (id, user_low, user_high, requester_id, status, blocked_by_id, block_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), id, low, high, blockerID, ConnectionBlocked, blockerID, reason, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Concurrent writer created the pair row first; convert to an update.
			return s.Block(ctx, blockerID, targetID, reason)
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Unblock deletes a blocked pair row. Only the user who placed the block may
// unblock; afterwards no connection exists and either party may re-request.
func (s *ConnectionStore) Unblock(ctx context.Context, blockerID, targetID string) error {
	low, high := PairKey(blockerID, targetID)
	conn, err := s.getByPair(ctx, low, high)
	if err != nil {
		return err
	}
	if conn.Status != ConnectionBlocked {
		return ErrInvalidState
	}
	if !conn.BlockedByID.Valid || conn.BlockedByID.String != blockerID {
		return ErrNotAuthorized
	}
	_, err = s.db.ExecContext(ctx, s.q(`DELETE FROM connections WHERE id = ?`), conn.ID)
	return err
}

// Relationship returns the pair row between two users, or ErrNotFound when no
// relationship exists.
func (s *ConnectionStore) Relationship(ctx context.Context, userAID, userBID string) (*Connection, error) {
	low, high := PairKey(userAID, userBID)
	return s.getByPair(ctx, low, high)
}

// GetByID returns the connection with the given id, or ErrNotFound.
func (s *ConnectionStore) GetByID(ctx context.Context, id string) (*Connection, error) {
	var c Connection
	err := s.db.GetContext(ctx, &c, s.q(`SELECT * FROM connections WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForUser returns connections involving userID, optionally filtered by
// status, newest first.
func (s *ConnectionStore) ListForUser(ctx context.Context, userID, status string) ([]*Connection, error) {
	query := `SELECT * FROM connections WHERE (user_low = ? OR user_high = ?)`
	args := []any{userID, userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var conns []*Connection
	if err := s.db.SelectContext(ctx, &conns, s.q(query), args...); err != nil {
		return nil, err
	}
	return conns, nil
}

// IsBlocked reports whether a blocked row exists between two users, in either
// direction.
func (s *ConnectionStore) IsBlocked(ctx context.Context, userAID, userBID string) (bool, error) {
	return s.pairHasStatus(ctx, userAID, userBID, ConnectionBlocked)
}

// IsAccepted reports whether the two users are accepted connections.
func (s *ConnectionStore) IsAccepted(ctx context.Context, userAID, userBID string) (bool, error) {
	return s.pairHasStatus(ctx, userAID, userBID, ConnectionAccepted)
}

func (s *ConnectionStore) pairHasStatus(ctx context.Context, userAID, userBID, status string) (bool, error) {
	low, high := PairKey(userAID, userBID)
	var count int
	err := s.db.GetContext(ctx, &count, s.q(`
		SELECT COUNT(*) FROM connections WHERE user_low = ? AND user_high = ? AND status = ?
	`), low, high, status)
	return count > 0, err
}

func (s *ConnectionStore) getByPair(ctx context.Context, low, high string) (*Connection, error) {
	var c Connection
	err := s.db.GetContext(ctx, &c, s.q(`
		SELECT * FROM connections WHERE user_low = ? AND user_high = ?
	`), low, high)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
