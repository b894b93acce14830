package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/joestump/joe-share/internal/token"
)

// Grant statuses.
const (
	GrantPending  = "pending"
	GrantAccepted = "accepted"
)

// ShareConfig represents a row in the share_configs table: the single
// authorization policy attached to one shared item. The Active marker is 1
// while the config is live and NULL once revoked, so the unique index on
// (owner_id, item_id, item_type, active) admits at most one live row per item
// on every supported database.
type ShareConfig struct {
	ID           string         `db:"id"`
	OwnerID      string         `db:"owner_id"`
	ItemID       string         `db:"item_id"`
	ItemType     string         `db:"item_type"`
	ShareType    string         `db:"share_type"`
	Permission   string         `db:"permission"`
	TokenHash    sql.NullString `db:"token_hash"`
	PasswordHash sql.NullString `db:"password_hash"`
	ExpiresAt    sql.NullTime   `db:"expires_at"`
	AccessCount  int64          `db:"access_count"`
	Active       sql.NullInt16  `db:"active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	RevokedAt    sql.NullTime   `db:"revoked_at"`
}

// Expired reports whether the config's expiry, if any, has passed.
func (c *ShareConfig) Expired(now time.Time) bool {
	return c.ExpiresAt.Valid && c.ExpiresAt.Time.Before(now)
}

// ShareGrant represents a row in the share_grants table: one named
// recipient's standing under a connection-type ShareConfig.
type ShareGrant struct {
	ID              string       `db:"id"`
	ShareConfigID   string       `db:"share_config_id"`
	RecipientUserID string       `db:"recipient_user_id"`
	Status          string       `db:"status"`
	SharedAt        time.Time    `db:"shared_at"`
	RespondedAt     sql.NullTime `db:"responded_at"`
}

// SharedWithMe is the listSharedWithMe projection: a live config joined with
// the viewer's grant.
type SharedWithMe struct {
	ShareConfig
	GrantStatus string    `db:"grant_status"`
	SharedAt    time.Time `db:"shared_at"`
}

// UpsertShareParams carries everything needed to create or update the share
// policy for one item.
type UpsertShareParams struct {
	OwnerID    string
	ItemID     string
	ItemType   string
	ShareType  string
	Permission string
	Recipients []string // connection shares only
	Password   string   // password shares only; never stored in plaintext
	ExpiresAt  *time.Time
}

// ShareStore is the sqlx-backed implementation of ShareStoreIface. It needs
// the connection graph to validate connection-share recipients.
type ShareStore struct {
	db    *sqlx.DB
	conns *ConnectionStore
}

func NewShareStore(db *sqlx.DB, conns *ConnectionStore) *ShareStore {
	return &ShareStore{db: db, conns: conns}
}

// q rebinds ? placeholders to the driver's native format.
func (s *ShareStore) q(query string) string { return s.db.Rebind(query) }

// Upsert creates the share policy for an item, or updates the existing live
// one in place; there is never more than one live config per item. For
// connection shares the recipient list is reconciled against existing grants:
// new recipients get pending grants, removed recipients lose theirs, and
// still-listed recipients keep whatever status they had. The returned string
// is the plaintext link token when one was newly minted, and is shown to the
// owner exactly once.
func (s *ShareStore) Upsert(ctx context.Context, p UpsertShareParams) (*ShareConfig, string, error) {
	if err := ValidateItemType(p.ItemType); err != nil {
		return nil, "", err
	}
	if err := ValidateShareType(p.ShareType); err != nil {
		return nil, "", err
	}
	if err := ValidatePermission(p.Permission); err != nil {
		return nil, "", err
	}

	if p.ShareType == ShareTypeConnection {
		if err := s.validateRecipients(ctx, p.OwnerID, p.Recipients); err != nil {
			return nil, "", err
		}
	}

	existing, err := s.getActiveByOwnerItem(ctx, p.OwnerID, p.ItemID, p.ItemType)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	var cfg *ShareConfig
	var plainToken string
	if existing != nil {
		cfg, plainToken, err = s.update(ctx, existing, p)
	} else {
		cfg, plainToken, err = s.insert(ctx, p)
		if isUniqueConstraintError(err) {
			// A concurrent Upsert for the same item created the live row
			// first; fold this call into an update of the committed state.
			committed, gerr := s.getActiveByOwnerItem(ctx, p.OwnerID, p.ItemID, p.ItemType)
			if gerr != nil {
				return nil, "", gerr
			}
			cfg, plainToken, err = s.update(ctx, committed, p)
		}
	}
	if err != nil {
		return nil, "", err
	}

	if err := s.reconcileGrants(ctx, cfg, p.Recipients); err != nil {
		return nil, "", err
	}
	return cfg, plainToken, nil
}

func (s *ShareStore) insert(ctx context.Context, p UpsertShareParams) (*ShareConfig, string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tokenHash, passwordHash, plainToken, err := shareSecrets(p, sql.NullString{}, sql.NullString{})
	if err != nil {
		return nil, "", err
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO share_configs
			(id, owner_id, item_id, item_type, share_type, permission, token_hash, password_hash, expires_at, access_count, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)
	`), id, p.OwnerID, p.ItemID, p.ItemType, p.ShareType, p.Permission,
		tokenHash, passwordHash, nullTime(p.ExpiresAt), now, now)
	if err != nil {
		return nil, "", err
	}
	cfg, err := s.GetByID(ctx, id)
	return cfg, plainToken, err
}

func (s *ShareStore) update(ctx context.Context, existing *ShareConfig, p UpsertShareParams) (*ShareConfig, string, error) {
	now := time.Now().UTC()

	tokenHash, passwordHash, plainToken, err := shareSecrets(p, existing.TokenHash, existing.PasswordHash)
	if err != nil {
		return nil, "", err
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		UPDATE share_configs
		SET share_type = ?, permission = ?, token_hash = ?, password_hash = ?, expires_at = ?, updated_at = ?
		WHERE id = ?
	`), p.ShareType, p.Permission, tokenHash, passwordHash, nullTime(p.ExpiresAt), now, existing.ID)
	if err != nil {
		return nil, "", err
	}
	cfg, err := s.GetByID(ctx, existing.ID)
	return cfg, plainToken, err
}

// shareSecrets computes the token hash and password hash for the target share
// type. Tokens survive public↔password switches; a switch to a connection
// share drops both secrets. A password share keeps its existing password
// unless a new one is supplied.
func shareSecrets(p UpsertShareParams, prevToken, prevPassword sql.NullString) (tokenHash, passwordHash sql.NullString, plainToken string, err error) {
	switch p.ShareType {
	case ShareTypeConnection:
		return sql.NullString{}, sql.NullString{}, "", nil

	case ShareTypePublic:
		tokenHash = prevToken
		if !tokenHash.Valid {
			var plain, hash string
			plain, hash, err = token.Generate()
			if err != nil {
				return
			}
			plainToken = plain
			tokenHash = sql.NullString{String: hash, Valid: true}
		}
		return tokenHash, sql.NullString{}, plainToken, nil

	case ShareTypePassword:
		tokenHash = prevToken
		if !tokenHash.Valid {
			var plain, hash string
			plain, hash, err = token.Generate()
			if err != nil {
				return
			}
			plainToken = plain
			tokenHash = sql.NullString{String: hash, Valid: true}
		}
		passwordHash = prevPassword
		if p.Password != "" {
			var hashed []byte
			hashed, err = bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
			if err != nil {
				return
			}
			passwordHash = sql.NullString{String: string(hashed), Valid: true}
		}
		if !passwordHash.Valid {
			err = ErrPasswordMissing
		}
		return
	}
	return
}

// validateRecipients requires every recipient to be an accepted connection of
// the owner.
func (s *ShareStore) validateRecipients(ctx context.Context, ownerID string, recipients []string) error {
	for _, uid := range recipients {
		if uid == ownerID {
			return ErrInvalidRecipients
		}
		ok, err := s.conns.IsAccepted(ctx, ownerID, uid)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidRecipients
		}
	}
	return nil
}

// reconcileGrants brings share_grants in line with the recipient list. For
// non-connection shares the list is empty, which clears any leftover grants.
func (s *ShareStore) reconcileGrants(ctx context.Context, cfg *ShareConfig, recipients []string) error {
	if cfg.ShareType != ShareTypeConnection {
		recipients = nil
	}

	existing, err := s.ListGrants(ctx, cfg.ID)
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(recipients))
	for _, uid := range recipients {
		wanted[uid] = true
	}

	for _, g := range existing {
		if !wanted[g.RecipientUserID] {
			_, err := s.db.ExecContext(ctx, s.q(`
				DELETE FROM share_grants WHERE id = ?
			`), g.ID)
			if err != nil {
				return err
			}
		}
		delete(wanted, g.RecipientUserID)
	}

	now := time.Now().UTC()
	for uid := range wanted {
		_, err := s.db.ExecContext(ctx, s.q(`
			INSERT INTO share_grants (id, share_config_id, recipient_user_id, status, shared_at)
			VALUES (?, ?, ?, ?, ?)
		`), uuid.New().String(), cfg.ID, uid, GrantPending, now)
		if err != nil && !isUniqueConstraintError(err) {
			return err
		}
	}
	return nil
}

// Revoke retires the config: its token becomes permanently unresolvable and
// every grant loses effect immediately. Re-sharing the item later creates a
// fresh config with a fresh token. Revoking an already-revoked config is a
// no-op. Only the owner may revoke.
func (s *ShareStore) Revoke(ctx context.Context, shareConfigID, byUserID string) error {
	cfg, err := s.GetByID(ctx, shareConfigID)
	if err != nil {
		return err
	}
	if cfg.OwnerID != byUserID {
		return ErrNotAuthorized
	}
	if cfg.RevokedAt.Valid {
		return nil
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(`
		UPDATE share_configs SET revoked_at = ?, active = NULL, updated_at = ? WHERE id = ?
	`), now, now, shareConfigID)
	return err
}

// GetByID returns the config with the given id, revoked or not, or ErrNotFound.
func (s *ShareStore) GetByID(ctx context.Context, id string) (*ShareConfig, error) {
	var cfg ShareConfig
	err := s.db.GetContext(ctx, &cfg, s.q(`SELECT * FROM share_configs WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetActiveByItem returns the live (non-revoked) config for an item, or
// ErrNotFound. Expiry is the caller's concern: an expired config is returned
// so the owner can still see and update it.
func (s *ShareStore) GetActiveByItem(ctx context.Context, itemID, itemType string) (*ShareConfig, error) {
	var cfg ShareConfig
	err := s.db.GetContext(ctx, &cfg, s.q(`
		SELECT * FROM share_configs WHERE item_id = ? AND item_type = ? AND revoked_at IS NULL
	`), itemID, itemType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *ShareStore) getActiveByOwnerItem(ctx context.Context, ownerID, itemID, itemType string) (*ShareConfig, error) {
	var cfg ShareConfig
	err := s.db.GetContext(ctx, &cfg, s.q(`
		SELECT * FROM share_configs
		WHERE owner_id = ? AND item_id = ? AND item_type = ? AND revoked_at IS NULL
	`), ownerID, itemID, itemType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetActiveByTokenHash resolves a link token hash to its config. Revoked and
// expired configs answer ErrNotFound, exactly like hashes that never existed,
// so a caller probing tokens learns nothing about why one stopped working.
func (s *ShareStore) GetActiveByTokenHash(ctx context.Context, tokenHash string) (*ShareConfig, error) {
	var cfg ShareConfig
	err := s.db.GetContext(ctx, &cfg, s.q(`
		SELECT * FROM share_configs WHERE token_hash = ? AND revoked_at IS NULL
	`), tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if cfg.Expired(time.Now().UTC()) {
		return nil, ErrNotFound
	}
	return &cfg, nil
}

// IncrementAccessCount bumps the config's access counter. Increments lost to
// concurrent token resolutions are tolerated; the counter is informational.
func (s *ShareStore) IncrementAccessCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE share_configs SET access_count = access_count + 1 WHERE id = ?
	`), id)
	return err
}

// AcceptGrant marks the caller's grant accepted. Returns ErrNotAGrantee if no
// grant exists for the caller, ErrNotFound if the config is gone or revoked.
func (s *ShareStore) AcceptGrant(ctx context.Context, shareConfigID, recipientUserID string) (*ShareGrant, error) {
	cfg, err := s.GetByID(ctx, shareConfigID)
	if err != nil {
		return nil, err
	}
	if cfg.RevokedAt.Valid {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE share_grants SET status = ?, responded_at = ?
		WHERE share_config_id = ? AND recipient_user_id = ?
	`), GrantAccepted, now, shareConfigID, recipientUserID)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotAGrantee
	}
	return s.GetGrant(ctx, shareConfigID, recipientUserID)
}

// DeclineOrLeave deletes the caller's own grant, whether pending or accepted.
func (s *ShareStore) DeclineOrLeave(ctx context.Context, shareConfigID, recipientUserID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM share_grants WHERE share_config_id = ? AND recipient_user_id = ?
	`), shareConfigID, recipientUserID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotAGrantee
	}
	return nil
}

// GetGrant returns the grant for one recipient under one config, or ErrNotAGrantee.
func (s *ShareStore) GetGrant(ctx context.Context, shareConfigID, recipientUserID string) (*ShareGrant, error) {
	var g ShareGrant
	err := s.db.GetContext(ctx, &g, s.q(`
		SELECT * FROM share_grants WHERE share_config_id = ? AND recipient_user_id = ?
	`), shareConfigID, recipientUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotAGrantee
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGrants returns all grants under a config, oldest first.
func (s *ShareStore) ListGrants(ctx context.Context, shareConfigID string) ([]*ShareGrant, error) {
	var grants []*ShareGrant
	err := s.db.SelectContext(ctx, &grants, s.q(`
		SELECT * FROM share_grants WHERE share_config_id = ? ORDER BY shared_at ASC
	`), shareConfigID)
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// ListByOwner returns the owner's live configs, optionally filtered by item
// type, newest first.
func (s *ShareStore) ListByOwner(ctx context.Context, ownerID, itemType string) ([]*ShareConfig, error) {
	query := `SELECT * FROM share_configs WHERE owner_id = ? AND revoked_at IS NULL`
	args := []any{ownerID}
	if itemType != "" {
		query += ` AND item_type = ?`
		args = append(args, itemType)
	}
	query += ` ORDER BY created_at DESC`

	var cfgs []*ShareConfig
	if err := s.db.SelectContext(ctx, &cfgs, s.q(query), args...); err != nil {
		return nil, err
	}
	return cfgs, nil
}

// ListForRecipient returns the live connection shares addressed to the
// viewer, with the viewer's grant status, newest first.
func (s *ShareStore) ListForRecipient(ctx context.Context, viewerID, itemType string) ([]*SharedWithMe, error) {
	query := `
		SELECT sc.*, sg.status AS grant_status, sg.shared_at
		FROM share_configs sc
		INNER JOIN share_grants sg ON sg.share_config_id = sc.id
		WHERE sg.recipient_user_id = ? AND sc.revoked_at IS NULL`
	args := []any{viewerID}
	if itemType != "" {
		query += ` AND sc.item_type = ?`
		args = append(args, itemType)
	}
	query += ` ORDER BY sg.shared_at DESC`

	var shares []*SharedWithMe
	if err := s.db.SelectContext(ctx, &shares, s.q(query), args...); err != nil {
		return nil, err
	}
	return shares, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
