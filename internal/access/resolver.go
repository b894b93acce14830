// Package access computes effective permissions. Every "can this viewer do
// that to this item" question in the service goes through Resolver; nothing
// else re-derives authorization from the underlying tables.
package access

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/joestump/joe-share/internal/store"
	"github.com/joestump/joe-share/internal/token"
)

var (
	// ErrNoAccess is the default denial: no share reaches this viewer.
	ErrNoAccess = errors.New("no access")

	// ErrPasswordRequired is returned when a password share is resolved
	// without a password.
	ErrPasswordRequired = errors.New("password required")

	// ErrInvalidPassword is returned when the supplied password does not match.
	ErrInvalidPassword = errors.New("invalid password")
)

// Via records which channel authorized the viewer.
type Via string

const (
	ViaOwner      Via = "owner"
	ViaToken      Via = "token"
	ViaConnection Via = "connection"
)

// Request identifies one authorization question. ViewerID is empty for
// anonymous callers, who can only be authorized through Token.
type Request struct {
	ViewerID string
	ItemID   string
	ItemType string
	Token    string
	Password string
}

// Decision is a successful resolution: the effective permission tier and the
// channel that granted it.
type Decision struct {
	Permission string `json:"permission"`
	Via        Via    `json:"via"`

	// ShareConfigID is set when a share (token or grant) produced the
	// decision; access logging keys off it. Empty for owner decisions.
	ShareConfigID string `json:"-"`
}

// Allows reports whether the decision covers an action requiring the given tier.
func (d *Decision) Allows(required string) bool {
	return store.PermissionAllows(d.Permission, required)
}

// Resolver answers authorization questions over the connection graph and the
// share registry. It holds no state of its own; every call reads the current
// store contents.
type Resolver struct {
	shares *store.ShareStore
	conns  *store.ConnectionStore
	log    *slog.Logger
}

func NewResolver(shares *store.ShareStore, conns *store.ConnectionStore, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{shares: shares, conns: conns, log: log}
}

// Resolve computes the viewer's effective permission for an item, in strict
// precedence order: owner, block override, link token, connection grant.
//
// Failures on the token path come back as store.ErrNotFound regardless of
// whether the token never existed, was revoked, or expired; handlers for
// anonymous callers must surface all of them identically.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Decision, error) {
	cfg, err := r.shares.GetActiveByItem(ctx, req.ItemID, req.ItemType)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// The owner always holds full permission, shared or not, expired or not.
	if cfg != nil && req.ViewerID != "" && req.ViewerID == cfg.OwnerID {
		return &Decision{Permission: store.PermissionEdit, Via: ViaOwner}, nil
	}

	// A block between viewer and owner overrides every grant and every
	// token. Checked before the token path so a blocked user cannot reach
	// the item through a link either.
	if cfg != nil && req.ViewerID != "" {
		blocked, err := r.conns.IsBlocked(ctx, req.ViewerID, cfg.OwnerID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, store.ErrBlocked
		}
	}

	if req.Token != "" {
		return r.resolveToken(ctx, req)
	}

	if cfg != nil && req.ViewerID != "" && cfg.ShareType == store.ShareTypeConnection && !cfg.Expired(time.Now().UTC()) {
		grant, err := r.shares.GetGrant(ctx, cfg.ID, req.ViewerID)
		if err != nil && !errors.Is(err, store.ErrNotAGrantee) {
			return nil, err
		}
		if grant != nil && grant.Status == store.GrantAccepted {
			return &Decision{Permission: cfg.Permission, Via: ViaConnection, ShareConfigID: cfg.ID}, nil
		}
	}

	return nil, ErrNoAccess
}

func (r *Resolver) resolveToken(ctx context.Context, req Request) (*Decision, error) {
	cfg, err := r.shares.GetActiveByTokenHash(ctx, token.Hash(req.Token))
	if err != nil {
		return nil, err
	}

	// The token must unlock exactly the item the caller asked about.
	if cfg.ItemID != req.ItemID || cfg.ItemType != req.ItemType {
		return nil, store.ErrNotFound
	}

	if cfg.ShareType == store.ShareTypePassword {
		if req.Password == "" {
			return nil, ErrPasswordRequired
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash.String), []byte(req.Password)); err != nil {
			return nil, ErrInvalidPassword
		}
	}

	// Lost increments under concurrent resolution are acceptable; the
	// counter never gates access.
	if err := r.shares.IncrementAccessCount(ctx, cfg.ID); err != nil {
		r.log.Warn("access count increment failed", "share_config_id", cfg.ID, "error", err)
	}

	return &Decision{Permission: cfg.Permission, Via: ViaToken, ShareConfigID: cfg.ID}, nil
}
