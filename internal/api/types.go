package api

import "time"

// ConnectionRequest is the body for creating a connection request.
type ConnectionRequest struct {
	UserID string `json:"user_id"`
}

// BlockRequest is the body for blocking a user. Reason is optional and is
// only ever shown back to the user who placed the block.
type BlockRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ConnectionResponse describes one connection edge from the caller's
// perspective. UserID is always the other party.
type ConnectionResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	Requested   bool       `json:"requested_by_me"`
	BlockedByMe bool       `json:"blocked_by_me,omitempty"`
	BlockReason string     `json:"block_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// RelationshipResponse describes the relationship between the caller and
// another user.
type RelationshipResponse struct {
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	BlockedByMe bool   `json:"blocked_by_me,omitempty"`
	BlockReason string `json:"block_reason,omitempty"`
}

// ShareRequest is the body for creating or replacing an item's share
// configuration.
type ShareRequest struct {
	ShareType  string     `json:"share_type"`
	Permission string     `json:"permission"`
	Recipients []string   `json:"recipients,omitempty"`
	Password   string     `json:"password,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// GrantResponse is one recipient entry on a connection-scoped share.
type GrantResponse struct {
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ShareResponse describes a share configuration. LinkToken is only populated
// on the response that minted it; it is never retrievable afterwards.
type ShareResponse struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	ItemType    string          `json:"item_type"`
	ShareType   string          `json:"share_type"`
	Permission  string          `json:"permission"`
	LinkToken   string          `json:"link_token,omitempty"`
	HasPassword bool            `json:"has_password"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Expired     bool            `json:"expired"`
	AccessCount int64           `json:"access_count"`
	Recipients  []GrantResponse `json:"recipients,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ShareListResponse wraps a page of the caller's shares.
type ShareListResponse struct {
	Shares     []*ShareResponse `json:"shares"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// SharedWithMeListResponse wraps a page of shares addressed to the caller.
type SharedWithMeListResponse struct {
	Shares     []*SharedWithMeResponse `json:"shares"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// SharedWithMeResponse is one entry in the caller's incoming share list.
type SharedWithMeResponse struct {
	ShareID     string     `json:"share_id"`
	ItemID      string     `json:"item_id"`
	ItemType    string     `json:"item_type"`
	OwnerID     string     `json:"owner_id"`
	Permission  string     `json:"permission"`
	GrantStatus string     `json:"grant_status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Expired     bool       `json:"expired"`
	SharedAt    time.Time  `json:"shared_at"`
}

// AccessResponse is the result of an access check against an item.
type AccessResponse struct {
	ItemID     string `json:"item_id"`
	ItemType   string `json:"item_type"`
	Permission string `json:"permission"`
	Via        string `json:"via"`
}

// ResolveLinkRequest is the body for resolving a share link. Password is only
// required for password-protected shares.
type ResolveLinkRequest struct {
	Password string `json:"password,omitempty"`
}

// ActivityResponse summarises access activity for a share.
type ActivityResponse struct {
	ShareID string              `json:"share_id"`
	Total   int64               `json:"total"`
	Last7d  int64               `json:"last_7d"`
	Last30d int64               `json:"last_30d"`
	Recent  []RecentAccessEntry `json:"recent"`
}

// RecentAccessEntry is one row of recent access activity.
type RecentAccessEntry struct {
	AccessedAt time.Time `json:"accessed_at"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// TokenRequest is the body for creating an API token.
type TokenRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TokenResponse describes an API token. The plaintext Token is only present
// on the creation response.
type TokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Token      string     `json:"token,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	Revoked    bool       `json:"revoked"`
}

// TokenListResponse wraps the caller's API tokens.
type TokenListResponse struct {
	Tokens []*TokenResponse `json:"tokens"`
}

// UserResponse describes the authenticated user.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
