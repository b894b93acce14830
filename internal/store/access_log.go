package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AccessEvent represents a single successful share-link resolution to be
// recorded.
type AccessEvent struct {
	ShareConfigID string
	IPHash        string // caller computes this
	UserAgent     string
}

// AccessStats holds aggregate resolution counts for a share config.
type AccessStats struct {
	Total   int64
	Last7d  int64
	Last30d int64
}

// RecentAccess represents a single recorded resolution.
type RecentAccess struct {
	AccessedAt time.Time `db:"accessed_at"`
	UserAgent  string    `db:"user_agent"`
}

// AccessLogStore is the sqlx-backed store for share-link access tracking.
type AccessLogStore struct {
	db *sqlx.DB
}

func NewAccessLogStore(db *sqlx.DB) *AccessLogStore {
	return &AccessLogStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *AccessLogStore) q(query string) string { return s.db.Rebind(query) }

// Record inserts an access event row.
func (s *AccessLogStore) Record(ctx context.Context, e AccessEvent) error {
	id := uuid.New().String()
	now := time.Now().UTC()

	ua := e.UserAgent
	if len(ua) > 512 {
		ua = ua[:512]
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO share_access_log (id, share_config_id, ip_hash, user_agent, accessed_at)
		VALUES (?, ?, ?, ?, ?)
	`), id, e.ShareConfigID, e.IPHash, ua, now)
	return err
}

// Stats returns total, 7d, and 30d resolution counts for a config.
func (s *AccessLogStore) Stats(ctx context.Context, shareConfigID string) (AccessStats, error) {
	var stats AccessStats
	now := time.Now().UTC()
	since7d := now.AddDate(0, 0, -7)
	since30d := now.AddDate(0, 0, -30)

	err := s.db.GetContext(ctx, &stats.Total,
		s.q(`SELECT COUNT(*) FROM share_access_log WHERE share_config_id = ?`), shareConfigID)
	if err != nil {
		return stats, err
	}

	err = s.db.GetContext(ctx, &stats.Last7d,
		s.q(`SELECT COUNT(*) FROM share_access_log WHERE share_config_id = ? AND accessed_at >= ?`), shareConfigID, since7d)
	if err != nil {
		return stats, err
	}

	err = s.db.GetContext(ctx, &stats.Last30d,
		s.q(`SELECT COUNT(*) FROM share_access_log WHERE share_config_id = ? AND accessed_at >= ?`), shareConfigID, since30d)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// ListRecent returns the most recent N resolutions for a config.
func (s *AccessLogStore) ListRecent(ctx context.Context, shareConfigID string, limit int) ([]RecentAccess, error) {
	var entries []RecentAccess
	err := s.db.SelectContext(ctx, &entries, s.q(`
		SELECT accessed_at, COALESCE(user_agent, '') AS user_agent
		FROM share_access_log
		WHERE share_config_id = ?
		ORDER BY accessed_at DESC
		LIMIT ?
	`), shareConfigID, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// HashIP computes SHA-256(ip + ":" + YYYYMMDD_UTC) for the current day, so
// raw visitor addresses never reach the database.
func HashIP(ip string) string {
	salt := time.Now().UTC().Format("20060102")
	h := sha256.Sum256([]byte(ip + ":" + salt))
	return fmt.Sprintf("%x", h)
}
