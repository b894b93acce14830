package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/joestump/joe-share/internal/store"
	"github.com/joestump/joe-share/internal/testutil"
)

// newAccessLogTestEnv creates a user with one public share and returns the
// stores and the share config.
func newAccessLogTestEnv(t *testing.T) (*store.AccessLogStore, *store.ShareConfig) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	us := store.NewUserStore(db)
	cs := store.NewConnectionStore(db)
	ss := store.NewShareStore(db, cs)

	owner, err := us.Upsert(ctx, "test", "sub-owner", "owner@example.com", "Owner", "")
	if err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	cfg, _, err := ss.Upsert(ctx, store.UpsertShareParams{
		OwnerID:    owner.ID,
		ItemID:     "n-1",
		ItemType:   "note",
		ShareType:  store.ShareTypePublic,
		Permission: store.PermissionView,
	})
	if err != nil {
		t.Fatalf("seed share: %v", err)
	}
	return store.NewAccessLogStore(db), cfg
}

func TestAccessLog_RecordAndStats(t *testing.T) {
	logStore, cfg := newAccessLogTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := logStore.Record(ctx, store.AccessEvent{
			ShareConfigID: cfg.ID,
			IPHash:        store.HashIP("203.0.113.9"),
			UserAgent:     "curl/8.0",
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	stats, err := logStore.Stats(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Last7d != 3 || stats.Last30d != 3 {
		t.Errorf("stats = %+v, want 3 across all windows", stats)
	}

	// An unrelated config has no activity.
	stats, err = logStore.Stats(ctx, "no-such-config")
	if err != nil {
		t.Fatalf("stats for unknown config: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("unknown config total = %d, want 0", stats.Total)
	}
}

func TestAccessLog_ListRecent(t *testing.T) {
	logStore, cfg := newAccessLogTestEnv(t)
	ctx := context.Background()

	agents := []string{"ua-1", "ua-2", "ua-3"}
	for _, ua := range agents {
		err := logStore.Record(ctx, store.AccessEvent{
			ShareConfigID: cfg.ID,
			IPHash:        store.HashIP("203.0.113.9"),
			UserAgent:     ua,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := logStore.ListRecent(ctx, cfg.ID, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("got %d entries, want 2 (limit)", len(recent))
	}

	all, err := logStore.ListRecent(ctx, cfg.ID, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d entries, want 3", len(all))
	}
}

func TestAccessLog_UserAgentTruncated(t *testing.T) {
	logStore, cfg := newAccessLogTestEnv(t)
	ctx := context.Background()

	err := logStore.Record(ctx, store.AccessEvent{
		ShareConfigID: cfg.ID,
		IPHash:        store.HashIP("203.0.113.9"),
		UserAgent:     strings.Repeat("x", 1000),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	recent, err := logStore.ListRecent(ctx, cfg.ID, 1)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 1 || len(recent[0].UserAgent) != 512 {
		t.Errorf("stored user agent length = %d, want 512", len(recent[0].UserAgent))
	}
}

func TestHashIP(t *testing.T) {
	a := store.HashIP("203.0.113.9")
	b := store.HashIP("203.0.113.9")
	c := store.HashIP("203.0.113.10")

	if a != b {
		t.Error("same address hashed differently within a day")
	}
	if a == c {
		t.Error("different addresses produced the same hash")
	}
	if strings.Contains(a, "203.0.113.9") {
		t.Error("hash contains the raw address")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
