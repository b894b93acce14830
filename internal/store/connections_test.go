package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/joestump/joe-share/internal/store"
	"github.com/joestump/joe-share/internal/testutil"
)

// newConnTestEnv creates a test DB with three users and a connection store.
func newConnTestEnv(t *testing.T) (*store.ConnectionStore, []string) {
	t.Helper()
	db := testutil.NewTestDB(t)

	us := store.NewUserStore(db)
	cs := store.NewConnectionStore(db)

	ctx := context.Background()
	ids := make([]string, 3)
	for i := range ids {
		u, err := us.Upsert(ctx, "test", fmt.Sprintf("sub%d", i), fmt.Sprintf("user%d@example.com", i), fmt.Sprintf("User %d", i), "")
		if err != nil {
			t.Fatalf("seed user %d: %v", i, err)
		}
		ids[i] = u.ID
	}

	return cs, ids
}

func TestRequest_HappyPath(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	conn, err := cs.Request(ctx, users[0], users[1])
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if conn.Status != store.ConnectionPending {
		t.Errorf("status = %q, want %q", conn.Status, store.ConnectionPending)
	}
	if conn.RequesterID != users[0] {
		t.Errorf("requester = %q, want %q", conn.RequesterID, users[0])
	}
	if conn.OtherParty(users[0]) != users[1] {
		t.Errorf("other party = %q, want %q", conn.OtherParty(users[0]), users[1])
	}
}

func TestRequest_Self(t *testing.T) {
	cs, users := newConnTestEnv(t)

	if _, err := cs.Request(context.Background(), users[0], users[0]); !errors.Is(err, store.ErrSelfConnection) {
		t.Errorf("Request(self) = %v, want ErrSelfConnection", err)
	}
}

func TestRequest_DuplicatePair(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	if _, err := cs.Request(ctx, users[0], users[1]); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// Same direction.
	if _, err := cs.Request(ctx, users[0], users[1]); !errors.Is(err, store.ErrAlreadyPending) {
		t.Errorf("duplicate request = %v, want ErrAlreadyPending", err)
	}

	// Reverse direction hits the same canonical pair row.
	if _, err := cs.Request(ctx, users[1], users[0]); !errors.Is(err, store.ErrAlreadyPending) {
		t.Errorf("reverse request = %v, want ErrAlreadyPending", err)
	}
}

func TestAccept_HappyPath(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	conn, err := cs.Request(ctx, users[0], users[1])
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	accepted, err := cs.Accept(ctx, conn.ID, users[1])
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.Status != store.ConnectionAccepted {
		t.Errorf("status = %q, want %q", accepted.Status, store.ConnectionAccepted)
	}
	if !accepted.RespondedAt.Valid {
		t.Error("responded_at not set")
	}

	ok, err := cs.IsAccepted(ctx, users[0], users[1])
	if err != nil {
		t.Fatalf("IsAccepted: %v", err)
	}
	if !ok {
		t.Error("IsAccepted = false after accept")
	}
}

func TestAccept_RequesterCannotAccept(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	conn, err := cs.Request(ctx, users[0], users[1])
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	if _, err := cs.Accept(ctx, conn.ID, users[0]); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("requester accept = %v, want ErrNotAuthorized", err)
	}
	if _, err := cs.Accept(ctx, conn.ID, users[2]); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("third party accept = %v, want ErrNotAuthorized", err)
	}
}

func TestAccept_AlreadyAccepted(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	conn, _ := cs.Request(ctx, users[0], users[1])
	if _, err := cs.Accept(ctx, conn.ID, users[1]); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := cs.Accept(ctx, conn.ID, users[1]); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("second accept = %v, want ErrInvalidState", err)
	}
}

func TestRemove_EitherParty(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	conn, _ := cs.Request(ctx, users[0], users[1])
	if _, err := cs.Accept(ctx, conn.ID, users[1]); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := cs.Remove(ctx, conn.ID, users[2]); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("third party remove = %v, want ErrNotAuthorized", err)
	}
	if err := cs.Remove(ctx, conn.ID, users[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := cs.Relationship(ctx, users[0], users[1]); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("relationship after remove = %v, want ErrNotFound", err)
	}

	// Removal does not prevent a fresh request.
	if _, err := cs.Request(ctx, users[1], users[0]); err != nil {
		t.Errorf("re-request after remove: %v", err)
	}
}

func TestBlock_SeversAndSuppresses(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	conn, _ := cs.Request(ctx, users[0], users[1])
	if _, err := cs.Accept(ctx, conn.ID, users[1]); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	blocked, err := cs.Block(ctx, users[0], users[1], "spam")
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if blocked.Status != store.ConnectionBlocked {
		t.Errorf("status = %q, want %q", blocked.Status, store.ConnectionBlocked)
	}
	if blocked.BlockedByID.String != users[0] {
		t.Errorf("blocked_by = %q, want %q", blocked.BlockedByID.String, users[0])
	}
	if blocked.BlockReason.String != "spam" {
		t.Errorf("reason = %q, want %q", blocked.BlockReason.String, "spam")
	}

	// Neither side can request while blocked, and the blockee's error does
	// not reveal who placed the block.
	if _, err := cs.Request(ctx, users[1], users[0]); !errors.Is(err, store.ErrBlocked) {
		t.Errorf("blockee request = %v, want ErrBlocked", err)
	}
	if _, err := cs.Request(ctx, users[0], users[1]); !errors.Is(err, store.ErrBlocked) {
		t.Errorf("blocker request = %v, want ErrBlocked", err)
	}

	// The blocked row cannot be removed, only unblocked.
	if err := cs.Remove(ctx, blocked.ID, users[1]); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("remove blocked = %v, want ErrInvalidState", err)
	}
}

func TestBlock_Idempotent(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	first, err := cs.Block(ctx, users[0], users[1], "spam")
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	// A second block, even from the other side, leaves the original blocker.
	second, err := cs.Block(ctx, users[1], users[0], "")
	if err != nil {
		t.Fatalf("re-Block: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second block row = %q, want %q", second.ID, first.ID)
	}
	if second.BlockedByID.String != users[0] {
		t.Errorf("blocked_by = %q, want original blocker %q", second.BlockedByID.String, users[0])
	}
}

func TestUnblock_BlockerOnly(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	if _, err := cs.Block(ctx, users[0], users[1], ""); err != nil {
		t.Fatalf("Block: %v", err)
	}

	if err := cs.Unblock(ctx, users[1], users[0]); !errors.Is(err, store.ErrNotAuthorized) {
		t.Errorf("blockee unblock = %v, want ErrNotAuthorized", err)
	}
	if err := cs.Unblock(ctx, users[0], users[1]); err != nil {
		t.Fatalf("Unblock: %v", err)
	}

	// Unblock does not restore the connection; the pair starts over.
	if _, err := cs.Relationship(ctx, users[0], users[1]); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("relationship after unblock = %v, want ErrNotFound", err)
	}
	if _, err := cs.Request(ctx, users[1], users[0]); err != nil {
		t.Errorf("request after unblock: %v", err)
	}
}

func TestListForUser_StatusFilter(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	conn, _ := cs.Request(ctx, users[0], users[1])
	if _, err := cs.Accept(ctx, conn.ID, users[1]); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := cs.Request(ctx, users[2], users[0]); err != nil {
		t.Fatalf("Request: %v", err)
	}

	all, err := cs.ListForUser(ctx, users[0], "")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	pending, err := cs.ListForUser(ctx, users[0], store.ConnectionPending)
	if err != nil {
		t.Fatalf("ListForUser pending: %v", err)
	}
	if len(pending) != 1 || pending[0].RequesterID != users[2] {
		t.Errorf("pending list wrong: %+v", pending)
	}

	none, err := cs.ListForUser(ctx, users[1], store.ConnectionBlocked)
	if err != nil {
		t.Fatalf("ListForUser blocked: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("len(blocked) = %d, want 0", len(none))
	}
}

func TestIsBlocked_EitherDirection(t *testing.T) {
	cs, users := newConnTestEnv(t)
	ctx := context.Background()

	if _, err := cs.Block(ctx, users[0], users[1], ""); err != nil {
		t.Fatalf("Block: %v", err)
	}

	for _, pair := range [][2]string{{users[0], users[1]}, {users[1], users[0]}} {
		blocked, err := cs.IsBlocked(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("IsBlocked: %v", err)
		}
		if !blocked {
			t.Errorf("IsBlocked(%q, %q) = false, want true", pair[0], pair[1])
		}
	}

	blocked, err := cs.IsBlocked(ctx, users[0], users[2])
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if blocked {
		t.Error("IsBlocked = true for unrelated pair")
	}
}
