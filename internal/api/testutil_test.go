package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/joestump/joe-share/internal/access"
	"github.com/joestump/joe-share/internal/api"
	"github.com/joestump/joe-share/internal/auth"
	"github.com/joestump/joe-share/internal/notify"
	"github.com/joestump/joe-share/internal/store"
	"github.com/joestump/joe-share/internal/testutil"
)

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router          http.Handler
	UserStore       *store.UserStore
	ConnectionStore *store.ConnectionStore
	ShareStore      *store.ShareStore
	AccessLogStore  *store.AccessLogStore
	TokenStore      *auth.SQLTokenStore
	Resolver        *access.Resolver
	AccessCh        chan store.AccessEvent
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	us := store.NewUserStore(db)
	cs := store.NewConnectionStore(db)
	ss := store.NewShareStore(db, cs)
	as := store.NewAccessLogStore(db)
	ts := auth.NewSQLTokenStore(db)

	resolver := access.NewResolver(ss, cs, nil)
	accessCh := make(chan store.AccessEvent, 16)

	deps := api.Deps{
		BearerMiddleware: auth.NewBearerTokenMiddleware(ts, us),
		UserStore:        us,
		ConnectionStore:  cs,
		ShareStore:       ss,
		AccessLogStore:   as,
		TokenStore:       ts,
		Resolver:         resolver,
		Notifier:         notify.NewLogNotifier(nil),
		AccessCh:         accessCh,
	}

	return &testEnv{
		Router:          api.NewAPIRouter(deps),
		UserStore:       us,
		ConnectionStore: cs,
		ShareStore:      ss,
		AccessLogStore:  as,
		TokenStore:      ts,
		Resolver:        resolver,
		AccessCh:        accessCh,
	}
}

// seedUser creates a user and returns the user record.
func seedUser(t *testing.T, env *testEnv, email string) *store.User {
	t.Helper()
	u, err := env.UserStore.Upsert(context.Background(), "test", "sub-"+email, email, "Test User", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedToken creates a real API token for a user and returns the plaintext Bearer value.
func seedToken(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	_, err = env.TokenStore.Create(context.Background(), userID, "test-token", hash, nil)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return plaintext
}

// seedConnected creates two users with an accepted connection and bearer
// tokens for both.
func seedConnected(t *testing.T, env *testEnv, emailA, emailB string) (a, b *store.User, tokenA, tokenB string) {
	t.Helper()
	ctx := context.Background()

	a = seedUser(t, env, emailA)
	b = seedUser(t, env, emailB)
	conn, err := env.ConnectionStore.Request(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	if _, err := env.ConnectionStore.Accept(ctx, conn.ID, b.ID); err != nil {
		t.Fatalf("seed accept: %v", err)
	}
	return a, b, seedToken(t, env, a.ID), seedToken(t, env, b.ID)
}

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
