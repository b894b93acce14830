package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-share/internal/api"
)

// linkRouter mounts the anonymous share-link endpoint the way the full
// router does.
func linkRouter(env *testEnv) http.Handler {
	r := chi.NewRouter()
	r.Post("/s/{token}", api.NewLinkHandler(env.Resolver, env.ShareStore, env.AccessCh))
	return r
}

func TestAccess_OwnerAlwaysEdits(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice@example.com")
	aliceTok := seedToken(t, env, alice.ID)

	putShare(t, env, aliceTok, "note", "n-1", `{"share_type":"public","permission":"view"}`)

	req := authRequest(httptest.NewRequest("GET", "/items/note/n-1/access", nil), aliceTok)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp api.AccessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Permission != "edit" || resp.Via != "owner" {
		t.Errorf("decision = %s via %s, want edit via owner", resp.Permission, resp.Via)
	}
}

func TestAccess_ConnectionGrant(t *testing.T) {
	env := newTestEnv(t)
	_, bob, aliceTok, bobTok := seedConnected(t, env, "alice@example.com", "bob@example.com")

	body := fmt.Sprintf(`{"share_type":"connection","permission":"comment","recipients":[%q]}`, bob.ID)
	created := putShare(t, env, aliceTok, "note", "n-1", body)

	// Pending grant confers nothing.
	req := authRequest(httptest.NewRequest("GET", "/items/note/n-1/access", nil), bobTok)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pending grant status = %d, want 403", rec.Code)
	}

	req = authRequest(httptest.NewRequest("POST", "/shares/"+created.ID+"/accept", nil), bobTok)
	rec = httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status = %d, want 200", rec.Code)
	}

	req = authRequest(httptest.NewRequest("GET", "/items/note/n-1/access", nil), bobTok)
	rec = httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("accepted grant status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp api.AccessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Permission != "comment" || resp.Via != "connection" {
		t.Errorf("decision = %s via %s, want comment via connection", resp.Permission, resp.Via)
	}
}

func TestAccess_StrangerDenied(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice@example.com")
	carol := seedUser(t, env, "carol@example.com")
	aliceTok := seedToken(t, env, alice.ID)
	carolTok := seedToken(t, env, carol.ID)

	body := `{"share_type":"connection","permission":"view","recipients":[]}`
	putShare(t, env, aliceTok, "note", "n-1", body)

	req := authRequest(httptest.NewRequest("GET", "/items/note/n-1/access", nil), carolTok)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("stranger status = %d, want 403", rec.Code)
	}
	var errBody api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errBody.Code != "NO_ACCESS" {
		t.Errorf("error code = %q, want NO_ACCESS", errBody.Code)
	}

	// An unshared item denies identically.
	req = authRequest(httptest.NewRequest("GET", "/items/note/nothing-here/access", nil), carolTok)
	rec = httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("unshared item status = %d, want 403", rec.Code)
	}
}

func TestAccess_BlockedViewerDenied(t *testing.T) {
	env := newTestEnv(t)
	_, bob, aliceTok, bobTok := seedConnected(t, env, "alice@example.com", "bob@example.com")

	body := fmt.Sprintf(`{"share_type":"connection","permission":"view","recipients":[%q]}`, bob.ID)
	created := putShare(t, env, aliceTok, "note", "n-1", body)

	req := authRequest(httptest.NewRequest("POST", "/shares/"+created.ID+"/accept", nil), bobTok)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status = %d, want 200", rec.Code)
	}

	req = authRequest(httptest.NewRequest("PUT", "/blocks/"+bob.ID, nil), aliceTok)
	rec = httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("block status = %d, want 200", rec.Code)
	}

	// The block denies with the same shape as an unshared item.
	req = authRequest(httptest.NewRequest("GET", "/items/note/n-1/access", nil), bobTok)
	rec = httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("blocked viewer status = %d, want 403", rec.Code)
	}
	var errBody api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errBody.Code != "NO_ACCESS" {
		t.Errorf("error code = %q, want NO_ACCESS", errBody.Code)
	}
}

func TestLink_ResolvePublic(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice@example.com")
	aliceTok := seedToken(t, env, alice.ID)
	links := linkRouter(env)

	created := putShare(t, env, aliceTok, "note", "n-1", `{"share_type":"public","permission":"view"}`)

	req := httptest.NewRequest("POST", "/s/"+created.LinkToken, nil)
	rec := httptest.NewRecorder()
	links.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp api.AccessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Permission != "view" || resp.Via != "token" {
		t.Errorf("decision = %s via %s, want view via token", resp.Permission, resp.Via)
	}
	if resp.ItemID != "n-1" || resp.ItemType != "note" {
		t.Errorf("item = %s/%s, want note/n-1", resp.ItemType, resp.ItemID)
	}

	// The resolution was queued for the access log.
	select {
	case ev := <-env.AccessCh:
		if ev.ShareConfigID != created.ID {
			t.Errorf("logged share %q, want %q", ev.ShareConfigID, created.ID)
		}
	default:
		t.Error("no access event queued")
	}
}

func TestLink_ResolvePassword(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice@example.com")
	aliceTok := seedToken(t, env, alice.ID)
	links := linkRouter(env)

	created := putShare(t, env, aliceTok, "note", "n-1",
		`{"share_type":"password","permission":"view","password":"hunter2"}`)

	// No password.
	req := httptest.NewRequest("POST", "/s/"+created.LinkToken, nil)
	rec := httptest.NewRecorder()
	links.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing password status = %d, want 401", rec.Code)
	}

	// Wrong password.
	req = httptest.NewRequest("POST", "/s/"+created.LinkToken, strings.NewReader(`{"password":"nope"}`))
	rec = httptest.NewRecorder()
	links.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong password status = %d, want 403", rec.Code)
	}

	// Correct password.
	req = httptest.NewRequest("POST", "/s/"+created.LinkToken, strings.NewReader(`{"password":"hunter2"}`))
	rec = httptest.NewRecorder()
	links.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("correct password status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestLink_DeadTokensLookIdentical(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice@example.com")
	aliceTok := seedToken(t, env, alice.ID)
	links := linkRouter(env)

	created := putShare(t, env, aliceTok, "note", "n-1", `{"share_type":"public","permission":"view"}`)

	req := authRequest(httptest.NewRequest("DELETE", "/shares/"+created.ID, nil), aliceTok)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("revoke status = %d, want 204", rec.Code)
	}

	// Revoked and never-issued tokens produce the same 404.
	for _, tok := range []string{created.LinkToken, "jsl_never_issued"} {
		req := httptest.NewRequest("POST", "/s/"+tok, nil)
		rec := httptest.NewRecorder()
		links.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("token %q status = %d, want 404", tok, rec.Code)
		}
		var errBody api.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if errBody.Code != "NOT_FOUND" {
			t.Errorf("token %q error code = %q, want NOT_FOUND", tok, errBody.Code)
		}
	}
}
