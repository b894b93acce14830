package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-share/internal/access"
	"github.com/joestump/joe-share/internal/auth"
	"github.com/joestump/joe-share/internal/metrics"
	"github.com/joestump/joe-share/internal/store"
	"github.com/joestump/joe-share/internal/token"
)

// accessAPIHandler answers authorization questions and resolves share links.
type accessAPIHandler struct {
	resolver *access.Resolver
	shares   *store.ShareStore
	accessCh chan<- store.AccessEvent
}

// registerAccessRoutes registers the authenticated access-check route on r.
func registerAccessRoutes(r chi.Router, resolver *access.Resolver, shares *store.ShareStore, accessCh chan<- store.AccessEvent) {
	h := &accessAPIHandler{resolver: resolver, shares: shares, accessCh: accessCh}
	r.Get("/items/{type}/{id}/access", h.Check)
}

// Check resolves the caller's effective permission on an item. A share link
// token may be supplied alongside the session via ?token= and ?password=.
// GET /api/v1/items/{type}/{id}/access
//
// @Summary      Check access to an item
// @Description  Returns the caller's effective permission and the channel that granted it.
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        type      path      string  true   "Item type"
// @Param        id        path      string  true   "Item ID"
// @Param        token     query     string  false  "Share link token"
// @Param        password  query     string  false  "Share password"
// @Success      200       {object}  AccessResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      403       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Security     BearerToken
// @Router       /items/{type}/{id}/access [get]
func (h *accessAPIHandler) Check(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	req := access.Request{
		ViewerID: user.ID,
		ItemID:   chi.URLParam(r, "id"),
		ItemType: chi.URLParam(r, "type"),
		Token:    r.URL.Query().Get("token"),
		Password: r.URL.Query().Get("password"),
	}

	start := time.Now()
	decision, err := h.resolver.Resolve(r.Context(), req)
	metrics.AccessCheckDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AccessChecksTotal.WithLabelValues("deny", "").Inc()
		switch {
		case errors.Is(err, store.ErrBlocked):
			// Indistinguishable from the item not being shared at all.
			writeError(w, http.StatusForbidden, "no access", "NO_ACCESS")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusForbidden, "no access", "NO_ACCESS")
		default:
			writeStoreError(w, err)
		}
		return
	}

	metrics.AccessChecksTotal.WithLabelValues("allow", string(decision.Via)).Inc()
	h.recordLinkAccess(r, decision)

	writeJSON(w, http.StatusOK, AccessResponse{
		ItemID:     req.ItemID,
		ItemType:   req.ItemType,
		Permission: decision.Permission,
		Via:        string(decision.Via),
	})
}

// linkHandler resolves anonymous share links. It lives outside the bearer
// token surface; the token in the URL is the whole credential.
type linkHandler struct {
	resolver *access.Resolver
	shares   *store.ShareStore
	accessCh chan<- store.AccessEvent
}

// NewLinkHandler builds the public share-link resolution handler.
func NewLinkHandler(resolver *access.Resolver, shares *store.ShareStore, accessCh chan<- store.AccessEvent) http.HandlerFunc {
	h := &linkHandler{resolver: resolver, shares: shares, accessCh: accessCh}
	return h.Resolve
}

// Resolve exchanges a share link token for access to its item. Unknown,
// revoked, and expired tokens are all reported as the same 404 so a caller
// probing tokens learns nothing from the distinction.
// POST /s/{token}
//
// @Summary      Resolve a share link
// @Description  Resolves a share link token. Password-protected links require the password in the body.
// @Tags         Access
// @Accept       json
// @Produce      json
// @Param        token  path      string              true   "Share link token"
// @Param        body   body      ResolveLinkRequest  false  "Password, if the link requires one"
// @Success      200    {object}  AccessResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      403    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /s/{token} [post]
func (h *linkHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	linkToken := chi.URLParam(r, "token")
	if linkToken == "" {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}

	var req ResolveLinkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
	}

	// The caller only holds the token; find the item it unlocks first.
	cfg, err := h.shares.GetActiveByTokenHash(r.Context(), token.Hash(linkToken))
	if err != nil {
		metrics.TokenResolutionsTotal.WithLabelValues("not_found").Inc()
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	decision, err := h.resolver.Resolve(r.Context(), access.Request{
		ItemID:   cfg.ItemID,
		ItemType: cfg.ItemType,
		Token:    linkToken,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, access.ErrPasswordRequired):
			metrics.TokenResolutionsTotal.WithLabelValues("password_required").Inc()
			writeError(w, http.StatusUnauthorized, "password required", "PASSWORD_REQUIRED")
		case errors.Is(err, access.ErrInvalidPassword):
			metrics.TokenResolutionsTotal.WithLabelValues("invalid_password").Inc()
			writeError(w, http.StatusForbidden, "invalid password", "INVALID_PASSWORD")
		default:
			metrics.TokenResolutionsTotal.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		}
		return
	}

	metrics.TokenResolutionsTotal.WithLabelValues("ok").Inc()
	h.recordLinkAccess(r, decision)

	writeJSON(w, http.StatusOK, AccessResponse{
		ItemID:     cfg.ItemID,
		ItemType:   cfg.ItemType,
		Permission: decision.Permission,
		Via:        string(decision.Via),
	})
}

func (h *linkHandler) recordLinkAccess(r *http.Request, d *access.Decision) {
	recordLinkAccess(h.accessCh, r, d)
}

func (h *accessAPIHandler) recordLinkAccess(r *http.Request, d *access.Decision) {
	recordLinkAccess(h.accessCh, r, d)
}

// recordLinkAccess enqueues an access log row for token-granted decisions.
// The channel send never blocks a request; a full buffer drops the row.
func recordLinkAccess(ch chan<- store.AccessEvent, r *http.Request, d *access.Decision) {
	if ch == nil || d.Via != access.ViaToken || d.ShareConfigID == "" {
		return
	}
	ev := store.AccessEvent{
		ShareConfigID: d.ShareConfigID,
		IPHash:        store.HashIP(remoteIP(r)),
		UserAgent:     r.UserAgent(),
	}
	select {
	case ch <- ev:
	default:
		metrics.AccessLogWriteErrorsTotal.Inc()
	}
}

// remoteIP returns the client address, honoring RealIP middleware which
// rewrites RemoteAddr from X-Forwarded-For.
func remoteIP(r *http.Request) string {
	host := r.RemoteAddr
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}
