package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-share/internal/auth"
	"github.com/joestump/joe-share/internal/metrics"
	"github.com/joestump/joe-share/internal/notify"
	"github.com/joestump/joe-share/internal/store"
)

// sharesAPIHandler provides REST handlers for share management.
type sharesAPIHandler struct {
	shares    *store.ShareStore
	accessLog *store.AccessLogStore
	notifier  notify.Notifier
}

// registerShareRoutes registers share and grant routes on r.
func registerShareRoutes(r chi.Router, shares *store.ShareStore, accessLog *store.AccessLogStore, notifier notify.Notifier) {
	h := &sharesAPIHandler{shares: shares, accessLog: accessLog, notifier: notifier}
	r.Put("/items/{type}/{id}/share", h.Upsert)
	r.Get("/items/{type}/{id}/share", h.GetForItem)
	r.Get("/shares/by-me", h.ListByMe)
	r.Get("/shares/with-me", h.ListWithMe)
	r.Get("/shares/{id}", h.Get)
	r.Delete("/shares/{id}", h.Revoke)
	r.Post("/shares/{id}/accept", h.AcceptGrant)
	r.Post("/shares/{id}/decline", h.DeclineGrant)
	r.Get("/shares/{id}/activity", h.Activity)
}

// toShareResponse renders a config for its owner. linkToken is the freshly
// minted plaintext token, or "" when none was minted on this request.
func toShareResponse(cfg *store.ShareConfig, grants []*store.ShareGrant, linkToken string) *ShareResponse {
	resp := &ShareResponse{
		ID:          cfg.ID,
		ItemID:      cfg.ItemID,
		ItemType:    cfg.ItemType,
		ShareType:   cfg.ShareType,
		Permission:  cfg.Permission,
		LinkToken:   linkToken,
		HasPassword: cfg.PasswordHash.Valid,
		Expired:     cfg.Expired(time.Now().UTC()),
		AccessCount: cfg.AccessCount,
		CreatedAt:   cfg.CreatedAt,
		UpdatedAt:   cfg.UpdatedAt,
	}
	if cfg.ExpiresAt.Valid {
		t := cfg.ExpiresAt.Time
		resp.ExpiresAt = &t
	}
	for _, g := range grants {
		resp.Recipients = append(resp.Recipients, GrantResponse{
			UserID:    g.RecipientUserID,
			Status:    g.Status,
			CreatedAt: g.SharedAt,
		})
	}
	return resp
}

// Upsert creates or replaces the share policy for an item. An item has at
// most one live policy; sharing again reconfigures it in place.
// PUT /api/v1/items/{type}/{id}/share
//
// @Summary      Share an item
// @Description  Creates or updates the item's share policy. The link token, if minted, appears only in this response.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        type  path      string        true  "Item type"
// @Param        id    path      string        true  "Item ID"
// @Param        body  body      ShareRequest  true  "Share policy"
// @Success      200   {object}  ShareResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /items/{type}/{id}/share [put]
func (h *sharesAPIHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	cfg, linkToken, err := h.shares.Upsert(r.Context(), store.UpsertShareParams{
		OwnerID:    user.ID,
		ItemID:     chi.URLParam(r, "id"),
		ItemType:   chi.URLParam(r, "type"),
		ShareType:  req.ShareType,
		Permission: req.Permission,
		Recipients: req.Recipients,
		Password:   req.Password,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ShareMutationsTotal.WithLabelValues("upsert").Inc()
	for _, uid := range req.Recipients {
		h.notifier.Notify(r.Context(), notify.Event{
			Kind:      notify.ShareCreated,
			ActorID:   user.ID,
			SubjectID: uid,
			ItemID:    cfg.ItemID,
			ItemType:  cfg.ItemType,
		})
	}

	grants, err := h.shares.ListGrants(r.Context(), cfg.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, toShareResponse(cfg, grants, linkToken))
}

// GetForItem returns the live share policy for one of the caller's items.
// GET /api/v1/items/{type}/{id}/share
//
// @Summary      Get an item's share policy
// @Description  Returns the live share policy for an item the caller owns.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        type  path      string  true  "Item type"
// @Param        id    path      string  true  "Item ID"
// @Success      200   {object}  ShareResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /items/{type}/{id}/share [get]
func (h *sharesAPIHandler) GetForItem(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	cfg, err := h.shares.GetActiveByItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "type"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if cfg.OwnerID != user.ID {
		// Non-owners learn nothing about the policy, not even that one exists.
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}

	grants, err := h.shares.ListGrants(r.Context(), cfg.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, toShareResponse(cfg, grants, ""))
}

// Get returns one share config by ID. Owner only.
// GET /api/v1/shares/{id}
//
// @Summary      Get a share
// @Description  Returns a share config by ID. Only the owner may access.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Share ID"
// @Success      200  {object}  ShareResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /shares/{id} [get]
func (h *sharesAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	cfg, err := h.shares.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if cfg.OwnerID != user.ID {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}

	grants, err := h.shares.ListGrants(r.Context(), cfg.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, toShareResponse(cfg, grants, ""))
}

// Revoke revokes a share config. All channels through it stop working at
// once. Idempotent when already revoked.
// DELETE /api/v1/shares/{id}
//
// @Summary      Revoke a share
// @Description  Revokes the share. The link token and all grants stop working immediately.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Share ID"
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /shares/{id} [delete]
func (h *sharesAPIHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	cfg, err := h.shares.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := h.shares.Revoke(r.Context(), cfg.ID, user.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ShareMutationsTotal.WithLabelValues("revoke").Inc()
	h.notifier.Notify(r.Context(), notify.Event{
		Kind:     notify.ShareRevoked,
		ActorID:  user.ID,
		ItemID:   cfg.ItemID,
		ItemType: cfg.ItemType,
	})

	w.WriteHeader(http.StatusNoContent)
}

// AcceptGrant accepts an incoming connection-share grant.
// POST /api/v1/shares/{id}/accept
//
// @Summary      Accept a shared item
// @Description  Accepts a pending grant on a share addressed to the caller.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Share ID"
// @Success      200  {object}  SharedWithMeResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /shares/{id}/accept [post]
func (h *sharesAPIHandler) AcceptGrant(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	shareID := chi.URLParam(r, "id")
	grant, err := h.shares.AcceptGrant(r.Context(), shareID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotAGrantee) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeStoreError(w, err)
		return
	}

	cfg, err := h.shares.GetByID(r.Context(), shareID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	metrics.ShareMutationsTotal.WithLabelValues("grant_accept").Inc()
	h.notifier.Notify(r.Context(), notify.Event{
		Kind:      notify.GrantAccepted,
		ActorID:   user.ID,
		SubjectID: cfg.OwnerID,
		ItemID:    cfg.ItemID,
		ItemType:  cfg.ItemType,
	})

	writeJSON(w, http.StatusOK, toSharedWithMeResponse(cfg, grant.Status, grant.SharedAt))
}

// DeclineGrant declines a pending grant, or leaves a share the caller had
// already accepted.
// POST /api/v1/shares/{id}/decline
//
// @Summary      Decline or leave a shared item
// @Description  Declines a pending grant, or removes the caller from a share they previously accepted.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Share ID"
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /shares/{id}/decline [post]
func (h *sharesAPIHandler) DeclineGrant(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	if err := h.shares.DeclineOrLeave(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ShareMutationsTotal.WithLabelValues("grant_decline").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// ListByMe returns the caller's live shares, newest first.
// GET /api/v1/shares/by-me
//
// @Summary      List shares created by the caller
// @Description  Returns the caller's live share configs. Filter with ?item_type=, paginate with ?cursor= and ?limit=.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        item_type  query     string  false  "Filter by item type"
// @Param        cursor     query     string  false  "Pagination cursor"
// @Param        limit      query     int     false  "Page size (max 200)"
// @Success      200        {object}  ShareListResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Security     BearerToken
// @Router       /shares/by-me [get]
func (h *sharesAPIHandler) ListByMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	itemType := r.URL.Query().Get("item_type")
	if itemType != "" {
		if err := store.ValidateItemType(itemType); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
	}

	cfgs, err := h.shares.ListByOwner(r.Context(), user.ID, itemType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	cursor, limit := parsePagination(r)
	page, next := pageShares(cfgs, decodeCursor(cursor), limit)

	resp := ShareListResponse{Shares: make([]*ShareResponse, 0, len(page))}
	for _, cfg := range page {
		grants, err := h.shares.ListGrants(r.Context(), cfg.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}
		resp.Shares = append(resp.Shares, toShareResponse(cfg, grants, ""))
	}
	if next != "" {
		resp.NextCursor = encodeCursor(next)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListWithMe returns shares addressed to the caller, pending and accepted.
// GET /api/v1/shares/with-me
//
// @Summary      List shares addressed to the caller
// @Description  Returns connection shares where the caller is a recipient. Filter with ?item_type=.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        item_type  query     string  false  "Filter by item type"
// @Param        cursor     query     string  false  "Pagination cursor"
// @Param        limit      query     int     false  "Page size (max 200)"
// @Success      200        {object}  SharedWithMeListResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Security     BearerToken
// @Router       /shares/with-me [get]
func (h *sharesAPIHandler) ListWithMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	itemType := r.URL.Query().Get("item_type")
	if itemType != "" {
		if err := store.ValidateItemType(itemType); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
	}

	rows, err := h.shares.ListForRecipient(r.Context(), user.ID, itemType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	cursor, limit := parsePagination(r)
	page, next := pageSharedWithMe(rows, decodeCursor(cursor), limit)

	resp := SharedWithMeListResponse{Shares: make([]*SharedWithMeResponse, 0, len(page))}
	for _, row := range page {
		resp.Shares = append(resp.Shares, toSharedWithMeResponse(&row.ShareConfig, row.GrantStatus, row.SharedAt))
	}
	if next != "" {
		resp.NextCursor = encodeCursor(next)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Activity returns access statistics for a share. Owner only.
// GET /api/v1/shares/{id}/activity
//
// @Summary      Share access activity
// @Description  Returns aggregate and recent link-access activity for a share the caller owns.
// @Tags         Shares
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Share ID"
// @Success      200  {object}  ActivityResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /shares/{id}/activity [get]
func (h *sharesAPIHandler) Activity(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	cfg, err := h.shares.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if cfg.OwnerID != user.ID {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}

	stats, err := h.accessLog.Stats(r.Context(), cfg.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	recent, err := h.accessLog.ListRecent(r.Context(), cfg.ID, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := ActivityResponse{
		ShareID: cfg.ID,
		Total:   stats.Total,
		Last7d:  stats.Last7d,
		Last30d: stats.Last30d,
		Recent:  make([]RecentAccessEntry, 0, len(recent)),
	}
	for _, a := range recent {
		resp.Recent = append(resp.Recent, RecentAccessEntry{AccessedAt: a.AccessedAt, UserAgent: a.UserAgent})
	}

	writeJSON(w, http.StatusOK, resp)
}

func toSharedWithMeResponse(cfg *store.ShareConfig, grantStatus string, sharedAt time.Time) *SharedWithMeResponse {
	resp := &SharedWithMeResponse{
		ShareID:     cfg.ID,
		ItemID:      cfg.ItemID,
		ItemType:    cfg.ItemType,
		OwnerID:     cfg.OwnerID,
		Permission:  cfg.Permission,
		GrantStatus: grantStatus,
		Expired:     cfg.Expired(time.Now().UTC()),
		SharedAt:    sharedAt,
	}
	if cfg.ExpiresAt.Valid {
		t := cfg.ExpiresAt.Time
		resp.ExpiresAt = &t
	}
	return resp
}

// pageShares applies cursor pagination over an already-ordered slice. The
// cursor is the last-seen share ID.
func pageShares(cfgs []*store.ShareConfig, after string, limit int) (page []*store.ShareConfig, next string) {
	start := 0
	if after != "" {
		for i, c := range cfgs {
			if c.ID == after {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end >= len(cfgs) {
		return cfgs[start:], ""
	}
	return cfgs[start:end], cfgs[end-1].ID
}

func pageSharedWithMe(rows []*store.SharedWithMe, after string, limit int) (page []*store.SharedWithMe, next string) {
	start := 0
	if after != "" {
		for i, r := range rows {
			if r.ID == after {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end >= len(rows) {
		return rows[start:], ""
	}
	return rows[start:end], rows[end-1].ID
}
