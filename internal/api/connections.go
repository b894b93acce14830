package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-share/internal/auth"
	"github.com/joestump/joe-share/internal/metrics"
	"github.com/joestump/joe-share/internal/notify"
	"github.com/joestump/joe-share/internal/store"
)

// connectionsAPIHandler provides REST handlers for the connection graph.
type connectionsAPIHandler struct {
	conns    *store.ConnectionStore
	notifier notify.Notifier
}

// registerConnectionRoutes registers connection and block routes on r.
func registerConnectionRoutes(r chi.Router, conns *store.ConnectionStore, notifier notify.Notifier) {
	h := &connectionsAPIHandler{conns: conns, notifier: notifier}
	r.Get("/connections", h.List)
	r.Post("/connections", h.Request)
	r.Post("/connections/{id}/accept", h.Accept)
	r.Delete("/connections/{id}", h.Remove)
	r.Get("/connections/users/{uid}", h.Relationship)
	r.Put("/blocks/{uid}", h.Block)
	r.Delete("/blocks/{uid}", h.Unblock)
}

// toConnectionResponse renders a connection edge from viewerID's perspective.
// Block details are only included for the user who placed the block.
func toConnectionResponse(c *store.Connection, viewerID string) ConnectionResponse {
	resp := ConnectionResponse{
		ID:        c.ID,
		UserID:    c.OtherParty(viewerID),
		Status:    c.Status,
		Requested: c.RequesterID == viewerID,
		CreatedAt: c.CreatedAt,
	}
	if c.RespondedAt.Valid {
		t := c.RespondedAt.Time
		resp.RespondedAt = &t
	}
	if c.Status == store.ConnectionBlocked && c.BlockedByID.Valid && c.BlockedByID.String == viewerID {
		resp.BlockedByMe = true
		resp.BlockReason = c.BlockReason.String
	}
	return resp
}

// List returns the caller's connections, optionally filtered by status.
// Blocked edges placed by someone else are omitted so a blocked user cannot
// discover the block.
// GET /api/v1/connections
//
// @Summary      List connections
// @Description  Returns the caller's connections. Filter with ?status=pending|accepted|blocked.
// @Tags         Connections
// @Accept       json
// @Produce      json
// @Param        status  query     string  false  "Filter by status"
// @Success      200     {array}   ConnectionResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Security     BearerToken
// @Router       /connections [get]
func (h *connectionsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && status != store.ConnectionPending && status != store.ConnectionAccepted && status != store.ConnectionBlocked {
		writeError(w, http.StatusBadRequest, "invalid status filter", "BAD_REQUEST")
		return
	}

	conns, err := h.conns.ListForUser(r.Context(), user.ID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		if c.Status == store.ConnectionBlocked && (!c.BlockedByID.Valid || c.BlockedByID.String != user.ID) {
			continue
		}
		resp = append(resp, toConnectionResponse(c, user.ID))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Request creates a pending connection request to another user.
// POST /api/v1/connections
//
// @Summary      Request a connection
// @Description  Sends a connection request. Fails with a generic conflict if either side has blocked the other.
// @Tags         Connections
// @Accept       json
// @Produce      json
// @Param        body  body      ConnectionRequest  true  "Target user"
// @Success      201   {object}  ConnectionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /connections [post]
func (h *connectionsAPIHandler) Request(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", "BAD_REQUEST")
		return
	}

	conn, err := h.conns.Request(r.Context(), user.ID, req.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ConnectionMutationsTotal.WithLabelValues("request").Inc()
	h.notifier.Notify(r.Context(), notify.Event{
		Kind:      notify.ConnectionRequested,
		ActorID:   user.ID,
		SubjectID: req.UserID,
	})

	writeJSON(w, http.StatusCreated, toConnectionResponse(conn, user.ID))
}

// Accept accepts a pending connection request addressed to the caller.
// POST /api/v1/connections/{id}/accept
//
// @Summary      Accept a connection request
// @Description  Accepts a pending request. Only the non-requesting party may accept.
// @Tags         Connections
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Connection ID"
// @Success      200  {object}  ConnectionResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /connections/{id}/accept [post]
func (h *connectionsAPIHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	conn, err := h.conns.Accept(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ConnectionMutationsTotal.WithLabelValues("accept").Inc()
	h.notifier.Notify(r.Context(), notify.Event{
		Kind:      notify.ConnectionAccepted,
		ActorID:   user.ID,
		SubjectID: conn.OtherParty(user.ID),
	})

	writeJSON(w, http.StatusOK, toConnectionResponse(conn, user.ID))
}

// Remove deletes an accepted connection or withdraws/declines a pending one.
// Existing share grants between the two users are left in place.
// DELETE /api/v1/connections/{id}
//
// @Summary      Remove a connection
// @Description  Removes an accepted connection, or withdraws/declines a pending request.
// @Tags         Connections
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Connection ID"
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /connections/{id} [delete]
func (h *connectionsAPIHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	if err := h.conns.Remove(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ConnectionMutationsTotal.WithLabelValues("remove").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// Relationship returns the caller's relationship with another user. A block
// placed by the other user reads as "none".
// GET /api/v1/connections/users/{uid}
//
// @Summary      Get relationship with a user
// @Description  Returns the connection status between the caller and another user.
// @Tags         Connections
// @Accept       json
// @Produce      json
// @Param        uid  path      string  true  "User ID"
// @Success      200  {object}  RelationshipResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /connections/users/{uid} [get]
func (h *connectionsAPIHandler) Relationship(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	uid := chi.URLParam(r, "uid")
	resp := RelationshipResponse{UserID: uid, Status: "none"}

	conn, err := h.conns.Relationship(r.Context(), user.ID, uid)
	if err == nil {
		resp.Status = conn.Status
		if conn.Status == store.ConnectionBlocked {
			if conn.BlockedByID.Valid && conn.BlockedByID.String == user.ID {
				resp.BlockedByMe = true
				resp.BlockReason = conn.BlockReason.String
			} else {
				// The other party placed the block; do not reveal it.
				resp.Status = "none"
			}
		}
	} else if !isNotFound(err) {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Block blocks another user, replacing any existing connection for the pair.
// Idempotent when the caller already holds the block.
// PUT /api/v1/blocks/{uid}
//
// @Summary      Block a user
// @Description  Blocks a user. Severs any connection and suppresses all future requests from either side.
// @Tags         Blocks
// @Accept       json
// @Produce      json
// @Param        uid   path      string        true   "User ID to block"
// @Param        body  body      BlockRequest  false  "Optional private reason"
// @Success      200   {object}  ConnectionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /blocks/{uid} [put]
func (h *connectionsAPIHandler) Block(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req BlockRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
	}

	conn, err := h.conns.Block(r.Context(), user.ID, chi.URLParam(r, "uid"), req.Reason)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ConnectionMutationsTotal.WithLabelValues("block").Inc()
	h.notifier.Notify(r.Context(), notify.Event{
		Kind:      notify.ConnectionBlocked,
		ActorID:   user.ID,
		SubjectID: conn.OtherParty(user.ID),
	})

	writeJSON(w, http.StatusOK, toConnectionResponse(conn, user.ID))
}

// Unblock lifts a block the caller placed. The former connection is not
// restored; the pair returns to no relationship.
// DELETE /api/v1/blocks/{uid}
//
// @Summary      Unblock a user
// @Description  Removes a block the caller placed. Does not restore the previous connection.
// @Tags         Blocks
// @Accept       json
// @Produce      json
// @Param        uid  path      string  true  "User ID to unblock"
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /blocks/{uid} [delete]
func (h *connectionsAPIHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	if err := h.conns.Unblock(r.Context(), user.ID, chi.URLParam(r, "uid")); err != nil {
		writeStoreError(w, err)
		return
	}

	metrics.ConnectionMutationsTotal.WithLabelValues("unblock").Inc()
	w.WriteHeader(http.StatusNoContent)
}
