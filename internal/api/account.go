package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-share/internal/auth"
)

// accountHandler serves the session-authenticated account surface. It exists
// so a freshly logged-in user can mint their first API token without already
// holding one; everything else lives behind bearer auth.
type accountHandler struct {
	tokens *tokensAPIHandler
}

// registerAccountRoutes registers session-scoped account routes on r.
func registerAccountRoutes(r chi.Router, tokens auth.TokenStore) {
	h := &accountHandler{tokens: &tokensAPIHandler{tokens: tokens}}
	r.Get("/", h.Me)
	r.Get("/tokens", h.tokens.List)
	r.Post("/tokens", h.tokens.Create)
	r.Delete("/tokens/{id}", h.tokens.Revoke)
}

// Me returns the authenticated user.
// GET /account
//
// @Summary      Current user
// @Description  Returns the logged-in user's profile.
// @Tags         Account
// @Accept       json
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /account [get]
func (h *accountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.DisplayName,
		Role:  user.Role,
	})
}
