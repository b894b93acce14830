package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-share/internal/auth"
	"github.com/joestump/joe-share/internal/store"
)

// usersAPIHandler provides REST handlers for user endpoints.
type usersAPIHandler struct {
	users *store.UserStore
}

// registerUserRoutes registers user routes on r.
func registerUserRoutes(r chi.Router, users *store.UserStore) {
	h := &usersAPIHandler{users: users}
	r.Get("/users/me", h.Me)
	r.Get("/users/lookup", h.Lookup)
}

// Me returns the authenticated caller's profile.
// GET /api/v1/users/me
//
// @Summary      Current user
// @Description  Returns the caller's profile.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /users/me [get]
func (h *usersAPIHandler) Me(w http.ResponseWriter, r *http.Request) {
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

// Lookup finds a user by email, for addressing connection requests and
// share recipients.
// GET /api/v1/users/lookup?email=
//
// @Summary      Look up a user by email
// @Description  Returns the user registered under the given email address.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        email  query     string  true  "Email address"
// @Success      200    {object}  UserResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Security     BearerToken
// @Router       /users/lookup [get]
func (h *usersAPIHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required", "BAD_REQUEST")
		return
	}

	target, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		ID:    target.ID,
		Email: target.Email,
		Name:  target.DisplayName,
	})
}
