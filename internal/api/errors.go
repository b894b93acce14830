package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joestump/joe-share/internal/access"
	"github.com/joestump/joe-share/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorResponse documents the standard error envelope for swagger.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// isNotFound reports whether err is the store's missing-row sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// writeStoreError maps a store/access error to its HTTP representation on the
// authenticated API surface, where the caller's identity is established and
// specific reasons may be surfaced. The anonymous share-link surface must NOT
// use this; it collapses everything into a uniform 404.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, store.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "forbidden", "FORBIDDEN")
	case errors.Is(err, store.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error(), "INVALID_STATE")
	case errors.Is(err, store.ErrAlreadyConnected):
		writeError(w, http.StatusConflict, err.Error(), "ALREADY_CONNECTED")
	case errors.Is(err, store.ErrAlreadyPending):
		writeError(w, http.StatusConflict, err.Error(), "ALREADY_PENDING")
	case errors.Is(err, store.ErrBlocked):
		// Deliberately generic; never reveals which side placed the block.
		writeError(w, http.StatusConflict, store.ErrBlocked.Error(), "CANNOT_CONNECT")
	case errors.Is(err, store.ErrSelfConnection),
		errors.Is(err, store.ErrInvalidRecipients),
		errors.Is(err, store.ErrInvalidItemType),
		errors.Is(err, store.ErrInvalidShareType),
		errors.Is(err, store.ErrInvalidPermission),
		errors.Is(err, store.ErrPasswordMissing):
		writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, store.ErrNotAGrantee):
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, access.ErrNoAccess):
		writeError(w, http.StatusForbidden, "no access", "NO_ACCESS")
	case errors.Is(err, access.ErrPasswordRequired):
		writeError(w, http.StatusUnauthorized, "password required", "PASSWORD_REQUIRED")
	case errors.Is(err, access.ErrInvalidPassword):
		writeError(w, http.StatusForbidden, "invalid password", "INVALID_PASSWORD")
	default:
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
