package handlers

import (
	"net/http"

	"github.com/upb/todo-app/auth"
	"github.com/upb/todo-app/utils"
)

// AuthDeps provides auth handler for route wiring
type AuthDeps interface {
	AuthHandler() *auth.Handler
}

// AuthLoginHandler returns an http.HandlerFunc for the provider login redirect
func AuthLoginHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, func(h *auth.Handler) http.HandlerFunc { return h.HandleLogin })
}

// AuthCallbackHandler returns an http.HandlerFunc for the OAuth callback endpoint
func AuthCallbackHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, func(h *auth.Handler) http.HandlerFunc { return h.HandleCallback })
}

// AuthDevLoginHandler returns an http.HandlerFunc for the dev mode login
func AuthDevLoginHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, func(h *auth.Handler) http.HandlerFunc { return h.HandleDevLogin })
}

// AuthLogoutHandler returns an http.HandlerFunc for the logout endpoint
func AuthLogoutHandler(deps AuthDeps) http.HandlerFunc {
	return withAuthHandler(deps, func(h *auth.Handler) http.HandlerFunc { return h.HandleLogout })
}

// withAuthHandler resolves the handler per request so a missing one answers 500
func withAuthHandler(deps AuthDeps, pick func(*auth.Handler) http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			pick(h)(w, r)
			return
		}
		_ = utils.WriteError(w, http.StatusInternalServerError, "Authentication not configured", nil)
	}
}
