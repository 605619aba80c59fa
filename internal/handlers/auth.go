package handlers

import (
	"net/http"

	"github.com/okleong/campscore/internal/auth"
)

// handleLogin exchanges the organizer password for a session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		respondError(w, Unauthorized("Invalid password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondSuccess(w, "Logged in")
}

// handleLogout invalidates the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

// handleSession reports whether the caller holds a valid organizer session
func (h *Handlers) handleSession(w http.ResponseWriter, r *http.Request) {
	respondOK(w, SessionResponse{Authenticated: h.Auth.GetSessionFromRequest(r)})
}
