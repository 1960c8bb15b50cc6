package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ncetprep/educator-gate/internal/application/identity"
	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/transport/http/middleware"
)

// SessionHandler handles identity-provider session endpoints.
type SessionHandler struct {
	svc        identity.Service
	sessionTTL time.Duration
}

func NewSessionHandler(svc identity.Service, sessionTTL time.Duration) *SessionHandler {
	return &SessionHandler{svc: svc, sessionTTL: sessionTTL}
}

// SignInWithGoogle exchanges a Google ID token for a session cookie.
func (h *SessionHandler) SignInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "id_token required")
		return
	}

	result, err := h.svc.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid identity token")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, SignInEnvelope{
		Identity: &domain.Identity{ID: result.Session.IdentityID, Email: result.Session.Email},
		Role:     result.Role,
	})
}

// GetCurrent returns the identity behind the caller's session cookie.
func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ident, err := h.svc.Current(r.Context(), cookieValue(r, middleware.SessionCookieName))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, SignInEnvelope{Identity: ident})
}

// Logout terminates the caller's session and clears the cookie.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, middleware.SessionCookieName)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.TerminateSession(r.Context(), token); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not log out")
		return
	}
	clearCookie(w, middleware.SessionCookieName)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
