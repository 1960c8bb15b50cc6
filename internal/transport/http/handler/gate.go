package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ncetprep/educator-gate/internal/application/gate"
	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/transport/http/middleware"
)

// GateCookieName is the HTTP-only cookie carrying the gate token between the
// verify-code step and binding completion.
const GateCookieName = "edu_gate"

// GateHandler handles the educator onboarding gate endpoints.
type GateHandler struct {
	svc     gate.Service
	limiter middleware.Limiter
}

func NewGateHandler(svc gate.Service, limiter middleware.Limiter) *GateHandler {
	return &GateHandler{svc: svc, limiter: limiter}
}

// VerifyCode checks a submitted access code and, on a match, sets the gate
// cookie. Attempts are throttled per source address before the store is
// touched.
func (h *GateHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(middleware.RealIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, VerifyEnvelope{OK: false, Message: "too many attempts, try again later"})
		return
	}

	var req struct {
		ClientCode string `json:"clientCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{OK: false, Message: "invalid request body"})
		return
	}

	token, expiresAt, err := h.svc.VerifyCode(r.Context(), req.ClientCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadRequest):
			writeJSON(w, http.StatusBadRequest, VerifyEnvelope{OK: false, Message: "clientCode required"})
		case errors.Is(err, domain.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, VerifyEnvelope{OK: false, Message: "invalid access code"})
		default:
			writeJSON(w, http.StatusInternalServerError, VerifyEnvelope{OK: false, Message: "could not verify code"})
		}
		return
	}

	// Cookie lifetime tracks the token's own expiry, so the two can never
	// disagree about how long the gate stays open.
	http.SetCookie(w, &http.Cookie{
		Name:     GateCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, VerifyEnvelope{OK: true})
}

// CompleteBinding runs the binding flow for the holder of the gate cookie and
// an identity-provider session cookie.
func (h *GateHandler) CompleteBinding(w http.ResponseWriter, r *http.Request) {
	gateToken := cookieValue(r, GateCookieName)
	sessionToken := cookieValue(r, middleware.SessionCookieName)

	_, err := h.svc.CompleteBinding(r.Context(), gateToken, sessionToken)
	if err != nil {
		var be *domain.BindError
		if !errors.As(err, &be) {
			writeJSON(w, http.StatusInternalServerError, BindEnvelope{Success: false, Error: domain.RejectUnknown})
			return
		}
		if be.Code == domain.RejectCodeAlreadyBound {
			// The identity-provider session was force-terminated; the stale
			// session cookie must not outlive it.
			clearCookie(w, middleware.SessionCookieName)
		}
		writeJSON(w, bindStatus(be.Code), BindEnvelope{Success: false, Error: be.Code})
		return
	}

	clearCookie(w, GateCookieName)
	writeJSON(w, http.StatusOK, BindEnvelope{Success: true})
}

func bindStatus(code string) int {
	switch code {
	case domain.RejectGateExpired, domain.RejectGateInvalid, domain.RejectNoSession, domain.RejectInvalidSession:
		return http.StatusUnauthorized
	case domain.RejectCodeInactive, domain.RejectCodeAlreadyBound:
		return http.StatusForbidden
	case domain.RejectCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
