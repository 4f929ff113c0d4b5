package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vantrack/server/internal/auth"
	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/middleware"
)

// AuthHandler handles login, logout and session info
type AuthHandler struct {
	authService  *auth.Service
	cookieSecure bool
	log          logging.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, cookieSecure bool, log logging.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure, log: log}
}

// loginRequest is the request body for POST /login
type loginRequest struct {
	Codigo string `json:"codigo"`
}

// HandleLoginPage handles GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "submit the access code with POST /login",
	})
}

// HandleLogin handles POST /login. The code is read from a JSON body or from
// the "codigo" form field.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var code string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		code = req.Codigo
	} else {
		code = r.FormValue("codigo")
	}

	if strings.TrimSpace(code) == "" {
		respondWithError(w, http.StatusBadRequest, "codigo is required")
		return
	}

	sess, err := h.authService.Login(r.Context(), code, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			respondWithError(w, http.StatusUnauthorized, "invalid or expired code")
			return
		}
		h.log.Error(r.Context(), "login failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to verify code")
		return
	}

	auth.SetSessionCookies(w, sess, h.cookieSecure)
	respondJSON(w, http.StatusOK, sessionResponse{
		Success:   true,
		Role:      string(sess.Role),
		ExpiresAt: sess.ExpiresAt.UnixMilli(),
	})
}

// HandleLogout handles POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookies(w, h.cookieSecure)
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleHome handles GET / and reports the session role set by the gate
func (h *AuthHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	role, ok := middleware.GetRole(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Success: true, Role: string(role)})
}
