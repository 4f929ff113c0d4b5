// Package middleware holds the session gate and the login rate limiter.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vantrack/server/internal/auth"
	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
)

type contextKey string

const roleKey contextKey = "role"

// SessionState is the outcome of inspecting the session cookies
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateExpired
	StateUser
	StateAdmin
)

func (s SessionState) String() string {
	switch s {
	case StateExpired:
		return "expired"
	case StateUser:
		return "user"
	case StateAdmin:
		return "admin"
	default:
		return "unauthenticated"
	}
}

const (
	loginPath   = "/login"
	homePath    = "/"
	adminPrefix = "/admin"
)

var publicPrefixes = []string{"/login", "/logout", "/health", "/static", "/favicon.ico"}

// IsPublicPath reports whether path bypasses the gate.
func IsPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// IsAdminPath reports whether path requires the admin role.
func IsAdminPath(path string) bool {
	return strings.HasPrefix(path, adminPrefix)
}

// Gate checks session cookies on every non-public request.
type Gate struct {
	tokens       *auth.TokenService
	cookieSecure bool
	now          func() time.Time
	log          logging.Logger
}

// NewGate creates a gate. A nil tokens service trusts the cookie values as
// presented; otherwise the token signature and role claim are verified.
func NewGate(tokens *auth.TokenService, cookieSecure bool, log logging.Logger) *Gate {
	return &Gate{tokens: tokens, cookieSecure: cookieSecure, now: time.Now, log: log}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Evaluate derives the session state from the request cookies. Expiry is
// checked first; an unparsable expiry is ignored.
func (g *Gate) Evaluate(r *http.Request) SessionState {
	token := cookieValue(r, auth.CookieToken)
	role := cookieValue(r, auth.CookieRole)

	if raw := cookieValue(r, auth.CookieExpiry); raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms < g.now().UnixMilli() {
			return StateExpired
		}
	}
	if token == "" || role == "" {
		return StateUnauthenticated
	}

	if g.tokens != nil {
		claims, err := g.tokens.Verify(token)
		if err != nil || string(claims.Role) != role {
			return StateUnauthenticated
		}
	}

	if model.Role(role) == model.RoleAdmin {
		return StateAdmin
	}
	return StateUser
}

// Middleware enforces the gate.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		state := g.Evaluate(r)
		switch state {
		case StateExpired:
			g.log.Debug(r.Context(), "session expired", "path", r.URL.Path)
			auth.ClearSessionCookies(w, g.cookieSecure)
			http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
			return
		case StateUnauthenticated:
			http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
			return
		case StateUser:
			if IsAdminPath(r.URL.Path) {
				g.log.Info(r.Context(), "non-admin session denied", "path", r.URL.Path)
				http.Redirect(w, r, homePath, http.StatusTemporaryRedirect)
				return
			}
		}

		role := model.RoleUser
		if state == StateAdmin {
			role = model.RoleAdmin
		}
		ctx := context.WithValue(r.Context(), roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRole returns the session role attached by the gate
func GetRole(ctx context.Context) (model.Role, bool) {
	role, ok := ctx.Value(roleKey).(model.Role)
	return role, ok
}

// WithRole attaches role to ctx the way the gate does
func WithRole(ctx context.Context, role model.Role) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]string{"error": message}
	_ = json.NewEncoder(w).Encode(response)
}
