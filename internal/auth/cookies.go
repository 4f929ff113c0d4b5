package auth

import (
	"net/http"
	"strconv"
	"time"
)

// Session cookie names
const (
	CookieToken  = "auth_token"
	CookieRole   = "auth_role"
	CookieExpiry = "auth_expiry"
)

// SetSessionCookies writes the three session cookies for sess.
func SetSessionCookies(w http.ResponseWriter, sess Session, secure bool) {
	values := map[string]string{
		CookieToken:  sess.Token,
		CookieRole:   string(sess.Role),
		CookieExpiry: strconv.FormatInt(sess.ExpiresAt.UnixMilli(), 10),
	}
	for _, name := range []string{CookieToken, CookieRole, CookieExpiry} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    values[name],
			Path:     "/",
			Expires:  sess.ExpiresAt.UTC(),
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// ClearSessionCookies expires all three session cookies.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{CookieToken, CookieRole, CookieExpiry} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
