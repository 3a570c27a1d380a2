// internal/auth/session.go
//
// Session persistence helpers.
//
// Context
//   The browser keeps two durable values per origin: the opaque session
//   token (`admin_token`) and the display username (`admin_user`).  They
//   are written together on login, read on every protected-route entry,
//   and destroyed together on logout or failed verification.  Logout is
//   client-side only; no invalidation round trip is required.
//
//   API clients may instead send the token as `Authorization: Bearer`;
//   TokenFromRequest prefers the header so curl and the SPA keep working
//   against the same endpoints.
//
//------------------------------------------------------------------------------

package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	// TokenCookie stores the opaque bearer token.
	TokenCookie = "admin_token"
	// UserCookie stores the display username shown in the admin header.
	UserCookie = "admin_user"
)

// SetSession persists both session values.  Callers invoke this after
// credential verification succeeds and before navigating into the console.
func SetSession(w http.ResponseWriter, r *http.Request, token, username string, ttl time.Duration) {
	expires := time.Now().Add(ttl)
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UserCookie,
		Value:    username,
		Path:     "/",
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// ClearSession destroys both values.  Safe to call when nothing is set.
func ClearSession(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, UserCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == TokenCookie,
		})
	}
}

// TokenFromRequest extracts the session token, preferring the
// Authorization header over the cookie.  ok == false when neither carries
// a value.
func TokenFromRequest(r *http.Request) (token string, ok bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t, true
		}
	}
	c, err := r.Cookie(TokenCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// CurrentUser returns the display username stored in the session, if any.
func CurrentUser(r *http.Request) (username string, ok bool) {
	c, err := r.Cookie(UserCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
