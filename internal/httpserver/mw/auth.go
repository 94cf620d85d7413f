package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
)

// SessionCookie holds the session token in browsers.
const SessionCookie = "goodnews_session"

// SessionToken returns the bearer token of r, from the Authorization header
// or the session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Session attaches the authenticated session, if any, to the request
// context. Invalid tokens are ignored here; RequireSession rejects them.
// A nil service disables sign-in entirely.
func Session(svc *identity.Service, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if svc == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				log.Debug("ignoring invalid session", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithSession(r.Context(), sess)))
		})
	}
}

// RequireSession answers 401 unless Session found a valid session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.SessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, i18n.T(r.Context(), "unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
