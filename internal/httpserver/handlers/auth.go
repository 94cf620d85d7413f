package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/mw"
	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
)

// PendingEmailCookie remembers the address a sign-in link was sent to, so
// completing the sign-in on the same device needs no retyping.
const PendingEmailCookie = "goodnews_pending_email"

const pendingEmailTTL = time.Hour

type signInRequest struct {
	Email    string `json:"email"`
	Continue string `json:"continue"`
}

// RequestSignInLink mails a one-time sign-in link. Accepts JSON or a form.
func RequestSignInLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, d, err)
				return
			}
		} else {
			req.Email = r.FormValue("email")
			req.Continue = r.FormValue("continue")
		}

		if err := d.Identity.RequestLink(r.Context(), req.Email, req.Continue); err != nil {
			writeError(w, r, d, err)
			return
		}

		email, _ := identity.NormalizeEmail(req.Email)
		http.SetCookie(w, &http.Cookie{
			Name:     PendingEmailCookie,
			Value:    email,
			Path:     "/auth",
			MaxAge:   int(pendingEmailTTL.Seconds()),
			HttpOnly: true,
			Secure:   d.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusAccepted, messageResponse{Message: i18n.T(r.Context(), "signin_link_sent")})
	}
}

// CompleteSignIn finishes a sign-in from the mailed link. The email comes
// from the form or query, else from the pending cookie; without either the
// user is asked to confirm it.
func CompleteSignIn(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link := r.URL.String()
		if !identity.IsSignInLink(link) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: i18n.T(r.Context(), "signin_invalid")})
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		if email == "" {
			if c, err := r.Cookie(PendingEmailCookie); err == nil {
				email = c.Value
			}
		}
		if email == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: i18n.T(r.Context(), "confirm_email"), Field: "email"})
			return
		}

		sess, err := d.Identity.CompleteSignIn(r.Context(), email, link)
		if errors.Is(err, errs.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: i18n.T(r.Context(), "signin_invalid")})
			return
		}
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     PendingEmailCookie,
			Value:    "",
			Path:     "/auth",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   d.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		setSessionCookie(w, d, sess.Token, sess.ExpiresAt)

		d.Logger.Info("sign-in completed", logger.String("uid", sess.User.ID))
		http.Redirect(w, r, identity.SafeContinuePath(r.URL.Query().Get(identity.ParamContinue)), http.StatusSeeOther)
	}
}

// SignOut revokes the current session and drops its cookie.
func SignOut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := mw.SessionToken(r); token != "" {
			if err := d.Identity.SignOut(r.Context(), token); err != nil && !errors.Is(err, errs.ErrUnauthorized) {
				writeError(w, r, d, err)
				return
			}
		}
		setSessionCookie(w, d, "", time.Time{})
		writeJSON(w, http.StatusOK, messageResponse{Message: i18n.T(r.Context(), "signed_out")})
	}
}

type meResponse struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me describes the signed-in user.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := identity.SessionFromContext(r.Context())
		if !ok {
			writeError(w, r, d, errs.ErrUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, meResponse{
			UID:       sess.User.ID,
			Email:     sess.User.Email,
			ExpiresAt: sess.ExpiresAt,
		})
	}
}

// setSessionCookie stores token until expires; an empty token deletes it.
func setSessionCookie(w http.ResponseWriter, d deps.Deps, token string, expires time.Time) {
	c := &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   d.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	} else {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}
