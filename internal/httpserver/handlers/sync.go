package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/events"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/reconcile"
)

type syncResponse struct {
	reconcile.Result
	Message string `json:"message"`
}

// Sync reconciles the local store with the signed-in user's collection.
// A refused sync answers 403 with a hint, any other failure 502.
func Sync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Reconciler == nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: i18n.T(r.Context(), "not_found")})
			return
		}
		sess, ok := identity.SessionFromContext(r.Context())
		if !ok {
			writeError(w, r, d, errs.ErrUnauthorized)
			return
		}

		res, err := d.Reconciler.Sync(r.Context(), sess.User.ID)
		if err != nil {
			kind := reconcile.Classify(err)
			msg := i18n.T(r.Context(), kind.HintKey())
			d.Logger.Warn("sync failed",
				logger.String("uid", sess.User.ID),
				logger.Bool("permission_denied", kind == reconcile.KindPermissionDenied),
				logger.Error(err))
			publish(d, events.LevelError, msg)

			status := http.StatusBadGateway
			if kind == reconcile.KindPermissionDenied {
				status = http.StatusForbidden
			}
			writeJSON(w, status, errorResponse{Error: msg})
			return
		}

		msg := i18n.T(r.Context(), "sync_result", i18n.Vars{"up": res.Up, "down": res.Down})
		publish(d, events.LevelSuccess, msg)
		writeJSON(w, http.StatusOK, syncResponse{Result: res, Message: msg})
	}
}

func publish(d deps.Deps, level events.Level, msg string) {
	if d.Bus != nil {
		d.Bus.Publish(events.Toast(level, msg))
	}
}
