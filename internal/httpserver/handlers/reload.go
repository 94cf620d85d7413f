package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
)

// Reload triggers a manual re-import of the seed file.
func Reload(d deps.Deps) http.HandlerFunc {
	return trigger(d, d.ReloadTrigger, "seed reload", "reload_started")
}

// Backup triggers a manual backup snapshot.
func Backup(d deps.Deps) http.HandlerFunc {
	return trigger(d, d.BackupTrigger, "backup", "backup_started")
}

func trigger(d deps.Deps, ch chan struct{}, what, okKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ch == nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: i18n.T(r.Context(), "not_found")})
			return
		}

		select {
		case ch <- struct{}{}:
			d.Logger.Info("manual "+what+" triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, messageResponse{Message: i18n.T(r.Context(), okKey)})
		default:
			d.Logger.Warn(what+" already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: i18n.T(r.Context(), "rate_limited")})
		}
	}
}
