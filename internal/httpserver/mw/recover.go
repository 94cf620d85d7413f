package mw

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/metrics"
)

// Recover is the top-level error boundary: a panicking handler is logged
// with its stack and the client gets a generic "please reload" message.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				metrics.HTTPPanicsTotal.Inc()
				log.Error("panic in handler",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("request_id", middleware.GetReqID(r.Context())),
					logger.Any("panic", rec),
					logger.Stack("stack"))

				if r.Header.Get("Connection") != "Upgrade" {
					writeError(w, http.StatusInternalServerError, i18n.T(r.Context(), "something_went_wrong"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
