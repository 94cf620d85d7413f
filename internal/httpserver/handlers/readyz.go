package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports ready once the local store answers. Postgres is optional:
// the app keeps serving local links without it.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := true
		if d.Redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			ready = d.Redis.Ping(ctx) == nil
			cancel()
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready})
	}
}
