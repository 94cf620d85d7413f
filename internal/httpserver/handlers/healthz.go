package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
)

type healthzResponse struct {
	Status           string  `json:"status"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Store            string  `json:"store"`
	SyncEnabled      bool    `json:"sync_enabled"`
	EventSubscribers int     `json:"event_subscribers"`
	Version          string  `json:"version,omitempty"`
	Commit           string  `json:"commit,omitempty"`
}

// Healthz is the liveness probe: it answers as long as the process serves
// HTTP and never touches a backend.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(d.StartTime).Round(time.Second).Seconds(),
			Store:         d.StoreMode,
			SyncEnabled:   d.Reconciler != nil,
			Version:       d.Version,
			Commit:        d.Commit,
		}
		if d.Bus != nil {
			resp.EventSubscribers = d.Bus.Subscribers()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
