package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	LinksStored *int   `json:"links_stored,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":    checkStore(r.Context(), d),
			"postgres": checkPing(r.Context(), d.Postgres, "cloud-sync-disabled"),
			"events": {
				OK:   d.Bus != nil,
				Mode: "sse",
			},
		}
		if d.StoreMode == "redis" {
			components["redis"] = checkPing(r.Context(), d.Redis, "links-unavailable")
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "critical" without a local store, "degraded" without
// the remote collection and "optimal" otherwise.
func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical"
	}
	if redis, ok := components["redis"]; ok && !redis.OK {
		return "critical"
	}
	if pg, ok := components["postgres"]; ok && !pg.OK {
		return "degraded"
	}
	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	all, err := d.Links.Store().GetAll(ctx)
	if err != nil {
		return componentStatus{OK: false, Mode: d.StoreMode, Error: "unreachable"}
	}
	n := len(all)
	return componentStatus{OK: true, Mode: d.StoreMode, LinksStored: &n}
}

func checkPing(ctx context.Context, p deps.Pinger, impact string) componentStatus {
	if p == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: impact,
			Error:  "not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: impact,
			Error:  "timeout",
		}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}
