package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/metrics"
)

const sseHeartbeat = 25 * time.Second

// Events streams bus events as Server-Sent Events until the client leaves
// or the bus closes.
func Events(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// The stream outlives the server write timeout.
		_ = rc.SetWriteDeadline(time.Time{})

		ch, unsubscribe := d.Bus.Subscribe()
		defer unsubscribe()
		metrics.EventSubscribers.Inc()
		defer metrics.EventSubscribers.Dec()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if _, err := fmt.Fprint(w, "retry: 3000\n\n"); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			d.Logger.Warn("event stream not flushable", logger.Error(err))
			return
		}

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(e)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
