// Package metrics declares the Prometheus collectors of goodnews.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goodnews_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goodnews_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	HTTPPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goodnews_http_panics_total",
			Help: "Handler panics caught by the recover boundary",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
		[]string{"scope"},
	)

	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_access_denied_total",
			Help: "Requests rejected by the host or CIDR guards",
		},
		[]string{"reason"}, // host | cidr
	)

	// Link Metrics
	LinkMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_link_mutations_total",
			Help: "Link writes by operation and outcome",
		},
		[]string{"op", "status"},
	)

	ImportedLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_imported_links_total",
			Help: "Records seen by bulk imports",
		},
		[]string{"result"}, // added | skipped
	)

	// Sync Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_sync_runs_total",
			Help: "Sync runs by outcome",
		},
		[]string{"status"},
	)

	SyncedLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_synced_links_total",
			Help: "Links moved by sync",
		},
		[]string{"direction"}, // up | down
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goodnews_sync_duration_seconds",
			Help:    "Sync duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Identity Metrics
	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_sign_ins_total",
			Help: "Email-link sign-in steps by outcome",
		},
		[]string{"step", "status"}, // step: request | complete
	)

	// Event Metrics
	EventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goodnews_event_subscribers",
			Help: "Open server-sent event streams",
		},
	)

	// Backup Metrics
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_backups_total",
			Help: "Export snapshots written to object storage",
		},
		[]string{"status"},
	)
)

// Status returns the outcome label for err.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordHTTP records one served request.
func RecordHTTP(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSync records one sync run.
func RecordSync(up, down int, duration time.Duration, err error) {
	SyncRunsTotal.WithLabelValues(Status(err)).Inc()
	SyncDuration.Observe(duration.Seconds())
	if err == nil {
		SyncedLinksTotal.WithLabelValues("up").Add(float64(up))
		SyncedLinksTotal.WithLabelValues("down").Add(float64(down))
	}
}

// RecordImport records a bulk import result.
func RecordImport(added, skipped int) {
	ImportedLinksTotal.WithLabelValues("added").Add(float64(added))
	ImportedLinksTotal.WithLabelValues("skipped").Add(float64(skipped))
}
