package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/metrics"
	"github.com/MrSnakeDoc/goodnews/internal/utils"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	Scope      string        // metric label, ex: "signin"
	Burst      int           // requests a fresh client may send at once
	PerMinute  int           // sustained requests per minute
	MaxClients int           // tracked clients before idle ones are evicted, 0 = no cap
	IdleTTL    time.Duration // forget clients idle this long (default 15m)
	TrustProxy bool          // resolve IP from proxy headers when true
}

type tokenBucket struct {
	tokens  float64
	updated time.Time
}

// limiter is a per-client token bucket. One mutex guards every bucket:
// the limited routes see a handful of requests per minute.
type limiter struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	rate      float64 // tokens per second
	clients   map[string]*tokenBucket
	lastSweep time.Time
	now       func() time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Scope == "" {
		cfg.Scope = "default"
	}
	return &limiter{
		cfg:     cfg,
		rate:    float64(cfg.PerMinute) / 60,
		clients: make(map[string]*tokenBucket),
		now:     time.Now,
	}
}

// take spends one token of key. When none is left it reports how long
// until the next one.
func (l *limiter) take(key string) (ok bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, found := l.clients[key]
	if !found {
		b = &tokenBucket{tokens: float64(l.cfg.Burst), updated: now}
		l.clients[key] = b
	}
	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(l.cfg.Burst), b.tokens+elapsed*l.rate)
	}
	b.updated = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait := time.Duration(math.Ceil((1-b.tokens)/l.rate)) * time.Second
	return false, 0, max(wait, time.Second)
}

// sweep drops idle clients once per IdleTTL, or right away when the map
// is over MaxClients.
func (l *limiter) sweep(now time.Time) {
	full := l.cfg.MaxClients > 0 && len(l.clients) >= l.cfg.MaxClients
	if !full && now.Sub(l.lastSweep) < l.cfg.IdleTTL {
		return
	}
	for key, b := range l.clients {
		if now.Sub(b.updated) > l.cfg.IdleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// RateLimit throttles requests per client IP. Rejected requests get 429
// with Retry-After and a translated JSON error.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)
	rejected := metrics.RateLimitedTotal.WithLabelValues(l.cfg.Scope)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retryAfter := l.take(utils.ClientIP(r, l.cfg.TrustProxy))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				rejected.Inc()
				writeError(w, http.StatusTooManyRequests, i18n.T(r.Context(), "rate_limited"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
