package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/events"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/reconcile"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	AllowedCIDRS   []string         // IPs allowed to access readyz/infra/reload/metrics
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins    []string         // origins allowed for cross-site API calls, empty = same-origin only
	SecureCookies  bool             // set the Secure flag on cookies (https deployments)
	RequestTimeout time.Duration    // per-request timeout, event streams excepted
	SignInBurst    int              // sign-in link requests per client IP before throttling
	SignInPerMin   int              // sign-in link refill per client IP per minute
	StoreMode      string           // "redis" | "memory"

	Redis    Pinger // nil in memory mode
	Postgres Pinger // nil when cloud sync is disabled

	Links      *links.Service
	Identity   *identity.Service     // nil disables sign-in
	Reconciler *reconcile.Reconciler // nil disables sync
	Bus        *events.Bus

	ReloadTrigger chan struct{} // Channel to trigger manual seed reload (nil if no seed file)
	BackupTrigger chan struct{} // Channel to trigger a manual backup (nil if backups disabled)
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
