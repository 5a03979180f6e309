package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/startpage/internal/favicon"
	"github.com/MrSnakeDoc/startpage/internal/logger"
	"github.com/MrSnakeDoc/startpage/internal/scheduler"
	"github.com/MrSnakeDoc/startpage/internal/storage"
)

// FaviconFetcher looks up a site's icons.
type FaviconFetcher interface {
	Fetch(ctx context.Context, pageURL string) (favicon.Result, error)
}

// Pinger reports whether an optional backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HomepageSync is the manual side of the Homepage file sync job.
type HomepageSync interface {
	Trigger() bool
	Status() scheduler.SyncStatus
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz/infra
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Storage      *storage.Storage // profiles, sessions and assets
	Favicons     FaviconFetcher   // favicon discovery
	FaviconCache Pinger           // nil when Redis is not configured
	HomepageSync HomepageSync     // nil when no Homepage file is configured
	DistDir      string           // built frontend

	LoginBurst  int // login attempts allowed at once per client IP
	LoginPerMin int // login attempts refilled per minute per client IP
}

// Now returns d.TimeNow() or time.Now when unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
