package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type componentStatus struct {
	OK         bool   `json:"ok"`
	Enabled    bool   `json:"enabled"`
	Profiles   *int   `json:"profiles,omitempty"`
	Sessions   *int   `json:"sessions,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Imported   *int   `json:"imported,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports each component. Storage is the only critical one; a broken
// favicon cache or Homepage sync only degrades the service.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"storage":  storageStatus(d),
			"redis":    redisStatus(r.Context(), d),
			"homepage": homepageStatus(d),
		}
		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["storage"].OK {
		return "critical"
	}
	for _, c := range components {
		if c.Enabled && !c.OK {
			return "degraded"
		}
	}
	return "optimal"
}

func storageStatus(d deps.Deps) componentStatus {
	if d.Storage == nil {
		return componentStatus{Enabled: true, Error: "storage not initialized"}
	}
	st := d.Storage.Stats()
	return componentStatus{
		OK:       st.Profiles > 0,
		Enabled:  true,
		Profiles: &st.Profiles,
		Sessions: &st.Sessions,
	}
}

func redisStatus(ctx context.Context, d deps.Deps) componentStatus {
	if d.FaviconCache == nil {
		return componentStatus{OK: true, Impact: "favicon-cache-disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.FaviconCache.Ping(ctx); err != nil {
		return componentStatus{
			Enabled: true,
			Impact:  "favicon-cache-unavailable",
			Error:   err.Error(),
		}
	}
	return componentStatus{OK: true, Enabled: true}
}

func homepageStatus(d deps.Deps) componentStatus {
	if d.HomepageSync == nil {
		return componentStatus{OK: true}
	}

	st := d.HomepageSync.Status()
	lastReload := "never"
	if st.LastRun != nil {
		lastReload = st.LastRun.Format("2006-01-02 15:04:05")
	}
	return componentStatus{
		OK:         st.Error == "",
		Enabled:    true,
		LastReload: lastReload,
		Imported:   &st.Imported,
		Error:      st.Error,
	}
}
