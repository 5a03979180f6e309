package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/logger"
)

// HomepageSync queues a re-read of the configured Homepage file.
func HomepageSync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.HomepageSync == nil {
			http.Error(w, "homepage sync is not configured", http.StatusNotFound)
			return
		}

		if !d.HomepageSync.Trigger() {
			d.Logger.Warn("homepage sync already queued",
				logger.String("remote_ip", r.RemoteAddr))
			http.Error(w, "sync already queued, please wait", http.StatusTooManyRequests)
			return
		}

		d.Logger.Info("manual homepage sync triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusAccepted, d.HomepageSync.Status())
	}
}

// HomepageSyncStatus reports the last sync run.
func HomepageSyncStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.HomepageSync == nil {
			http.Error(w, "homepage sync is not configured", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, d.HomepageSync.Status())
	}
}
