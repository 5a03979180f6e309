package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready       bool `json:"ready"`
	Profiles    int  `json:"profiles"`
	Sessions    int  `json:"sessions"`
	AuthEnabled bool `json:"auth_enabled"`
}

// Readyz reports ready once storage is loaded and holds at least one
// profile.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Storage == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{})
			return
		}

		st := d.Storage.Stats()
		res := readyzResponse{
			Ready:       st.Profiles > 0,
			Profiles:    st.Profiles,
			Sessions:    st.Sessions,
			AuthEnabled: st.AuthEnabled,
		}
		status := http.StatusOK
		if !res.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, res)
	}
}
