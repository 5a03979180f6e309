package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
)

// FetchFavicon runs favicon discovery for ?url. It never holds the storage
// lock; the lookup is pure network I/O.
func FetchFavicon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Favicons.Fetch(r.Context(), r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
