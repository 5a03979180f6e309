package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
)

// Assets serves uploaded icons and backgrounds under prefix.
func Assets(prefix, dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.StripPrefix(prefix, noDirListing(files))
}

// noDirListing turns directory requests into 404s.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SPA serves the built frontend. Paths that are not files fall back to
// index.html so client-side routes survive a reload. Unknown /api paths
// stay 404.
func SPA(d deps.Deps) http.HandlerFunc {
	root := http.Dir(d.DistDir)
	files := http.FileServer(root)

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}

		clean := path.Clean("/" + r.URL.Path)
		info, err := os.Stat(filepath.Join(d.DistDir, filepath.FromSlash(clean)))
		if err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}

		index := filepath.Join(d.DistDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	}
}
