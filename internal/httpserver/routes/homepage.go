package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/mw"
)

func init() { Register(registerHomepage) }

func registerHomepage(r chi.Router, d deps.Deps) {
	authed := r.With(mw.Auth(d.Storage, d.Logger))

	authed.Get("/api/homepage/sync", handlers.HomepageSyncStatus(d))
	authed.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/api/homepage/sync", handlers.HomepageSync(d))
}
