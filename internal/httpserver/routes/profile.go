package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/mw"
)

func init() { Register(registerProfile) }

func registerProfile(r chi.Router, d deps.Deps) {
	authed := r.With(mw.Auth(d.Storage, d.Logger))

	authed.Get("/api/profile", handlers.GetProfile(d))
	authed.Post("/api/profile", handlers.CreateProfile(d))
	authed.Put("/api/profile", handlers.UpdateProfile(d))
	authed.Delete("/api/profile", handlers.DeleteProfile(d))

	authed.Post("/api/profile/rename", handlers.RenameProfile(d))
	authed.Get("/api/profile/names", handlers.ProfileNames(d))
	authed.Post("/api/profile/sort", handlers.SortProfiles(d))
	authed.Post("/api/profile/import", handlers.ImportProfile(d))
}
