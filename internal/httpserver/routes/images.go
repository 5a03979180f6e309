package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/mw"
)

func init() { Register(registerImages) }

func registerImages(r chi.Router, d deps.Deps) {
	authed := r.With(mw.Auth(d.Storage, d.Logger))

	authed.Post("/api/images/icon/{id}", handlers.SetIcon(d))
	authed.Get("/api/fetch-favicon", handlers.FetchFavicon(d))

	authed.Get("/api/background-image", handlers.ListBackgroundImages(d))
	authed.Post("/api/background-image", handlers.UploadBackgroundImage(d))
	authed.Delete("/api/background-image/delete", handlers.DeleteBackgroundImage(d))

	authed.Method(http.MethodGet, "/images/*", handlers.Assets("/images", d.Storage.AssetsDir()))
}
