package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/mw"
)

func init() { Register(registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	r = r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	r.Route("/api/links", func(r chi.Router) {
		r.Get("/", handlers.ListLinks(d))
		r.Post("/", handlers.CreateLink(d))
		r.Delete("/", handlers.ClearLinks(d))

		r.Get("/{id}", handlers.GetLink(d))
		r.Patch("/{id}", handlers.UpdateLink(d))
		r.Delete("/{id}", handlers.DeleteLink(d))
		r.Put("/{id}/favorite", handlers.SetFavorite(d))
	})

	r.Post("/api/import", handlers.Import(d))
	r.Get("/api/export", handlers.Export(d))

	r.Get("/add", handlers.Share(d))
	r.Get("/go", handlers.Go(d))
}
