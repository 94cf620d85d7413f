package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/mw"
)

func init() { Register(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	internal := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/api/version", handlers.Version(d))
	internal.Get("/readyz", handlers.Readyz(d))
	internal.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/infra", handlers.Infra(d))
	internal.Method("GET", "/metrics", handlers.Metrics())
}
