package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/mw"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	admin := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
	admin.Post("/reload", handlers.Reload(d))
	admin.Post("/backup", handlers.Backup(d))
}
