package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	if d.Identity == nil {
		return
	}

	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Scope:      "signin",
		Burst:      d.SignInBurst,
		PerMinute:  d.SignInPerMin,
		MaxClients: 10_000,
		TrustProxy: d.TrustProxy,
	}))
	limited.Post("/auth/link", handlers.RequestSignInLink(d))
	limited.Get("/auth/complete", handlers.CompleteSignIn(d))
	limited.Post("/auth/complete", handlers.CompleteSignIn(d))

	r.Post("/auth/signout", handlers.SignOut(d))
	r.Get("/api/me", handlers.Me(d))
	r.With(mw.RequireSession).Post("/api/sync", handlers.Sync(d))
}
