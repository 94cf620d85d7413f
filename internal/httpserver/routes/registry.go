package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg    Registrar
	mws    []Middleware
	stream bool // long-lived response, exempt from the request timeout
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterStream registers routes that hold the response open.
func RegisterStream(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws, stream: true})
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	r.Group(func(g chi.Router) {
		if d.RequestTimeout > 0 {
			g.Use(middleware.Timeout(d.RequestTimeout))
		}
		mount(g, d, false)
	})
	mount(r, d, true)
}

func mount(r chi.Router, d deps.Deps, stream bool) {
	for _, e := range registry {
		if e.stream != stream {
			continue
		}
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}
