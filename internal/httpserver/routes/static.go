package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/handlers"
)

func init() { Register(registerStatic) }

func registerStatic(r chi.Router, _ deps.Deps) {
	r.Handle("/*", handlers.Static())
}
