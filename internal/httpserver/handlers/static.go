package handlers

import (
	"io/fs"
	"net/http"

	"github.com/MrSnakeDoc/goodnews/web"
)

// Static serves the embedded app shell. The service worker is never cached
// so a new release is picked up on the next visit.
func Static() http.Handler {
	files := http.FileServer(http.FS(web.Assets))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/service-worker.js":
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Service-Worker-Allowed", "/")
		case "/manifest.webmanifest":
			w.Header().Set("Content-Type", "application/manifest+json")
		}
		if _, err := fs.Stat(web.Assets, trimSlash(r.URL.Path)); err != nil {
			// Unknown paths get the shell; the client router takes over.
			r.URL.Path = "/"
		}
		files.ServeHTTP(w, r)
	})
}

func trimSlash(p string) string {
	if len(p) > 1 && p[0] == '/' {
		return p[1:]
	}
	return "."
}
