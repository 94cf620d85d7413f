package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/goodnews/internal/i18n"
)

// Language stores the negotiated UI language in the request context.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Negotiate(r)
		w.Header().Set("Content-Language", string(lang))
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
