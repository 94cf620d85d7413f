package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
)

// Share is the share-target entry point. Android puts the shared URL in
// "url" or, more often, somewhere in "text".
func Share(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		raw := strings.TrimSpace(q.Get("url"))
		if raw == "" {
			raw = firstURL(q.Get("text"))
		}

		link, created, err := d.Links.Share(r.Context(), raw, q.Get("title"))
		if errors.Is(err, errs.ErrInvalidURL) {
			d.Logger.Debug("share target got no usable url", logger.String("url", raw))
			http.Redirect(w, r, "/?error=validate_https", http.StatusSeeOther)
			return
		}
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("shared link received",
			logger.String("id", link.ID),
			logger.Bool("created", created))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// firstURL returns the first http(s) URL in free text.
func firstURL(text string) string {
	for _, field := range strings.Fields(text) {
		lower := strings.ToLower(field)
		if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
			return strings.TrimRight(field, ".,;)\"'")
		}
	}
	return ""
}

// Go redirects to the saved link that best matches ?q=, or back to the
// home view filtered by the query.
func Go(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		ranked, err := d.Links.Resolve(r.Context(), query)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if len(ranked) == 0 {
			d.Logger.Info("no matching link found", logger.String("query", query))
			http.Redirect(w, r, "/?q="+url.QueryEscape(query), http.StatusFound)
			return
		}

		best := ranked[0].Link
		d.Logger.Info("resolved link",
			logger.String("query", query),
			logger.String("url", best.URL))
		http.Redirect(w, r, best.URL, http.StatusFound)
	}
}
