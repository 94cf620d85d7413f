package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/links"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidRequest(fmt.Errorf("decode body: %w", err))
	}
	return nil
}

// ListLinks returns the links matching ?q=&lang=&fav=&tag=, sorted by title.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		fav, _ := strconv.ParseBool(q.Get("fav"))
		out, err := d.Links.List(r.Context(), domain.Filter{
			Query:         q.Get("q"),
			Language:      q.Get("lang"),
			FavoritesOnly: fav,
			Tag:           q.Get("tag"),
		})
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreateLink stores a link from the add form.
func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in links.Input
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, d, err)
			return
		}
		link, err := d.Links.Add(r.Context(), in)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, link)
	}
}

func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := d.Links.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

// UpdateLink applies a partial update.
func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.LinkPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, r, d, err)
			return
		}
		link, err := d.Links.Edit(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite sets the favorite flag of a link.
func SetFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req favoriteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}
		link, err := d.Links.ToggleFavorite(r.Context(), chi.URLParam(r, "id"), req.Favorite)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

// DeleteLink removes a link. With ?cloud=1 the signed-in user's remote copy
// goes too.
func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := ""
		if cloud, _ := strconv.ParseBool(r.URL.Query().Get("cloud")); cloud {
			sess, ok := identity.SessionFromContext(r.Context())
			if !ok {
				writeError(w, r, d, errs.ErrUnauthorized)
				return
			}
			uid = sess.User.ID
		}

		if err := d.Links.Delete(r.Context(), chi.URLParam(r, "id"), uid); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearLinks wipes the local store.
func ClearLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Links.Clear(r.Context()); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
