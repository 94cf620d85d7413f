// Package linkstest runs the same behavioural checks against every links.Store.
package linkstest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/stretchr/testify/require"
)

// NewLink returns a valid manual link for tests.
func NewLink(id, rawURL, title string) *domain.Link {
	ts := domain.Millis(time.UnixMilli(1_700_000_000_000))
	return &domain.Link{
		ID:        id,
		Title:     title,
		URL:       domain.NormalizeURL(rawURL),
		Tags:      []string{},
		Language:  domain.LanguageEN,
		CreatedAt: ts,
		UpdatedAt: ts,
		Source:    domain.SourceManual,
	}
}

// IDs returns the sorted IDs of links.
func IDs(ls []*domain.Link) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	sort.Strings(out)
	return out
}

// Run exercises newStore with the shared store contract. newStore must
// return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) links.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "http://example.com", "Example")))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/", got.URL)
		require.Equal(t, "Example", got.Title)

		byURL, err := s.GetByURL(ctx, "example.com")
		require.NoError(t, err)
		require.Equal(t, "a", byURL.ID)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "nope")
		require.ErrorIs(t, err, errs.ErrNotFound)
		_, err = s.GetByURL(ctx, "https://nope.example/")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("put replaces by id", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "https://one.example/", "One")))
		require.NoError(t, s.Put(ctx, NewLink("a", "https://two.example/", "Two")))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.Equal(t, "https://two.example/", all[0].URL)

		_, err = s.GetByURL(ctx, "https://one.example/")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("put rejects duplicate url", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "https://example.com/", "A")))
		err := s.Put(ctx, NewLink("b", "http://EXAMPLE.com", "B"))
		require.ErrorIs(t, err, errs.ErrDuplicateURL)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, IDs(all))
	})

	t.Run("update merges patch", func(t *testing.T) {
		s := newStore(t)
		orig := NewLink("a", "https://example.com/", "A")
		orig.Tags = []string{"news"}
		require.NoError(t, s.Put(ctx, orig))

		fav := true
		got, err := s.Update(ctx, "a", domain.LinkPatch{Favorite: &fav})
		require.NoError(t, err)
		require.True(t, got.Favorite)
		require.Greater(t, got.UpdatedAt, orig.UpdatedAt)

		stored, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.True(t, stored.Favorite)
		require.Equal(t, orig.Title, stored.Title)
		require.Equal(t, orig.URL, stored.URL)
		require.Equal(t, orig.Tags, stored.Tags)
		require.Equal(t, orig.CreatedAt, stored.CreatedAt)
		require.Equal(t, orig.Source, stored.Source)
	})

	t.Run("update moves url index", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "https://old.example/", "A")))

		u := "new.example"
		_, err := s.Update(ctx, "a", domain.LinkPatch{URL: &u})
		require.NoError(t, err)

		_, err = s.GetByURL(ctx, "https://old.example/")
		require.ErrorIs(t, err, errs.ErrNotFound)
		got, err := s.GetByURL(ctx, "https://new.example/")
		require.NoError(t, err)
		require.Equal(t, "a", got.ID)
	})

	t.Run("update missing is not found", func(t *testing.T) {
		s := newStore(t)
		title := "x"
		_, err := s.Update(ctx, "nope", domain.LinkPatch{Title: &title})
		require.ErrorIs(t, err, errs.ErrNotFound)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("delete removes only that record", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "https://a.example/", "A")))
		require.NoError(t, s.Put(ctx, NewLink("b", "https://b.example/", "B")))
		require.NoError(t, s.Put(ctx, NewLink("c", "https://c.example/", "C")))

		require.NoError(t, s.Delete(ctx, "b"))
		require.NoError(t, s.Delete(ctx, "missing"))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "c"}, IDs(all))

		_, err = s.GetByURL(ctx, "https://b.example/")
		require.ErrorIs(t, err, errs.ErrNotFound)
		require.NoError(t, s.Put(ctx, NewLink("d", "https://b.example/", "B again")))
	})

	t.Run("import skips duplicate urls", func(t *testing.T) {
		s := newStore(t)
		res, err := s.ImportMany(ctx, []*domain.Link{
			NewLink("a", "http://example.com", "First"),
			NewLink("b", "https://example.com/", "Second"),
		})
		require.NoError(t, err)
		require.Equal(t, domain.ImportResult{Added: 1, Skipped: 1}, res)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.Equal(t, "https://example.com/", all[0].URL)
	})

	t.Run("import skips existing ids and urls", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "https://a.example/", "A")))

		res, err := s.ImportMany(ctx, []*domain.Link{
			NewLink("a", "https://other.example/", "same id"),
			NewLink("x", "a.example", "same url"),
			NewLink("y", "https://y.example/", "new"),
			{ID: "", URL: "https://noid.example/"},
			NewLink("z", "", "no url"),
		})
		require.NoError(t, err)
		require.Equal(t, domain.ImportResult{Added: 1, Skipped: 4}, res)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "y"}, IDs(all))
	})

	t.Run("import forces https", func(t *testing.T) {
		s := newStore(t)
		l := NewLink("a", "", "A")
		l.URL = "http://insecure.example/x"
		_, err := s.ImportMany(ctx, []*domain.Link{l})
		require.NoError(t, err)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, "https://insecure.example/x", got.URL)
	})

	t.Run("clear", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "https://a.example/", "A")))
		require.NoError(t, s.Clear(ctx))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Empty(t, all)
		require.NoError(t, s.Put(ctx, NewLink("b", "https://a.example/", "A")))
	})

	t.Run("returned links are copies", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewLink("a", "https://a.example/", "A")))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		got.Title = "mutated"

		again, err := s.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, "A", again.Title)
	})
}
