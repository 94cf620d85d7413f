package cloud

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestFillDefaults(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	l := FillDefaults(&domain.Link{URL: "http://example.com"}, now)

	require.NotEmpty(t, l.ID)
	require.Equal(t, "https://example.com/", l.URL)
	require.Equal(t, domain.LanguageEN, l.Language)
	require.Equal(t, domain.Millis(now), l.CreatedAt)
	require.Equal(t, domain.Millis(now), l.UpdatedAt)
	require.Equal(t, domain.SourceImport, l.Source)
	require.NotNil(t, l.Tags)
}

func TestFillDefaultsKeepsValues(t *testing.T) {
	in := &domain.Link{
		ID: "keep", URL: "https://a.example/", Language: domain.LanguageTH,
		CreatedAt: 1, UpdatedAt: 2, Source: domain.SourceManual, Tags: []string{"x"},
	}
	l := FillDefaults(in.Clone(), time.Now())
	require.Equal(t, in, l)
}

func TestMemoryUpsertIsKeyedByURL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, "u1", &domain.Link{ID: "a", Title: "one", URL: "example.com"}))
	require.NoError(t, m.Upsert(ctx, "u1", &domain.Link{ID: "b", Title: "two", URL: "http://example.com/"}))

	got, err := m.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "two", got[0].Title)

	other, err := m.List(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, other)

	require.NoError(t, m.Delete(ctx, "u1", "https://example.com/"))
	got, err = m.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryDeny(t *testing.T) {
	m := NewMemory()
	m.Deny = true

	_, err := m.List(context.Background(), "u1")
	require.ErrorIs(t, err, errs.ErrPermissionDenied)

	m.Deny = false
	_, err = m.List(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrPermissionDenied)
}
