package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var linkColumns = []string{"id", "title", "url", "tags", "notes", "language", "favorite", "created_at", "updated_at", "source"}

func TestCollectionRepo_Upsert_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCollectionRepo(db)

	uid := uuid.New()
	link := &domain.Link{
		ID: "a", Title: "Example", URL: "http://example.com", Tags: []string{"news"},
		Language: domain.LanguageTH, Favorite: true, CreatedAt: 1, UpdatedAt: 2, Source: domain.SourceManual,
	}

	mock.ExpectExec(`(?s)INSERT INTO cloud_links .* ON CONFLICT \(owner, doc_id\) DO UPDATE SET`).
		WithArgs(uid, domain.DocID("https://example.com/"), "a", "Example", "https://example.com/",
			[]string{"news"}, "", "th", true, int64(1), int64(2), "manual").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Upsert(context.Background(), uid.String(), link))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepo_Upsert_PermissionDenied(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCollectionRepo(db)

	mock.ExpectExec(`INSERT INTO cloud_links`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied for table cloud_links"})

	err := r.Upsert(context.Background(), uuid.NewString(), &domain.Link{ID: "a", URL: "https://a.example/"})
	require.ErrorIs(t, err, errs.ErrPermissionDenied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepo_InvalidOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCollectionRepo(db)

	_, err := r.List(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrPermissionDenied)
	require.ErrorIs(t, r.Delete(context.Background(), "not-a-uuid", "https://a.example/"), errs.ErrPermissionDenied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionRepo_List_FillsDefaults(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCollectionRepo(db)

	uid := uuid.New()
	mock.ExpectQuery(`SELECT id, title, url, tags, notes, language, favorite, created_at, updated_at, source\s+FROM cloud_links WHERE owner=\$1`).
		WithArgs(uid).
		WillReturnRows(pgxmock.NewRows(linkColumns).
			AddRow("a", "A", "https://a.example/", []string{"x"}, "", "th", false, int64(10), int64(20), "manual").
			AddRow("", "B", "http://b.example", []string{}, "", "", false, int64(0), int64(0), ""))

	got, err := r.List(context.Background(), uid.String())
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "a", got[0].ID)
	require.Equal(t, domain.LanguageTH, got[0].Language)
	require.Equal(t, int64(10), got[0].CreatedAt)

	require.NotEmpty(t, got[1].ID)
	require.Equal(t, "https://b.example/", got[1].URL)
	require.Equal(t, domain.LanguageEN, got[1].Language)
	require.Equal(t, domain.SourceImport, got[1].Source)
	require.NotZero(t, got[1].CreatedAt)
}

func TestCollectionRepo_Delete_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCollectionRepo(db)

	uid := uuid.New()
	mock.ExpectExec(`DELETE FROM cloud_links WHERE owner=\$1 AND doc_id=\$2`).
		WithArgs(uid, domain.DocID("a.example")).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, r.Delete(context.Background(), uid.String(), "http://a.example"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetOrCreate_Existing(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	created := time.Now().UTC()
	mock.ExpectQuery(`SELECT id::text, email, created_at FROM users WHERE email=\$1`).
		WithArgs("me@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "created_at"}).AddRow("u-1", "me@example.com", created))

	u, err := r.GetOrCreateByEmail(context.Background(), "Me@Example.com")
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetOrCreate_Creates(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	created := time.Now().UTC()
	mock.ExpectQuery(`SELECT id::text, email, created_at FROM users WHERE email=\$1`).
		WithArgs("new@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users \(id, email\) VALUES \(\$1, \$2\) RETURNING id::text, email, created_at`).
		WithArgs(pgxmock.AnyArg(), "new@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "created_at"}).AddRow("u-2", "new@example.com", created))

	u, err := r.GetOrCreateByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	require.Equal(t, "u-2", u.ID)
	require.Equal(t, "new@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetOrCreate_RaceFallsBackToSelect(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	created := time.Now().UTC()
	mock.ExpectQuery(`SELECT id::text, email, created_at FROM users WHERE email=\$1`).
		WithArgs("race@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "race@example.com").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery(`SELECT id::text, email, created_at FROM users WHERE email=\$1`).
		WithArgs("race@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "created_at"}).AddRow("u-3", "race@example.com", created))

	u, err := r.GetOrCreateByEmail(context.Background(), "race@example.com")
	require.NoError(t, err)
	require.Equal(t, "u-3", u.ID)
}

func TestUserRepo_GetByEmail_DBError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	boom := errors.New("boom")
	mock.ExpectQuery(`SELECT id::text`).WithArgs("x@example.com").WillReturnError(boom)

	_, err := r.GetByEmail(context.Background(), "x@example.com")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
