package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/goodnews/internal/cloud"
	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/events"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/mw"
	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/reconcile"
	"github.com/MrSnakeDoc/goodnews/internal/store/memory"
)

type captureMailer struct {
	mu   sync.Mutex
	body string
}

func (m *captureMailer) Send(_ context.Context, _, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = body
	return nil
}

// requestURI returns path and query of the last mailed sign-in link.
func (m *captureMailer) requestURI(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range strings.Split(m.body, "\r\n") {
		if strings.HasPrefix(line, "https://") {
			u, err := url.Parse(line)
			require.NoError(t, err)
			return u.RequestURI()
		}
	}
	t.Fatal("no sign-in link mailed")
	return ""
}

type fakeUsers struct{}

func (fakeUsers) GetOrCreateByEmail(_ context.Context, email string) (*domain.User, error) {
	return &domain.User{ID: "uid-1", Email: email, CreatedAt: time.Now()}, nil
}

type testEnv struct {
	router http.Handler
	deps   deps.Deps
	store  *memory.Store
	remote *cloud.Memory
	mailer *captureMailer
	bus    *events.Bus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop()
	store := memory.New()
	remote := cloud.NewMemory()
	bus := events.NewBus(32)
	mailer := &captureMailer{}

	idSvc := identity.New(identity.Config{
		BaseURL:    "https://news.example",
		Secret:     []byte("test-secret"),
		LinkTTL:    15 * time.Minute,
		SessionTTL: time.Hour,
	}, memory.NewTokens(), fakeUsers{}, mailer, bus, log)

	d := deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		Version:        "v1.2.3",
		Commit:         "abc",
		TimeNow:        time.Now,
		RequestTimeout: 5 * time.Second,
		SignInBurst:    10,
		SignInPerMin:   10,
		StoreMode:      "memory",
		Links:          links.NewService(store, bus, log, links.WithCollection(remote)),
		Identity:       idSvc,
		Reconciler:     reconcile.New(store, remote, log),
		Bus:            bus,
		ReloadTrigger:  make(chan struct{}, 1),
	}

	return &testEnv{
		router: NewRouter(log, d),
		deps:   d,
		store:  store,
		remote: remote,
		mailer: mailer,
		bus:    bus,
	}
}

func (e *testEnv) do(t *testing.T, method, target, body string, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, mod := range mods {
		mod(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealthzAndVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "v1.2.3", decode[map[string]any](t, rec)["version"])

	rec = env.do(t, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestInfraWithoutPostgresIsDegraded(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/infra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "degraded", decode[map[string]any](t, rec)["mode"])
}

func TestLinksCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/links", `{"title":"Khaosod","url":"khaosodenglish.com","tags":["news"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Link](t, rec)
	require.Equal(t, "https://khaosodenglish.com/", created.URL)

	rec = env.do(t, http.MethodGet, "/api/links/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/links/"+created.ID, `{"title":"Khaosod English"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Khaosod English", decode[domain.Link](t, rec).Title)

	rec = env.do(t, http.MethodPut, "/api/links/"+created.ID+"/favorite", `{"favorite":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[domain.Link](t, rec).Favorite)

	rec = env.do(t, http.MethodGet, "/api/links?fav=1&q=khaosod", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]domain.Link](t, rec), 1)

	rec = env.do(t, http.MethodDelete, "/api/links/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/links/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLinkErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/links", `{"url":"https://"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	require.Equal(t, "url", body["field"])

	rec = env.do(t, http.MethodPost, "/api/links", `{"url":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/links", `{"url":"example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/links", `{"url":"http://example.com/"}`, func(r *http.Request) {
		r.Header.Set("Accept-Language", "th-TH,th;q=0.9")
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	want := i18n.T(i18n.WithLang(context.Background(), domain.LanguageTH), "link_exists")
	require.Equal(t, want, decode[map[string]string](t, rec)["error"])
}

func TestClearLinks(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/links", `{"url":"a.example"}`).Code)

	rec := env.do(t, http.MethodDelete, "/api/links", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 0, env.store.Count())
}

func TestImportExport(t *testing.T) {
	env := newTestEnv(t)

	csv := "title,url,tags\nA,http://a.example,x|y\nA again,https://a.example/,\n"
	rec := env.do(t, http.MethodPost, "/api/import?format=csv", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	require.EqualValues(t, 1, res["added"])
	require.EqualValues(t, 1, res["skipped"])

	rec = env.do(t, http.MethodGet, "/api/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "links.csv")
	require.Contains(t, rec.Body.String(), "https://a.example/")

	rec = env.do(t, http.MethodGet, "/api/export?format=xml", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/import?format=xml", "x")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportTooLarge(t *testing.T) {
	env := newTestEnv(t)

	body := "[" + strings.Repeat(" ", 11<<20) + "]"
	rec := env.do(t, http.MethodPost, "/api/import?format=json", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	require.Equal(t, "The file is too large", decode[map[string]string](t, rec)["error"])
	require.Equal(t, 0, env.store.Count())
}

func TestShareTarget(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/add?title=Good&text="+url.QueryEscape("look at this http://news.example/a."), "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	link, err := env.store.GetByURL(context.Background(), "https://news.example/a")
	require.NoError(t, err)
	require.Equal(t, domain.SourceShareTarget, link.Source)

	rec = env.do(t, http.MethodGet, "/add?text=nothing+here", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/?error=validate_https", rec.Header().Get("Location"))
}

func TestGoRedirectsToBestMatch(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/links", `{"title":"Bangkok Post","url":"bangkokpost.com"}`).Code)

	rec := env.do(t, http.MethodGet, "/go?q=bangkok", "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://bangkokpost.com/", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/go?q=zzzz", "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/?q=zzzz", rec.Header().Get("Location"))
}

// signIn runs the email-link flow and returns the session cookie.
func signIn(t *testing.T, env *testEnv) *http.Cookie {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/auth/link", `{"email":"me@example.com","continue":"/settings"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	pending := findCookie(rec, handlers.PendingEmailCookie)
	require.NotNil(t, pending)
	require.Equal(t, "me@example.com", pending.Value)

	rec = env.do(t, http.MethodGet, env.mailer.requestURI(t), "", withCookie(pending))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/settings", rec.Header().Get("Location"))

	cleared := findCookie(rec, handlers.PendingEmailCookie)
	require.NotNil(t, cleared)
	require.Equal(t, -1, cleared.MaxAge)

	session := findCookie(rec, mw.SessionCookie)
	require.NotNil(t, session)
	require.NotEmpty(t, session.Value)
	return session
}

func TestSignInMeAndSignOut(t *testing.T) {
	env := newTestEnv(t)
	session := signIn(t, env)

	rec := env.do(t, http.MethodGet, "/api/me", "", withCookie(session))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "me@example.com", decode[map[string]any](t, rec)["email"])

	rec = env.do(t, http.MethodPost, "/auth/signout", "", withCookie(session))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/me", "", withCookie(session))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompleteSignInAsksForEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/link", `{"email":"me@example.com"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	link := env.mailer.requestURI(t)

	// Opened on another device: no pending cookie.
	rec = env.do(t, http.MethodGet, link, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]string](t, rec)
	require.Equal(t, "email", body["field"])
	require.Equal(t, i18n.T(context.Background(), "confirm_email"), body["error"])

	// Confirming the wrong address burns the link.
	rec = env.do(t, http.MethodGet, link+"&email=other%40example.com", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/auth/complete?mode=signIn", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSync(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	session := signIn(t, env)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/links", `{"url":"a.example"}`).Code)
	remoteOnly := &domain.Link{ID: "r1", Title: "C", URL: "https://c.example/", Language: domain.LanguageEN}
	require.NoError(t, env.remote.Upsert(context.Background(), "uid-1", remoteOnly))

	rec = env.do(t, http.MethodPost, "/api/sync", "", withCookie(session))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	require.EqualValues(t, 1, res["up"])
	require.EqualValues(t, 1, res["down"])

	env.remote.Deny = true
	rec = env.do(t, http.MethodPost, "/api/sync", "", withCookie(session))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, i18n.T(context.Background(), "sync_permission_hint"), decode[map[string]string](t, rec)["error"])
}

func TestDeleteWithCloudNeedsSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/links", `{"url":"a.example"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[domain.Link](t, rec).ID

	rec = env.do(t, http.MethodDelete, "/api/links/"+id+"?cloud=1", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	session := signIn(t, env)
	rec = env.do(t, http.MethodDelete, "/api/links/"+id+"?cloud=1", "", withCookie(session))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReloadTrigger(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/reload", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	// The buffered trigger is still pending.
	rec = env.do(t, http.MethodPost, "/reload", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Backups are not configured.
	rec = env.do(t, http.MethodPost, "/backup", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticShell(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Thai Good News")

	page := rec.Body.String()
	guard := strings.Index(page, "unhandledrejection")
	require.Positive(t, guard, "shell should install an early error guard")
	require.Less(t, guard, strings.Index(page, `src="/app.js"`))

	rec = env.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Thai Good News")

	rec = env.do(t, http.MethodGet, "/manifest.webmanifest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"share_target"`)

	rec = env.do(t, http.MethodGet, "/service-worker.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestEventStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	require.Equal(t, "retry: 3000", lines.Text())

	require.Eventually(t, func() bool { return env.bus.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	env.bus.Publish(events.Toast(events.LevelSuccess, "hello"))

	for lines.Scan() {
		if lines.Text() == "event: toast" {
			require.True(t, lines.Scan())
			require.Contains(t, lines.Text(), `"message":"hello"`)
			return
		}
	}
	t.Fatalf("stream ended without the event: %v", lines.Err())
}
