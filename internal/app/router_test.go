package app

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/customtruckbeds/site/internal/observability"
	"github.com/customtruckbeds/site/internal/shared"
	_ "github.com/customtruckbeds/site/testing"
)

type stubSite struct {
	csrf *shared.CSRFManager
}

func (s stubSite) MountRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		token, err := s.csrf.EnsureToken(shared.SessionFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, token)
	})
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	r.Post("/quote", ok)
	r.Post("/api/quotes", ok)
}

type routerFixture struct {
	handler http.Handler
	redis   *miniredis.Miniredis
	health  error
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	csrf := shared.NewCSRFManager("csrf-secret")
	f := &routerFixture{redis: mr}
	f.handler = NewRouter(RouterParams{
		Logger:         logger,
		Config:         &Config{AppEnv: "development", AppRequestTimeout: 5 * time.Second},
		SessionManager: shared.NewSessionManager(client, "ctb_session", "session-secret", time.Hour, false),
		CSRFManager:    csrf,
		SiteHandler:    stubSite{csrf: csrf},
		Metrics:        observability.NewMetrics(),
		Health:         func(*http.Request) error { return f.health },
	})
	return f
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	f.health = errors.New("redis down")
	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"status":"degraded"}`, rec.Body.String())
}

func TestStaticAssets(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/static/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
	require.Empty(t, rec.Result().Cookies(), "static files must not start sessions")
}

func TestPageSetsSessionAndSecurityHeaders(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "ctb_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
}

func TestCSRFRejectsPostsWithoutToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader("firstName=John")))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestCSRFAcceptsSessionToken(t *testing.T) {
	f := newRouterFixture(t)

	page := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, page.Code)
	token := page.Body.String()
	cookie := page.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{}`))
	req.AddCookie(cookie)
	req.Header.Set(shared.CSRFHeader, token)
	require.Equal(t, http.StatusNoContent, f.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(shared.CSRFFormField+"="+token))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusNoContent, f.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(`{}`))
	req.AddCookie(cookie)
	req.Header.Set(shared.CSRFHeader, token+"x")
	require.Equal(t, http.StatusForbidden, f.do(req).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newRouterFixture(t)
	f.do(httptest.NewRequest(http.MethodGet, "/", nil))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "truckbeds_http_requests_total")
}
