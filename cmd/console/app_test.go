package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/cookie"
	"github.com/dmitrymomot/eventmail/pkg/requestid"
	"github.com/dmitrymomot/eventmail/pkg/session"
	"github.com/dmitrymomot/eventmail/svc/sheetimport"
)

const token = "tok-1"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeBackend accepts token on every call except health and mock-login.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "version": "1.0"})
	})
	mux.HandleFunc("POST /api/auth/mock-login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid": true,
			"token": token,
			"user":  map[string]any{"uid": "u-1", "email": "kim@example.com"},
		})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid token"})
			return
		}
		switch r.URL.Path {
		case "/api/attendees/":
			writeJSON(w, http.StatusOK, map[string]any{
				"attendees":  []map[string]any{{"id": 1, "name": "Kim Minji", "email": "kim@example.com"}},
				"pagination": map[string]any{"current_page": 1, "pages": 1, "total": 1},
			})
		case "/api/attendees/types":
			writeJSON(w, http.StatusOK, map[string]any{"types": []map[string]any{{"value": "vip", "label": "VIP"}}})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Not found"})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newConsole starts the console against backend and returns a client that
// keeps cookies and does not follow redirects.
func newConsole(t *testing.T, backend string) (*httptest.Server, *http.Client) {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	cookies, err := cookie.New([]string{strings.Repeat("k", 32)})
	require.NoError(t, err)

	cfg := session.DefaultConfig()
	d := deps{
		title: "Console",
		log:   log,
		api:   apiclient.New(backend+"/api", apiclient.WithTimeout(5*time.Second), apiclient.WithLogger(log)),
		sessions: session.New(
			session.WithStore(session.NewMemoryStore(0)),
			session.WithTransport(session.NewCookieTransport(cookies, cfg.CookieName)),
			session.WithConfig(cfg),
			session.WithLogger(log),
		),
		cookies: cookies,
		wizards: sheetimport.NewRegistry(10, log),
		health:  time.Second,
	}

	srv := httptest.NewServer(newRouter(d))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, client := newConsole(t, fakeBackend(t).URL)

	resp, err := client.Get(srv.URL + "/health")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestid.Header))
	assert.Contains(t, body(t, resp), `"status":"ok"`)
}

func TestUnknownPageRendersErrorPage(t *testing.T) {
	t.Parallel()

	srv, client := newConsole(t, fakeBackend(t).URL)

	for _, path := range []string{"/nope", "/attendees/1/nope"} {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		html := body(t, resp)
		assert.Contains(t, html, "<h2>404</h2>", path)
		assert.Contains(t, html, `id="toast-container"`, path)
	}
}

func TestLoginPageIsServedInsideLayout(t *testing.T) {
	t.Parallel()

	srv, client := newConsole(t, fakeBackend(t).URL)

	resp, err := client.Get(srv.URL + "/login")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, `id="login-form"`)
	assert.Contains(t, html, `href="/campaign"`)
}

func TestUnauthenticatedModuleRedirectsToLogin(t *testing.T) {
	t.Parallel()

	srv, client := newConsole(t, fakeBackend(t).URL)

	resp, err := client.Get(srv.URL + "/attendees")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fattendees", resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/login?next=/attendees")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "Your session has expired")
}

func TestSignedInModuleSendsBearerToken(t *testing.T) {
	t.Parallel()

	srv, client := newConsole(t, fakeBackend(t).URL)

	resp, err := client.PostForm(srv.URL+"/login", url.Values{"email": {"kim@example.com"}, "next": {"/attendees"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/attendees", resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/attendees")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Kim Minji")
}

func TestAPITestRunsWithoutSessionToken(t *testing.T) {
	t.Parallel()

	srv, client := newConsole(t, fakeBackend(t).URL)

	resp, err := client.PostForm(srv.URL+"/login", url.Values{"email": {"kim@example.com"}})
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/apitest")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "2/4 tests passing", "health and mock login need no token")
}

func TestAppConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, appConfig{WizardCapacity: 1}.validate())
	for _, n := range []int{0, -1} {
		assert.ErrorContains(t, appConfig{WizardCapacity: n}.validate(), "WIZARD_CAPACITY must be positive", n)
	}
}

// Config types are cached per process, so this is the only test that calls run.
func TestRunReadsEnvFilesAndRejectsBadCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.env")
	require.NoError(t, os.WriteFile(path, []byte("WIZARD_CAPACITY=-3\n"), 0o600))
	t.Setenv("ENV_FILES", path)
	t.Cleanup(func() { os.Unsetenv("WIZARD_CAPACITY") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var err error
	require.NotPanics(t, func() { err = run(ctx) })
	assert.ErrorContains(t, err, "WIZARD_CAPACITY must be positive, got -3")
}
