package auth_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/modules/auth"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/cookie"
	"github.com/dmitrymomot/eventmail/pkg/session"
)

type backendMock struct {
	mock.Mock
}

func (m *backendMock) MockLogin(ctx context.Context, email string) (apiclient.LoginResult, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(apiclient.LoginResult), args.Error(1)
}

func (m *backendMock) Profile(ctx context.Context) (apiclient.Profile, error) {
	args := m.Called(session.BearerToken(ctx))
	return args.Get(0).(apiclient.Profile), args.Error(1)
}

func write(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func formText(p auth.LoginFormParams) string {
	return fmt.Sprintf(`<form id="login-form">email=%s next=%s err=%q field_errs=%v</form>`,
		p.Email, p.Next, p.Error, p.Errors)
}

var views = auth.Views{
	LoginPage: func(p auth.LoginPageParams) templ.Component {
		return write(fmt.Sprintf("<main>notice=%q %s</main>", p.Notice, formText(p.Form)))
	},
	LoginForm: func(p auth.LoginFormParams) templ.Component { return write(formText(p)) },
	Badge: func(p auth.BadgeParams) templ.Component {
		return write(fmt.Sprintf(`<span id="profile-badge">signed=%t label=%s</span>`, p.SignedIn, p.Label))
	},
}

var errUnauthorized = &apiclient.Error{
	Kind:    apiclient.KindResponse,
	Status:  http.StatusUnauthorized,
	Message: "Invalid token",
	Err:     apiclient.ErrUnauthorized,
}

type harness struct {
	t        *testing.T
	backend  *backendMock
	store    *session.MemoryStore
	router   http.Handler
	cookies  map[string]*http.Cookie
	nextErrs []error

	// session IDs passed to the logout hook
	loggedOut []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cm, err := cookie.New([]string{strings.Repeat("s", 32)})
	require.NoError(t, err)

	h := &harness{
		t:       t,
		backend: &backendMock{},
		store:   session.NewMemoryStore(0),
		cookies: map[string]*http.Cookie{},
	}
	sessions := session.New(
		session.WithStore(h.store),
		session.WithTransport(session.NewCookieTransport(cm, "sid")),
		session.WithConfig(session.Config{CookieName: "sid", AnonTTL: time.Hour, AuthTTL: 2 * time.Hour}),
	)
	log := slog.New(slog.DiscardHandler)
	errorHandler := auth.NewErrorHandler(sessions, cm, log, func(ctx handler.Context, err error) {
		h.nextErrs = append(h.nextErrs, err)
		ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
	})

	svc := auth.NewService(
		func(context.Context) auth.Backend { return h.backend },
		sessions,
		cm,
		views,
		log,
		errorHandler,
		func(_ context.Context, id string) { h.loggedOut = append(h.loggedOut, id) },
	)

	r := chi.NewRouter()
	r.Use(sessions.Middleware)
	r.Mount("/", svc.Handle())
	r.Get("/attendees", handler.Wrap(
		func(handler.Context, struct{}) handler.Response { return handler.Error(errUnauthorized) },
		handler.WithErrorHandler[handler.Context, struct{}](errorHandler),
	))
	r.Get("/broken", handler.Wrap(
		func(handler.Context, struct{}) handler.Response { return handler.Error(errors.New("boom")) },
		handler.WithErrorHandler[handler.Context, struct{}](errorHandler),
	))
	h.router = r
	return h
}

// do sends a request carrying the cookies collected so far.
func (h *harness) do(r *http.Request) *httptest.ResponseRecorder {
	for _, c := range h.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, r)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(h.cookies, c.Name)
			continue
		}
		h.cookies[c.Name] = c
	}
	return rec
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) post(path string, form url.Values, datastar bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if datastar {
		r.Header.Set("Datastar-Request", "true")
	}
	return h.do(r)
}

func (h *harness) login(email, token string) {
	h.t.Helper()
	h.backend.On("MockLogin", mock.Anything, email).Return(apiclient.LoginResult{
		Valid: true,
		Token: token,
		User:  apiclient.User{UID: "u-1", Email: email},
	}, nil).Once()
	rec := h.post("/login", url.Values{"email": {email}}, false)
	require.Equal(h.t, http.StatusSeeOther, rec.Code)
}

func TestLoginPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rec := h.get("/login?email=kim@example.com&next=/campaign")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "email=kim@example.com next=/campaign")
	assert.Contains(t, rec.Body.String(), `notice=""`)
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rec := h.post("/login", url.Values{"email": {"not-an-email"}}, true)

	body := rec.Body.String()
	assert.Contains(t, body, "selector #login-form")
	assert.Contains(t, body, "field_errs=map[email:")
	h.backend.AssertNotCalled(t, "MockLogin", mock.Anything, mock.Anything)
}

func TestLoginBackendError(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.On("MockLogin", mock.Anything, "kim@example.com").
		Return(apiclient.LoginResult{}, &apiclient.Error{Kind: apiclient.KindNetwork, Message: "connection refused"}).Once()

	rec := h.post("/login", url.Values{"email": {" Kim@Example.com "}}, true)

	assert.Contains(t, rec.Body.String(), `err="connection refused"`)
	assert.Equal(t, 1, h.store.Len(), "only the anonymous session exists")
	h.backend.AssertExpectations(t)
}

func TestLoginStoresTokenAndRedirects(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{"default", "", "/"},
		{"local path", "/campaign?types=vip", "/campaign?types=vip"},
		{"protocol relative", "//evil.example", "/"},
		{"absolute", "https://evil.example/", "/"},
		{"login loop", "/login?next=/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.backend.On("MockLogin", mock.Anything, "kim@example.com").
				Return(apiclient.LoginResult{Valid: true, Token: "tok-1", User: apiclient.User{UID: "u-1"}}, nil).Once()

			rec := h.post("/login", url.Values{"email": {"kim@example.com"}, "next": {tt.next}}, false)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
			require.Contains(t, h.cookies, "sid")
		})
	}
}

func TestProfileBadge(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	rec := h.get("/profile")
	assert.Contains(t, rec.Body.String(), "signed=false")

	h.login("kim@example.com", "tok-1")
	h.backend.On("Profile", "tok-1").Return(apiclient.Profile{Email: "kim@example.com", DisplayName: "Kim"}, nil).Once()

	rec = h.get("/profile")
	assert.Contains(t, rec.Body.String(), "signed=true label=Kim")
	h.backend.AssertExpectations(t)
}

func TestProfileBadgeFallsBackToSessionEmail(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login("kim@example.com", "tok-1")
	h.backend.On("Profile", "tok-1").
		Return(apiclient.Profile{}, &apiclient.Error{Kind: apiclient.KindResponse, Status: 500, Message: "down"}).Once()

	rec := h.get("/profile")

	assert.Contains(t, rec.Body.String(), "signed=true label=kim@example.com")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login("kim@example.com", "tok-1")

	rec := h.post("/logout", url.Values{}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
	require.Len(t, h.loggedOut, 1, "logout hooks run once per sign-out")
	assert.NotEmpty(t, h.loggedOut[0])

	rec = h.get("/profile")
	assert.Contains(t, rec.Body.String(), "signed=false")
}

func TestErrorHandlerUnauthorized(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login("kim@example.com", "tok-1")

	rec := h.get("/attendees")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fattendees", rec.Header().Get("Location"))

	rec = h.get("/profile")
	assert.Contains(t, rec.Body.String(), "signed=false", "token is dropped")

	rec = h.get("/login?next=/attendees")
	assert.Contains(t, rec.Body.String(), `notice="Your session has expired. Please sign in again."`)

	rec = h.get("/login")
	assert.Contains(t, rec.Body.String(), `notice=""`, "flash is read once")
	assert.Empty(t, h.nextErrs)
}

func TestErrorHandlerUnauthorizedDatastar(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	r := httptest.NewRequest(http.MethodGet, "/attendees", nil)
	r.Header.Set("Datastar-Request", "true")

	rec := h.do(r)

	assert.Contains(t, rec.Body.String(), "/login")
	assert.NotContains(t, rec.Body.String(), "next=")
}

func TestErrorHandlerPassesOtherErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rec := h.get("/broken")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Len(t, h.nextErrs, 1)
	assert.EqualError(t, h.nextErrs[0], "boom")
}
