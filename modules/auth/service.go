// Package auth is the console sign-in. The backend issues a mock token for
// an email address; the token lives in the server-side session and is sent
// as a bearer token on later API calls.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/binder"
	"github.com/dmitrymomot/eventmail/pkg/cookie"
	"github.com/dmitrymomot/eventmail/pkg/logger"
	"github.com/dmitrymomot/eventmail/pkg/sanitizer"
	"github.com/dmitrymomot/eventmail/pkg/session"
	"github.com/dmitrymomot/eventmail/pkg/validator"
)

const (
	LoginPath = "/login"

	flashKey       = "login"
	expiredMessage = "Your session has expired. Please sign in again."
	formTarget     = "#login-form"
)

// Backend is the part of the API used for sign-in.
type Backend interface {
	MockLogin(ctx context.Context, email string) (apiclient.LoginResult, error)
	Profile(ctx context.Context) (apiclient.Profile, error)
}

type LoginFormParams struct {
	Email  string
	Next   string
	Errors url.Values
	Error  string
}

type LoginPageParams struct {
	Form   LoginFormParams
	Notice string
}

// BadgeParams is the signed-in indicator in the top bar.
type BadgeParams struct {
	SignedIn bool
	Label    string
	Email    string
}

type Views struct {
	LoginPage func(LoginPageParams) templ.Component
	LoginForm func(LoginFormParams) templ.Component
	Badge     func(BadgeParams) templ.Component
}

// LogoutHook releases per-session state kept outside the session store.
type LogoutHook func(ctx context.Context, sessionID string)

type Service struct {
	backend      func(context.Context) Backend
	sessions     *session.Manager
	cookies      *cookie.Manager
	views        Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
	onLogout     []LogoutHook
}

func NewService(
	backend func(context.Context) Backend,
	sessions *session.Manager,
	cookies *cookie.Manager,
	views Views,
	log *slog.Logger,
	errorHandler handler.ErrorHandler[handler.Context],
	onLogout ...LogoutHook,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		backend:      backend,
		sessions:     sessions,
		cookies:      cookies,
		views:        views,
		log:          log.With(logger.Component("auth")),
		errorHandler: errorHandler,
		onLogout:     onLogout,
	}
}

// Handle serves /login, /logout and /profile. Mount it at the root.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.HandleFunc(LoginPath, handler.Wrap(s.login,
		handler.WithBinders[handler.Context, LoginRequest](
			binder.Query(),
			binder.Form(),
		),
		handler.WithErrorHandler[handler.Context, LoginRequest](s.errorHandler),
	))
	r.Post("/logout", handler.Wrap(s.logout,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	signedOut := handler.Wrap(s.signedOut,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	)
	r.With(s.sessions.RequireAuth(signedOut)).Get("/profile", handler.Wrap(s.profile,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	return r
}

type LoginRequest struct {
	Email string `form:"email" query:"email"`
	Next  string `form:"next" query:"next"`
}

func (s *Service) login(ctx handler.Context, req LoginRequest) handler.Response {
	r := ctx.Request()
	form := LoginFormParams{
		Email: sanitizer.Email(req.Email),
		Next:  safeNext(req.Next),
	}

	if r.Method != http.MethodPost {
		page := LoginPageParams{Form: form}
		if err := s.cookies.GetFlash(ctx.ResponseWriter(), r, flashKey, &page.Notice); err != nil && !errors.Is(err, cookie.ErrCookieNotFound) {
			s.log.DebugContext(ctx, "unreadable login flash", logger.Error(err))
		}
		return handler.Templ(s.views.LoginPage(page))
	}

	if err := validator.Apply(
		validator.RequiredString("email", form.Email),
		validator.When(form.Email != "", validator.ValidEmail("email", form.Email)),
	); err != nil {
		form.Errors = validator.Extract(err).Values()
		return s.renderForm(form)
	}

	res, err := s.backend(ctx).MockLogin(ctx, form.Email)
	if err != nil {
		s.log.WarnContext(ctx, "login failed", slog.String("email", form.Email), logger.Error(err))
		form.Error = apiclient.Message(err)
		return s.renderForm(form)
	}

	user := session.User{UID: res.User.UID, Email: res.User.Email, Name: res.User.Name}
	if user.Email == "" {
		user.Email = form.Email
	}
	sess, err := s.sessions.Login(ctx, ctx.ResponseWriter(), r, user, res.Token)
	if err != nil {
		return handler.Error(err)
	}

	s.log.InfoContext(ctx, "signed in", logger.SessionID(sess.ID), slog.String("email", user.Email))
	return handler.Redirect(form.Next)
}

func (s *Service) renderForm(form LoginFormParams) handler.Response {
	return handler.TemplPartial(
		s.views.LoginForm(form),
		s.views.LoginPage(LoginPageParams{Form: form}),
		handler.WithTarget(formTarget),
	)
}

func (s *Service) logout(ctx handler.Context, _ struct{}) handler.Response {
	if sess, ok := session.FromContext(ctx); ok {
		if err := s.sessions.ClearCredentials(ctx, sess); err != nil {
			return handler.Error(err)
		}
		for _, hook := range s.onLogout {
			hook(ctx, sess.ID.String())
		}
		s.log.InfoContext(ctx, "signed out", logger.SessionID(sess.ID))
	}
	return handler.Redirect(LoginPath)
}

// profile prefers the backend's display name and falls back to the email
// stored at sign-in when the profile call fails.
func (s *Service) profile(ctx handler.Context, _ struct{}) handler.Response {
	sess, _ := session.FromContext(ctx)
	badge := BadgeParams{SignedIn: true}
	if sess.User != nil {
		badge.Email = sess.User.Email
		badge.Label = sess.User.Email
	}

	p, err := s.backend(ctx).Profile(ctx)
	switch {
	case apiclient.IsUnauthorized(err):
		return handler.Error(err)
	case err != nil:
		s.log.DebugContext(ctx, "profile unavailable", logger.Error(err))
	default:
		if label := p.DisplayLabel(); label != "" {
			badge.Label = label
		}
		if p.Email != "" {
			badge.Email = p.Email
		}
	}
	return handler.TemplPartial(s.views.Badge(badge), s.views.Badge(badge), handler.WithTarget("#profile-badge"))
}

func (s *Service) signedOut(_ handler.Context, _ struct{}) handler.Response {
	badge := s.views.Badge(BadgeParams{})
	return handler.TemplPartial(badge, badge, handler.WithTarget("#profile-badge"))
}

// NewErrorHandler wraps next so that a request which failed with a 401 goes
// back to the sign-in page after the stored token is dropped. Every other
// error is passed to next.
func NewErrorHandler(
	sessions *session.Manager,
	cookies *cookie.Manager,
	log *slog.Logger,
	next handler.ErrorHandler[handler.Context],
) handler.ErrorHandler[handler.Context] {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("auth"))

	return func(ctx handler.Context, err error) {
		if !apiclient.IsUnauthorized(err) {
			next(ctx, err)
			return
		}

		w, r := ctx.ResponseWriter(), ctx.Request()
		if sess, ok := session.FromContext(ctx); ok {
			if cerr := sessions.ClearCredentials(ctx, sess); cerr != nil {
				log.ErrorContext(ctx, "failed to clear credentials", logger.Error(cerr))
			}
		}
		if ferr := cookies.SetFlash(w, flashKey, expiredMessage); ferr != nil {
			log.ErrorContext(ctx, "failed to set login flash", logger.Error(ferr))
		}

		log.InfoContext(ctx, "backend rejected token", logger.Endpoint(r.Method, r.URL.Path))
		target := LoginPath
		if r.Method == http.MethodGet && !handler.IsDataStar(r) {
			if next := safeNext(r.URL.RequestURI()); next != "/" {
				target += "?next=" + url.QueryEscape(next)
			}
		}
		if rerr := handler.Redirect(target).Render(w, r); rerr != nil {
			log.ErrorContext(ctx, "failed to redirect to login", logger.Error(rerr))
		}
	}
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if next == LoginPath || strings.HasPrefix(next, LoginPath+"?") {
		return "/"
	}
	return next
}
