package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/modules/apitest"
	"github.com/dmitrymomot/eventmail/modules/attendees"
	"github.com/dmitrymomot/eventmail/modules/auth"
	"github.com/dmitrymomot/eventmail/modules/campaign"
	"github.com/dmitrymomot/eventmail/modules/dashboard"
	"github.com/dmitrymomot/eventmail/modules/shell"
	"github.com/dmitrymomot/eventmail/modules/sheets"
	"github.com/dmitrymomot/eventmail/modules/templates"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/config"
	"github.com/dmitrymomot/eventmail/pkg/cookie"
	"github.com/dmitrymomot/eventmail/pkg/httpserver"
	"github.com/dmitrymomot/eventmail/pkg/logger"
	"github.com/dmitrymomot/eventmail/pkg/redis"
	"github.com/dmitrymomot/eventmail/pkg/requestid"
	"github.com/dmitrymomot/eventmail/pkg/session"
	svccampaign "github.com/dmitrymomot/eventmail/svc/campaign"
	"github.com/dmitrymomot/eventmail/svc/sheetimport"
	"github.com/dmitrymomot/eventmail/views"
)

const serviceName = "eventmail-console"

// bootConfig names extra dotenv files loaded before any other config.
type bootConfig struct {
	EnvFiles []string `env:"ENV_FILES" envSeparator:","`
}

type appConfig struct {
	Name           string        `env:"APP_NAME" envDefault:"Event Email Console"`
	WizardCapacity int           `env:"WIZARD_CAPACITY" envDefault:"1000"`
	SessionStore   string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionPrefix  string        `env:"SESSION_REDIS_PREFIX" envDefault:"eventmail:session:"`
	HealthTimeout  time.Duration `env:"HEALTH_TIMEOUT" envDefault:"2s"`
}

func (c appConfig) validate() error {
	if c.WizardCapacity <= 0 {
		return fmt.Errorf("WIZARD_CAPACITY must be positive, got %d", c.WizardCapacity)
	}
	return nil
}

// deps is everything the router needs. Built by run, or by tests.
type deps struct {
	title    string
	log      *slog.Logger
	api      *apiclient.Client
	sessions *session.Manager
	cookies  *cookie.Manager
	wizards  *sheetimport.Registry
	checks   []httpserver.Check
	health   time.Duration
}

func run(ctx context.Context) error {
	var boot bootConfig
	if err := config.Load(&boot); err != nil {
		return err
	}
	if err := config.LoadFiles(boot.EnvFiles...); err != nil {
		return err
	}

	var (
		appCfg     appConfig
		logCfg     logger.Config
		apiCfg     apiclient.Config
		httpCfg    httpserver.Config
		sessionCfg session.Config
		cookieCfg  cookie.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&apiCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&sessionCfg) },
		func() error { return config.Load(&cookieCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}
	if err := appCfg.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.NewFromConfig(logCfg, serviceName,
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger.SetAsDefault(log)

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return fmt.Errorf("cookies: %w", err)
	}

	store, checks, closeStore, err := openSessionStore(ctx, appCfg, sessionCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore.Close(); err != nil {
			log.Error("failed to close session store", logger.Error(err))
		}
	}()

	d := deps{
		title: appCfg.Name,
		log:   log,
		api:   apiclient.NewFromConfig(apiCfg, apiclient.WithLogger(log)),
		sessions: session.New(
			session.WithStore(store),
			session.WithTransport(session.NewCookieTransport(cookies, sessionCfg.CookieName)),
			session.WithConfig(sessionCfg),
			session.WithLogger(log),
		),
		cookies: cookies,
		wizards: sheetimport.NewRegistry(appCfg.WizardCapacity, log),
		checks:  checks,
		health:  appCfg.HealthTimeout,
	}

	log.Info("starting console",
		slog.String("addr", httpCfg.Addr),
		slog.String("backend", d.api.BaseURL()),
		slog.String("session_store", appCfg.SessionStore),
	)
	return httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, newRouter(d))
}

// openSessionStore picks the session store named by SESSION_STORE. The
// redis store also contributes a readiness check.
func openSessionStore(ctx context.Context, appCfg appConfig, sessionCfg session.Config) (session.Store, []httpserver.Check, io.Closer, error) {
	switch strings.ToLower(appCfg.SessionStore) {
	case "", "memory":
		s := session.NewMemoryStore(sessionCfg.CleanupInterval)
		return s, nil, s, nil
	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, nil, nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("session store: %w", err)
		}
		checks := []httpserver.Check{{Name: "redis", Fn: redis.Healthcheck(client)}}
		return session.NewRedisStore(client, appCfg.SessionPrefix), checks, client, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown session store %q", appCfg.SessionStore)
	}
}

func newRouter(d deps) http.Handler {
	errorHandler := auth.NewErrorHandler(d.sessions, d.cookies, d.log,
		handler.NewErrorHandler(d.log, views.ErrorHandlerConfig()),
	)
	nav := shell.New(d.title, shell.DefaultTabs, errorHandler)

	// Every module call carries the bearer token of the current session.
	client := func(ctx context.Context) *apiclient.Client {
		return d.api.For(apiclient.Credentials{Token: session.BearerToken(ctx)})
	}

	// Pages get a session and the nav. Health probes get neither.
	pages := chi.NewRouter()
	pages.Use(d.sessions.Middleware, nav.Middleware)
	pages.NotFound(nav.NotFound())
	pages.MethodNotAllowed(nav.MethodNotAllowed())

	authH := auth.NewService(
		func(ctx context.Context) auth.Backend { return client(ctx) },
		d.sessions, d.cookies, views.Auth(), d.log, errorHandler,
		func(_ context.Context, sessionID string) { d.wizards.Drop(sessionID) },
	).Handle()
	pages.Handle(auth.LoginPath, authH)
	pages.Handle("/logout", authH)
	pages.Handle("/profile", authH)

	pages.Handle("/", dashboard.NewService(
		func(ctx context.Context) dashboard.Backend { return client(ctx) },
		views.Dashboard(), d.log, errorHandler,
	).Handle())

	// The connectivity probe runs without the session token.
	pages.Mount("/apitest", apitest.NewService(
		func(context.Context) apitest.Backend { return d.api },
		d.api.BaseURL(), views.APITest(), d.log, errorHandler,
	).Handle())

	pages.Mount("/attendees", attendees.NewService(
		func(ctx context.Context) attendees.Backend { return client(ctx) },
		views.Attendees(), d.log, errorHandler,
	).Handle())

	pages.Mount("/templates", templates.NewService(
		func(ctx context.Context) templates.Backend { return client(ctx) },
		views.Templates(), d.log, errorHandler,
	).Handle())

	pages.Mount("/sheets", sheets.NewService(
		func(ctx context.Context) sheetimport.Backend { return client(ctx) },
		d.wizards, views.Sheets(), d.log, errorHandler,
	).Handle())

	pages.Mount("/campaign", campaign.NewService(
		func(ctx context.Context) campaign.Backend { return client(ctx) },
		svccampaign.NewSender(d.log), views.Campaign(), d.log, errorHandler,
	).Handle())

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/health", httpserver.HealthHandler(d.log, d.health, d.checks...))
	r.Mount("/", pages)
	return r
}
