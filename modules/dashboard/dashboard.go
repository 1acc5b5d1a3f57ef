// Package dashboard serves the console's landing page: backend health,
// attendee total and email activity, fetched concurrently on every load.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/async"
	"github.com/dmitrymomot/eventmail/pkg/logger"
)

// Backend is the part of the API the dashboard reads.
type Backend interface {
	Health(ctx context.Context) (apiclient.Health, error)
	ListAttendees(ctx context.Context, p apiclient.ListParams) (apiclient.AttendeeList, error)
	EmailLogs(ctx context.Context) (apiclient.EmailLogs, error)
	EmailConfig(ctx context.Context) (apiclient.EmailConfig, error)
}

// StatsParams is the content of the refreshable stats panel. Each section
// carries its own error so one failing call does not hide the others.
type StatsParams struct {
	Health    apiclient.Health
	HealthErr string

	Attendees    int
	AttendeesErr string

	EmailsSent int
	EmailsErr  string

	Email    apiclient.EmailConfig
	EmailErr string

	LoadedAt time.Time
}

// Connected reports whether the backend answered healthy.
func (p StatsParams) Connected() bool {
	return p.HealthErr == "" && p.Health.Connected()
}

type PageParams struct {
	Stats StatsParams
}

type Views struct {
	Page  func(PageParams) templ.Component
	Stats func(StatsParams) templ.Component
}

type Service struct {
	backend      func(context.Context) Backend
	views        Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
	now          func() time.Time
}

func NewService(
	backend func(context.Context) Backend,
	views Views,
	log *slog.Logger,
	errorHandler handler.ErrorHandler[handler.Context],
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		backend:      backend,
		views:        views,
		log:          log.With(logger.Component("dashboard")),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(s.page,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	return r
}

func (s *Service) page(ctx handler.Context, _ struct{}) handler.Response {
	stats, err := s.load(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.TemplPartial(
		s.views.Stats(stats),
		s.views.Page(PageParams{Stats: stats}),
		handler.WithTarget("#dashboard-stats"),
	)
}

// load fans out the four reads. Only a 401 aborts the page; every other
// failure is shown in its own section.
func (s *Service) load(ctx context.Context) (StatsParams, error) {
	b := s.backend(ctx)

	health := async.Go(ctx, b.Health)
	attendees := async.Go(ctx, func(ctx context.Context) (apiclient.AttendeeList, error) {
		return b.ListAttendees(ctx, apiclient.ListParams{Page: 1, PerPage: 1})
	})
	logs := async.Go(ctx, b.EmailLogs)
	emailCfg := async.Go(ctx, b.EmailConfig)

	p := StatsParams{LoadedAt: s.now()}
	var unauthorized error
	section := func(name string, err error) string {
		if apiclient.IsUnauthorized(err) && unauthorized == nil {
			unauthorized = err
		}
		return s.sectionError(ctx, name, err)
	}

	var err error
	if p.Health, err = health.Await(ctx); err != nil {
		p.HealthErr = section("health", err)
	}

	if list, err := attendees.Await(ctx); err != nil {
		p.AttendeesErr = section("attendees", err)
	} else {
		p.Attendees = list.Pagination.Total
		if p.Attendees == 0 {
			p.Attendees = len(list.Attendees)
		}
	}

	if sent, err := logs.Await(ctx); err != nil {
		p.EmailsErr = section("email_logs", err)
	} else {
		p.EmailsSent = sent.Total
	}

	if p.Email, err = emailCfg.Await(ctx); err != nil {
		p.EmailErr = section("email_config", err)
	}

	return p, unauthorized
}

func (s *Service) sectionError(ctx context.Context, section string, err error) string {
	s.log.WarnContext(ctx, "dashboard section failed", slog.String("section", section), logger.Error(err))
	return apiclient.Message(err)
}
