// Package apitest is the backend connectivity page. It calls four endpoints
// in order and shows each outcome together with the response body.
package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/logger"
)

// LoginEmail is the account used by the mock-login check.
const LoginEmail = "test@example.com"

// maxData caps the rendered response body of a single check.
const maxData = 4 << 10

// Backend is the part of the API the page probes.
type Backend interface {
	Health(ctx context.Context) (apiclient.Health, error)
	MockLogin(ctx context.Context, email string) (apiclient.LoginResult, error)
	ListAttendees(ctx context.Context, p apiclient.ListParams) (apiclient.AttendeeList, error)
	AttendeeTypes(ctx context.Context) ([]apiclient.TypeOption, error)
}

// Check is the outcome of one probe.
type Check struct {
	Name     string
	Method   string
	Endpoint string
	Passed   bool
	Status   int
	Message  string
	Data     string
	Elapsed  time.Duration
}

type ResultsParams struct {
	BaseURL string
	Checks  []Check
}

// Passing is the number of checks that succeeded.
func (p ResultsParams) Passing() int {
	n := 0
	for _, c := range p.Checks {
		if c.Passed {
			n++
		}
	}
	return n
}

type PageParams struct {
	Results ResultsParams
}

type Views struct {
	Page    func(PageParams) templ.Component
	Results func(ResultsParams) templ.Component
}

type Service struct {
	backend      func(context.Context) Backend
	baseURL      string
	views        Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
	now          func() time.Time
}

// NewService builds the page. The backend factory should return a client
// without credentials so the probes match what an anonymous caller sees.
func NewService(
	backend func(context.Context) Backend,
	baseURL string,
	views Views,
	log *slog.Logger,
	errorHandler handler.ErrorHandler[handler.Context],
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		backend:      backend,
		baseURL:      baseURL,
		views:        views,
		log:          log.With(logger.Component("apitest")),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(s.page,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/run", handler.Wrap(s.page,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	return r
}

func (s *Service) page(ctx handler.Context, _ struct{}) handler.Response {
	res := ResultsParams{BaseURL: s.baseURL, Checks: s.Run(ctx)}
	return handler.TemplPartial(
		s.views.Results(res),
		s.views.Page(PageParams{Results: res}),
		handler.WithTarget("#apitest-results"),
	)
}

type probe struct {
	name, method, endpoint string
	call                   func(context.Context, Backend) (any, error)
}

var probes = []probe{
	{"Health Check", http.MethodGet, "/health", func(ctx context.Context, b Backend) (any, error) {
		return b.Health(ctx)
	}},
	{"Mock Login", http.MethodPost, "/auth/mock-login", func(ctx context.Context, b Backend) (any, error) {
		return b.MockLogin(ctx, LoginEmail)
	}},
	{"Attendees List", http.MethodGet, "/attendees/", func(ctx context.Context, b Backend) (any, error) {
		return b.ListAttendees(ctx, apiclient.ListParams{})
	}},
	{"Attendee Types", http.MethodGet, "/attendees/types", func(ctx context.Context, b Backend) (any, error) {
		return b.AttendeeTypes(ctx)
	}},
}

// Run calls every probe in order. A failing probe does not stop the ones
// after it.
func (s *Service) Run(ctx context.Context) []Check {
	b := s.backend(ctx)
	checks := make([]Check, 0, len(probes))
	for _, p := range probes {
		start := s.now()
		data, err := p.call(ctx, b)
		c := Check{
			Name:     p.name,
			Method:   p.method,
			Endpoint: p.endpoint,
			Elapsed:  s.now().Sub(start),
		}
		if err != nil {
			c.Status = errorStatus(err)
			c.Message = apiclient.Message(err)
			s.log.WarnContext(ctx, "probe failed",
				logger.Endpoint(p.method, p.endpoint),
				logger.Status(c.Status),
				logger.Error(err),
			)
		} else {
			c.Passed = true
			c.Status = http.StatusOK
			c.Message = http.StatusText(http.StatusOK)
			c.Data = summarize(data)
		}
		checks = append(checks, c)
	}
	return checks
}

func errorStatus(err error) int {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func summarize(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	if len(b) > maxData {
		return strings.ToValidUTF8(string(b[:maxData]), "") + "\n…"
	}
	return string(b)
}
