// Package sheets is the spreadsheet import tab. Each console session has
// its own wizard; every action re-renders the current step.
package sheets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/binder"
	"github.com/dmitrymomot/eventmail/pkg/logger"
	"github.com/dmitrymomot/eventmail/pkg/session"
	"github.com/dmitrymomot/eventmail/svc/sheetimport"
)

// SampleSize is how many imported attendees the Complete step lists.
const SampleSize = 5

type StepParams struct {
	Step   sheetimport.Step
	Sample []apiclient.Attendee
}

type PageParams struct {
	Step StepParams
}

type Views struct {
	Page func(PageParams) templ.Component
	Step func(StepParams) templ.Component
}

type Service struct {
	backend      func(context.Context) sheetimport.Backend
	wizards      *sheetimport.Registry
	views        Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewService(
	backend func(context.Context) sheetimport.Backend,
	wizards *sheetimport.Registry,
	views Views,
	log *slog.Logger,
	errorHandler handler.ErrorHandler[handler.Context],
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		backend:      backend,
		wizards:      wizards,
		views:        views,
		log:          log.With(logger.Component("sheets")),
		errorHandler: errorHandler,
	}
}

const stepTarget = "#sheets-wizard"

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.page,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/connect", handler.Wrap(s.connect,
		handler.WithBinders[handler.Context, connectRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, connectRequest](s.errorHandler),
	))
	r.Post("/import", handler.Wrap(s.importRows,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/save", handler.Wrap(s.save,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/reset", handler.Wrap(s.reset,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	return r
}

type connectRequest struct {
	URL string `form:"sheet_url"`
}

func (s *Service) page(ctx handler.Context, _ struct{}) handler.Response {
	w, err := s.wizard(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return s.render(w.Step())
}

func (s *Service) connect(ctx handler.Context, req connectRequest) handler.Response {
	w, err := s.wizard(ctx)
	if err != nil {
		return handler.Error(err)
	}
	step, err := w.Submit(ctx, s.backend(ctx), req.URL)
	return s.result(ctx, step, err)
}

func (s *Service) importRows(ctx handler.Context, _ struct{}) handler.Response {
	w, err := s.wizard(ctx)
	if err != nil {
		return handler.Error(err)
	}
	step, err := w.Import(ctx, s.backend(ctx))
	return s.result(ctx, step, err)
}

func (s *Service) save(ctx handler.Context, _ struct{}) handler.Response {
	w, err := s.wizard(ctx)
	if err != nil {
		return handler.Error(err)
	}
	step, err := w.Save(ctx, s.backend(ctx))
	return s.result(ctx, step, err)
}

func (s *Service) reset(ctx handler.Context, _ struct{}) handler.Response {
	w, err := s.wizard(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return s.render(w.Reset())
}

// result renders the step after an action. Backend failures are already
// recorded on the step; a 401 goes to the error handler and an action that
// is not valid for the current step just re-renders it.
func (s *Service) result(ctx handler.Context, step sheetimport.Step, err error) handler.Response {
	if apiclient.IsUnauthorized(err) {
		return handler.Error(err)
	}
	if err != nil {
		s.log.DebugContext(ctx, "wizard action failed", logger.Step(string(step.State())), logger.Error(err))
	}
	if !handler.IsDataStar(ctx.Request()) {
		return handler.Redirect("/sheets")
	}
	return s.render(step)
}

func (s *Service) render(step sheetimport.Step) handler.Response {
	p := StepParams{Step: step}
	if done, ok := step.(sheetimport.Complete); ok {
		p.Sample = done.Sample(SampleSize)
	}
	return handler.TemplPartial(s.views.Step(p), s.views.Page(PageParams{Step: p}), handler.WithTarget(stepTarget))
}

func (s *Service) wizard(ctx context.Context) (*sheetimport.Wizard, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, session.ErrNotInContext
	}
	return s.wizards.Get(sess.ID.String()), nil
}
