// Package attendees is the attendee management tab: a searchable, paginated
// list with create, edit and delete forms.
package attendees

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/binder"
	"github.com/dmitrymomot/eventmail/pkg/logger"
)

// Backend is the part of the API the attendee tab calls.
type Backend interface {
	ListAttendees(ctx context.Context, p apiclient.ListParams) (apiclient.AttendeeList, error)
	GetAttendee(ctx context.Context, id int) (apiclient.Attendee, error)
	CreateAttendee(ctx context.Context, in apiclient.AttendeeInput) (apiclient.Attendee, error)
	UpdateAttendee(ctx context.Context, id int, in apiclient.AttendeeInput) (apiclient.Attendee, error)
	DeleteAttendee(ctx context.Context, id int) error
	AttendeeTypes(ctx context.Context) ([]apiclient.TypeOption, error)
}

type ListParams struct {
	Attendees  []apiclient.Attendee
	Pagination apiclient.Pagination
	Filter     Filter
	Types      []apiclient.TypeOption
	Error      string
	Notice     string
}

// Empty reports whether the list loaded fine but has no rows.
func (p ListParams) Empty() bool { return p.Error == "" && len(p.Attendees) == 0 }

type FormParams struct {
	ID     int
	Form   AttendeeForm
	Types  []apiclient.TypeOption
	Errors url.Values
	Error  string
}

// Editing reports whether the form updates an existing attendee.
func (p FormParams) Editing() bool { return p.ID != 0 }

type PageParams struct {
	List ListParams
	Form *FormParams
}

type Views struct {
	Page func(PageParams) templ.Component
	List func(ListParams) templ.Component
	Form func(FormParams) templ.Component
}

type Service struct {
	backend      func(context.Context) Backend
	views        Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
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
		log:          log.With(logger.Component("attendees")),
		errorHandler: errorHandler,
	}
}

const (
	listTarget = "#attendee-list"
	formTarget = "#attendee-editor"
)

var closedEditor = templ.Raw(`<div id="attendee-editor"></div>`)

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithBinders[handler.Context, Filter](binder.Query()),
		handler.WithErrorHandler[handler.Context, Filter](s.errorHandler),
	))
	r.Get("/new", handler.Wrap(s.newForm,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, AttendeeForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, AttendeeForm](s.errorHandler),
	))
	r.Get("/{id}/edit", handler.Wrap(s.editForm,
		handler.WithBinders[handler.Context, idRequest](binder.Path(nil)),
		handler.WithErrorHandler[handler.Context, idRequest](s.errorHandler),
	))
	r.Post("/{id}", handler.Wrap(s.update,
		handler.WithBinders[handler.Context, AttendeeForm](binder.Form(), binder.Path(nil)),
		handler.WithErrorHandler[handler.Context, AttendeeForm](s.errorHandler),
	))
	r.Post("/{id}/delete", handler.Wrap(s.remove,
		handler.WithBinders[handler.Context, idRequest](binder.Path(nil), binder.Form()),
		handler.WithErrorHandler[handler.Context, idRequest](s.errorHandler),
	))

	return r
}

type idRequest struct {
	ID int `path:"id"`
	// Filter state carried by the list so delete can re-render the same page.
	Page   int    `form:"page"`
	Search string `form:"search"`
	Type   string `form:"type"`
}

func (s *Service) list(ctx handler.Context, f Filter) handler.Response {
	lp, err := s.loadList(ctx, f.normalize())
	if apiclient.IsUnauthorized(err) {
		return handler.Error(err)
	}
	return handler.TemplPartial(s.views.List(lp), s.views.Page(PageParams{List: lp}), handler.WithTarget(listTarget))
}

func (s *Service) newForm(ctx handler.Context, _ struct{}) handler.Response {
	fp := FormParams{Form: AttendeeForm{AttendeeType: string(apiclient.TypeAttendee)}, Types: s.types(ctx)}
	return s.formResponse(ctx, fp)
}

func (s *Service) editForm(ctx handler.Context, req idRequest) handler.Response {
	a, err := s.backend(ctx).GetAttendee(ctx, req.ID)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return handler.Error(err)
		}
		return s.formResponse(ctx, FormParams{ID: req.ID, Types: s.types(ctx), Error: apiclient.Message(err)})
	}
	return s.formResponse(ctx, FormParams{ID: a.ID, Form: formFromAttendee(a), Types: s.types(ctx)})
}

func (s *Service) create(ctx handler.Context, f AttendeeForm) handler.Response {
	return s.save(ctx, 0, f)
}

func (s *Service) update(ctx handler.Context, f AttendeeForm) handler.Response {
	if f.ID <= 0 {
		return handler.Error(handler.ErrNotFound)
	}
	return s.save(ctx, f.ID, f)
}

func (s *Service) save(ctx handler.Context, id int, f AttendeeForm) handler.Response {
	f = f.Sanitize()
	if errs := f.Validate(); errs != nil {
		return s.formResponse(ctx, FormParams{ID: id, Form: f, Types: s.types(ctx), Errors: errs})
	}

	b := s.backend(ctx)
	var (
		saved apiclient.Attendee
		err   error
	)
	if id == 0 {
		saved, err = b.CreateAttendee(ctx, f.Input())
	} else {
		saved, err = b.UpdateAttendee(ctx, id, f.Input())
	}
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return handler.Error(err)
		}
		s.log.WarnContext(ctx, "save attendee failed", slog.Int("id", id), logger.Error(err))
		return s.formResponse(ctx, FormParams{ID: id, Form: f, Types: s.types(ctx), Error: apiclient.Message(err)})
	}

	s.log.InfoContext(ctx, "attendee saved", slog.Int("id", saved.ID), slog.Bool("created", id == 0))
	notice := "Attendee updated"
	if id == 0 {
		notice = "Attendee created"
	}
	return s.afterChange(ctx, Filter{}.normalize(), notice)
}

func (s *Service) remove(ctx handler.Context, req idRequest) handler.Response {
	filter := Filter{Page: req.Page, Search: req.Search, Type: req.Type}.normalize()
	if err := s.backend(ctx).DeleteAttendee(ctx, req.ID); err != nil {
		if apiclient.IsUnauthorized(err) {
			return handler.Error(err)
		}
		s.log.WarnContext(ctx, "delete attendee failed", slog.Int("id", req.ID), logger.Error(err))
		lp, lerr := s.loadList(ctx, filter)
		if apiclient.IsUnauthorized(lerr) {
			return handler.Error(lerr)
		}
		lp.Error = apiclient.Message(err)
		return handler.TemplPartial(s.views.List(lp), s.views.Page(PageParams{List: lp}), handler.WithTarget(listTarget))
	}
	s.log.InfoContext(ctx, "attendee deleted", slog.Int("id", req.ID))
	return s.afterChange(ctx, filter, "Attendee deleted")
}

// afterChange reloads the list and closes the editor. Plain form posts are
// redirected back to the list.
func (s *Service) afterChange(ctx handler.Context, f Filter, notice string) handler.Response {
	if !handler.IsDataStar(ctx.Request()) {
		return handler.Redirect("/attendees" + f.Query())
	}
	lp, err := s.loadList(ctx, f)
	if apiclient.IsUnauthorized(err) {
		return handler.Error(err)
	}
	lp.Notice = notice
	return handler.TemplMulti(nil,
		handler.Patch(s.views.List(lp), handler.WithTarget(listTarget)),
		handler.Patch(closedEditor, handler.WithTarget(formTarget)),
	)
}

func (s *Service) formResponse(ctx handler.Context, fp FormParams) handler.Response {
	full := templ.Component(nil)
	if !handler.IsDataStar(ctx.Request()) {
		lp, err := s.loadList(ctx, Filter{}.normalize())
		if apiclient.IsUnauthorized(err) {
			return handler.Error(err)
		}
		full = s.views.Page(PageParams{List: lp, Form: &fp})
	}
	return handler.TemplPartial(s.views.Form(fp), full, handler.WithTarget(formTarget))
}

// loadList fetches one page. A failure is returned both as the error and
// inside the params so the caller can render it inline.
func (s *Service) loadList(ctx context.Context, f Filter) (ListParams, error) {
	lp := ListParams{Filter: f, Types: s.types(ctx)}
	res, err := s.backend(ctx).ListAttendees(ctx, f.Params())
	if err != nil {
		s.log.WarnContext(ctx, "list attendees failed", logger.Error(err))
		lp.Error = apiclient.Message(err)
		return lp, err
	}
	lp.Attendees = res.Attendees
	lp.Pagination = res.Pagination
	return lp, nil
}

// types returns the backend's type options, or the local list when the
// backend cannot be reached.
func (s *Service) types(ctx context.Context) []apiclient.TypeOption {
	opts, err := s.backend(ctx).AttendeeTypes(ctx)
	if err == nil && len(opts) > 0 {
		return opts
	}
	out := make([]apiclient.TypeOption, 0, len(apiclient.AttendeeTypes()))
	for _, t := range apiclient.AttendeeTypes() {
		out = append(out, apiclient.TypeOption{Value: string(t), Label: t.Label()})
	}
	return out
}
