// Package templates is the template manager tab. It lists the backend's
// templates next to the built-in presets, shows the placeholders a template
// uses and renders a local preview with editable sample data.
package templates

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/binder"
	"github.com/dmitrymomot/eventmail/pkg/logger"
	"github.com/dmitrymomot/eventmail/svc/campaign"
)

// Backend is the part of the API the template manager calls.
type Backend interface {
	ListTemplates(ctx context.Context) ([]apiclient.EmailTemplate, error)
	GetTemplate(ctx context.Context, id int) (apiclient.EmailTemplate, error)
	CreateTemplate(ctx context.Context, t apiclient.EmailTemplate) (apiclient.EmailTemplate, error)
	UpdateTemplate(ctx context.Context, id int, t apiclient.EmailTemplate) (apiclient.EmailTemplate, error)
}

type ListParams struct {
	Items    []Item
	Selected string
	Error    string
	Notice   string
}

type DetailParams struct {
	Item    *Item
	Keys    []string
	Preview PreviewParams
}

type PreviewParams struct {
	Ref     string
	Data    PreviewData
	Subject string
	Body    string
	Missing []string
	Error   string
}

type FormParams struct {
	ID     int
	Form   TemplateForm
	Types  []apiclient.AttendeeType
	Errors url.Values
	Error  string
}

func (p FormParams) Editing() bool { return p.ID != 0 }

type PageParams struct {
	List   ListParams
	Detail DetailParams
	Form   *FormParams
}

type Views struct {
	Page    func(PageParams) templ.Component
	List    func(ListParams) templ.Component
	Detail  func(DetailParams) templ.Component
	Preview func(PreviewParams) templ.Component
	Form    func(FormParams) templ.Component
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
		log:          log.With(logger.Component("templates")),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

const (
	listTarget    = "#template-list"
	detailTarget  = "#template-detail"
	previewTarget = "#template-preview"
	formTarget    = "#template-editor"
)

var closedEditor = templ.Raw(`<div id="template-editor"></div>`)

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.page,
		handler.WithBinders[handler.Context, selectRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, selectRequest](s.errorHandler),
	))
	r.Post("/preview", handler.Wrap(s.preview,
		handler.WithBinders[handler.Context, previewRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, previewRequest](s.errorHandler),
	))
	r.Get("/new", handler.Wrap(s.newForm,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, TemplateForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, TemplateForm](s.errorHandler),
	))
	r.Get("/{id}/edit", handler.Wrap(s.editForm,
		handler.WithBinders[handler.Context, idRequest](binder.Path(nil)),
		handler.WithErrorHandler[handler.Context, idRequest](s.errorHandler),
	))
	r.Post("/{id}", handler.Wrap(s.update,
		handler.WithBinders[handler.Context, TemplateForm](binder.Form(), binder.Path(nil)),
		handler.WithErrorHandler[handler.Context, TemplateForm](s.errorHandler),
	))

	return r
}

type selectRequest struct {
	Ref string `query:"ref"`
}

type previewRequest struct {
	Ref string `form:"ref"`
	PreviewData
}

type idRequest struct {
	ID int `path:"id"`
}

func (s *Service) page(ctx handler.Context, req selectRequest) handler.Response {
	list, err := s.loadList(ctx)
	if apiclient.IsUnauthorized(err) {
		return handler.Error(err)
	}

	ref := req.Ref
	if ref == "" && len(list.Items) > 0 {
		ref = list.Items[0].Ref
	}
	list.Selected = ref
	detail := s.detail(list.Items, ref, DefaultPreviewData())

	return handler.TemplMulti(
		s.views.Page(PageParams{List: list, Detail: detail}),
		handler.Patch(s.views.List(list), handler.WithTarget(listTarget)),
		handler.Patch(s.views.Detail(detail), handler.WithTarget(detailTarget)),
	)
}

func (s *Service) preview(ctx handler.Context, req previewRequest) handler.Response {
	list, err := s.loadList(ctx)
	if apiclient.IsUnauthorized(err) {
		return handler.Error(err)
	}
	detail := s.detail(list.Items, req.Ref, req.PreviewData.normalize())
	list.Selected = req.Ref
	return handler.TemplPartial(
		s.views.Preview(detail.Preview),
		s.views.Page(PageParams{List: list, Detail: detail}),
		handler.WithTarget(previewTarget),
	)
}

func (s *Service) detail(items []Item, ref string, data PreviewData) DetailParams {
	d := DetailParams{Preview: PreviewParams{Ref: ref, Data: data}}
	item, ok := findItem(items, ref)
	if !ok {
		if ref != "" {
			d.Preview.Error = "Template not found"
		}
		return d
	}
	d.Item = &item
	d.Keys = item.Keys()
	d.Preview = render(item, data, s.now())
	return d
}

func (s *Service) newForm(ctx handler.Context, _ struct{}) handler.Response {
	return s.formResponse(ctx, FormParams{Form: TemplateForm{IsActive: true}})
}

func (s *Service) editForm(ctx handler.Context, req idRequest) handler.Response {
	t, err := s.backend(ctx).GetTemplate(ctx, req.ID)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return handler.Error(err)
		}
		return s.formResponse(ctx, FormParams{ID: req.ID, Error: apiclient.Message(err)})
	}
	return s.formResponse(ctx, FormParams{ID: req.ID, Form: formFromTemplate(t)})
}

func (s *Service) create(ctx handler.Context, f TemplateForm) handler.Response {
	return s.save(ctx, 0, f)
}

func (s *Service) update(ctx handler.Context, f TemplateForm) handler.Response {
	if f.ID <= 0 {
		return handler.Error(handler.ErrNotFound)
	}
	return s.save(ctx, f.ID, f)
}

func (s *Service) save(ctx handler.Context, id int, f TemplateForm) handler.Response {
	f = f.Sanitize()
	if errs := f.Validate(); errs != nil {
		return s.formResponse(ctx, FormParams{ID: id, Form: f, Errors: errs})
	}

	b := s.backend(ctx)
	var (
		saved apiclient.EmailTemplate
		err   error
	)
	if id == 0 {
		saved, err = b.CreateTemplate(ctx, f.Template())
	} else {
		saved, err = b.UpdateTemplate(ctx, id, f.Template())
	}
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return handler.Error(err)
		}
		s.log.WarnContext(ctx, "save template failed", slog.Int("id", id), logger.Error(err))
		return s.formResponse(ctx, FormParams{ID: id, Form: f, Error: apiclient.Message(err)})
	}
	s.log.InfoContext(ctx, "template saved", slog.Int("id", saved.ID), slog.Bool("created", id == 0))

	ref := ""
	if saved.ID != 0 {
		ref = backendRef(saved.ID)
	}
	if !handler.IsDataStar(ctx.Request()) {
		if ref == "" {
			return handler.Redirect("/templates")
		}
		return handler.Redirect("/templates?ref=" + url.QueryEscape(ref))
	}

	list, err := s.loadList(ctx)
	if apiclient.IsUnauthorized(err) {
		return handler.Error(err)
	}
	list.Selected = ref
	list.Notice = "Template saved"
	return handler.TemplMulti(nil,
		handler.Patch(s.views.List(list), handler.WithTarget(listTarget)),
		handler.Patch(s.views.Detail(s.detail(list.Items, ref, DefaultPreviewData())), handler.WithTarget(detailTarget)),
		handler.Patch(closedEditor, handler.WithTarget(formTarget)),
	)
}

func (s *Service) formResponse(ctx handler.Context, fp FormParams) handler.Response {
	fp.Types = apiclient.AttendeeTypes()
	full := templ.Component(nil)
	if !handler.IsDataStar(ctx.Request()) {
		list, err := s.loadList(ctx)
		if apiclient.IsUnauthorized(err) {
			return handler.Error(err)
		}
		full = s.views.Page(PageParams{List: list, Form: &fp})
	}
	return handler.TemplPartial(s.views.Form(fp), full, handler.WithTarget(formTarget))
}

// loadList returns backend templates followed by the presets. The presets
// are listed even when the backend call fails.
func (s *Service) loadList(ctx context.Context) (ListParams, error) {
	var list ListParams
	stored, err := s.backend(ctx).ListTemplates(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "list templates failed", logger.Error(err))
		list.Error = apiclient.Message(err)
	}
	for _, t := range stored {
		list.Items = append(list.Items, Item{Ref: backendRef(t.ID), Template: t})
	}
	for _, p := range campaign.Presets() {
		list.Items = append(list.Items, Item{Ref: presetRef(p.Key), Template: p.Template(), Preset: true})
	}
	return list, err
}
