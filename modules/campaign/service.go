// Package campaign is the bulk send tab: pick a template, describe the
// event, filter recipients by attendee type, preview against one sample
// attendee and send.
package campaign

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
	"github.com/dmitrymomot/eventmail/svc/campaign"
)

// Backend is the part of the API the campaign tab calls.
type Backend interface {
	campaign.Backend
	ListAttendees(ctx context.Context, p apiclient.ListParams) (apiclient.AttendeeList, error)
	BuiltinTemplates(ctx context.Context) ([]apiclient.EmailTemplate, error)
}

// TemplateOption is one entry of the template picker.
type TemplateOption struct {
	Ref          string
	Name         string
	AttendeeType apiclient.AttendeeType
	Content      apiclient.TemplateContent
}

type RecipientsParams struct {
	Counts     []campaign.TypeCount
	Selection  campaign.Selection
	Recipients []apiclient.Attendee
	Error      string
}

type PreviewParams struct {
	Subject string
	Body    string
	Sample  string
	Error   string
}

type ResultsParams struct {
	Result *apiclient.SendResult
	Error  string
}

type PageParams struct {
	Templates     []TemplateOption
	TemplatesNote string
	Selected      string
	Config        campaign.Config
	Recipients    RecipientsParams
	Preview       PreviewParams
	Results       ResultsParams
	Disclaimer    string
}

type Views struct {
	Page       func(PageParams) templ.Component
	Recipients func(RecipientsParams) templ.Component
	Preview    func(PreviewParams) templ.Component
	Results    func(ResultsParams) templ.Component
}

type Service struct {
	backend      func(context.Context) Backend
	sender       *campaign.Sender
	views        Views
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewService(
	backend func(context.Context) Backend,
	sender *campaign.Sender,
	views Views,
	log *slog.Logger,
	errorHandler handler.ErrorHandler[handler.Context],
) *Service {
	if log == nil {
		log = slog.Default()
	}
	if sender == nil {
		sender = campaign.NewSender(log)
	}
	return &Service{
		backend:      backend,
		sender:       sender,
		views:        views,
		log:          log.With(logger.Component("campaign_tab")),
		errorHandler: errorHandler,
	}
}

const (
	recipientsTarget = "#campaign-recipients"
	previewTarget    = "#campaign-preview"
	resultsTarget    = "#campaign-results"
)

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.page,
		handler.WithBinders[handler.Context, pageRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, pageRequest](s.errorHandler),
	))
	r.Post("/filter", handler.Wrap(s.filter,
		handler.WithBinders[handler.Context, filterRequest](binder.Query(), binder.Form()),
		handler.WithErrorHandler[handler.Context, filterRequest](s.errorHandler),
	))
	r.Post("/preview", handler.Wrap(s.preview,
		handler.WithBinders[handler.Context, sendForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, sendForm](s.errorHandler),
	))
	r.Post("/send", handler.Wrap(s.send,
		handler.WithBinders[handler.Context, sendForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, sendForm](s.errorHandler),
	))

	return r
}

type pageRequest struct {
	Template string   `query:"template"`
	Types    []string `query:"types"`
}

type filterRequest struct {
	Toggle  string   `query:"toggle"`
	Checked bool     `query:"checked"`
	Types   []string `form:"types"`
}

type sendForm struct {
	Template string   `form:"template"`
	Types    []string `form:"types"`
	campaign.Config
}

func (s *Service) page(ctx handler.Context, req pageRequest) handler.Response {
	p, err := s.load(ctx, req.Template, campaign.ParseSelection(req.Types), campaign.DefaultConfig())
	if err != nil {
		return handler.Error(err)
	}
	return handler.Templ(s.views.Page(p))
}

func (s *Service) filter(ctx handler.Context, req filterRequest) handler.Response {
	sel := campaign.ParseSelection(req.Types)
	if req.Toggle != "" {
		sel = sel.Toggle(req.Toggle, req.Checked)
	}
	rp, err := s.recipients(ctx, sel)
	if apiclient.IsUnauthorized(err) {
		return handler.Error(err)
	}
	if handler.IsDataStar(ctx.Request()) {
		return handler.Templ(s.views.Recipients(rp), handler.WithTarget(recipientsTarget))
	}
	return handler.Redirect("/campaign" + selectionQuery(sel))
}

func (s *Service) preview(ctx handler.Context, f sendForm) handler.Response {
	cfg := f.Config.Normalize()
	p, err := s.load(ctx, f.Template, campaign.ParseSelection(f.Types), cfg)
	if err != nil {
		return handler.Error(err)
	}

	switch opt, ok := findOption(p.Templates, f.Template); {
	case !ok:
		p.Preview.Error = "Select a template to preview"
	case cfg.Validate() != nil:
		p.Preview.Error = firstMessage(cfg.Validate())
	default:
		out, err := s.sender.Preview(ctx, s.backend(ctx), opt.Content, cfg, p.Recipients.Recipients)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				return handler.Error(err)
			}
			p.Preview.Error = apiclient.Message(err)
			break
		}
		p.Preview.Subject = out.Subject
		p.Preview.Body = out.Body
		p.Preview.Sample = sampleName(p.Recipients.Recipients)
	}

	return handler.TemplPartial(s.views.Preview(p.Preview), s.views.Page(p), handler.WithTarget(previewTarget))
}

func (s *Service) send(ctx handler.Context, f sendForm) handler.Response {
	cfg := f.Config.Normalize()
	p, err := s.load(ctx, f.Template, campaign.ParseSelection(f.Types), cfg)
	if err != nil {
		return handler.Error(err)
	}

	opt, _ := findOption(p.Templates, f.Template)
	switch {
	case p.Recipients.Error != "":
		p.Results.Error = p.Recipients.Error
	case cfg.Validate() != nil:
		p.Results.Error = firstMessage(cfg.Validate())
	default:
		res, err := s.sender.Send(ctx, s.backend(ctx), opt.Content, cfg, p.Recipients.Recipients)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				return handler.Error(err)
			}
			p.Results.Error = apiclient.Message(err)
			break
		}
		p.Results.Result = &res
	}

	return handler.TemplPartial(s.views.Results(p.Results), s.views.Page(p), handler.WithTarget(resultsTarget))
}

// load assembles the page state. Only a 401 is returned as an error.
func (s *Service) load(ctx context.Context, ref string, sel campaign.Selection, cfg campaign.Config) (PageParams, error) {
	p := PageParams{Config: cfg, Disclaimer: campaign.Disclaimer}

	var err error
	p.Templates, p.TemplatesNote, err = s.templateOptions(ctx)
	if apiclient.IsUnauthorized(err) {
		return p, err
	}
	if _, ok := findOption(p.Templates, ref); ok {
		p.Selected = ref
	}

	p.Recipients, err = s.recipients(ctx, sel)
	if apiclient.IsUnauthorized(err) {
		return p, err
	}
	return p, nil
}

func (s *Service) recipients(ctx context.Context, sel campaign.Selection) (RecipientsParams, error) {
	rp := RecipientsParams{Selection: sel}
	all, err := loadAttendees(ctx, s.backend(ctx))
	if err != nil {
		s.log.WarnContext(ctx, "load attendees failed", logger.Error(err))
		rp.Error = apiclient.Message(err)
		return rp, err
	}
	rp.Counts = campaign.TypeCounts(all)
	rp.Recipients = campaign.Filter(all, sel)
	return rp, nil
}

// templateOptions lists the backend's built-in templates, falling back to
// the presets when the backend has none or cannot be reached.
func (s *Service) templateOptions(ctx context.Context) ([]TemplateOption, string, error) {
	builtin, err := s.backend(ctx).BuiltinTemplates(ctx)
	if err == nil && len(builtin) > 0 {
		opts := make([]TemplateOption, 0, len(builtin))
		for _, t := range builtin {
			opts = append(opts, TemplateOption{
				Ref:          builtinRef(t.ID),
				Name:         t.Name,
				AttendeeType: t.AttendeeType,
				Content:      apiclient.TemplateContent{Subject: t.Subject, Body: t.Body},
			})
		}
		return opts, "", nil
	}

	note := "Showing the console's built-in templates."
	if err != nil {
		s.log.WarnContext(ctx, "load templates failed", logger.Error(err))
		note = "Could not load templates from the server (" + apiclient.Message(err) + "). " + note
	}
	presets := campaign.Presets()
	opts := make([]TemplateOption, 0, len(presets))
	for _, pr := range presets {
		opts = append(opts, TemplateOption{
			Ref:          presetRef(pr.Key),
			Name:         pr.Name,
			AttendeeType: pr.AttendeeType,
			Content:      pr.Content(),
		})
	}
	return opts, note, err
}
