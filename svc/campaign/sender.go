package campaign

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/logger"
)

// Disclaimer is shown next to every send control.
const Disclaimer = "Test mode: emails are not actually delivered in this deployment."

// Backend is the subset of the API a campaign calls.
type Backend interface {
	TestTemplate(ctx context.Context, tpl apiclient.TemplateContent, sample map[string]any) (apiclient.TemplateContent, error)
	SendBulk(ctx context.Context, attendees []apiclient.Attendee, tpl apiclient.TemplateContent, data map[string]any) (apiclient.SendResult, error)
}

type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{log: log.With(logger.Component("campaign"))}
}

// Preview renders tpl on the backend against the sample attendee.
func (s *Sender) Preview(ctx context.Context, b Backend, tpl apiclient.TemplateContent, cfg Config, recipients []apiclient.Attendee) (apiclient.TemplateContent, error) {
	if err := checkTemplate(tpl); err != nil {
		return apiclient.TemplateContent{}, err
	}
	return b.TestTemplate(ctx, tpl, SampleData(cfg, recipients))
}

// Send posts one bulk request carrying every recipient and returns the
// per-recipient outcome.
func (s *Sender) Send(ctx context.Context, b Backend, tpl apiclient.TemplateContent, cfg Config, recipients []apiclient.Attendee) (apiclient.SendResult, error) {
	if err := checkTemplate(tpl); err != nil {
		return apiclient.SendResult{}, err
	}
	if len(recipients) == 0 {
		return apiclient.SendResult{}, &apiclient.Error{
			Kind:    apiclient.KindValidation,
			Message: "Select a template and at least one recipient",
			Err:     ErrNoRecipients,
		}
	}

	res, err := b.SendBulk(ctx, recipients, tpl, cfg.TemplateData())
	if err != nil {
		s.log.WarnContext(ctx, "bulk send failed",
			slog.Int("recipients", len(recipients)),
			logger.Error(err),
		)
		return apiclient.SendResult{}, err
	}

	s.log.InfoContext(ctx, "bulk send finished",
		slog.Int("total", res.Total),
		slog.Int("success", res.SuccessCount),
		slog.Int("failure", res.FailureCount),
	)
	return res, nil
}

func checkTemplate(tpl apiclient.TemplateContent) error {
	if strings.TrimSpace(tpl.Subject) == "" && strings.TrimSpace(tpl.Body) == "" {
		return &apiclient.Error{
			Kind:    apiclient.KindValidation,
			Message: "Select a template and at least one recipient",
			Err:     ErrNoTemplate,
		}
	}
	return nil
}
