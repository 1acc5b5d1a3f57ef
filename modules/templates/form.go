package templates

import (
	"net/url"
	"strings"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/sanitizer"
	"github.com/dmitrymomot/eventmail/pkg/validator"
)

// TemplateForm is the create and edit form.
type TemplateForm struct {
	ID           int    `path:"id"`
	Name         string `form:"name"`
	Subject      string `form:"subject"`
	Body         string `form:"body"`
	AttendeeType string `form:"attendee_type"`
	IsActive     bool   `form:"is_active"`
}

func formFromTemplate(t apiclient.EmailTemplate) TemplateForm {
	return TemplateForm{
		ID:           t.ID,
		Name:         t.Name,
		Subject:      t.Subject,
		Body:         t.Body,
		AttendeeType: string(t.AttendeeType),
		IsActive:     t.IsActive,
	}
}

func (f TemplateForm) Sanitize() TemplateForm {
	line := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.Trim, sanitizer.SingleLine)
	f.Name = line(f.Name)
	f.Subject = line(f.Subject)
	f.Body = sanitizer.Apply(f.Body, sanitizer.NormalizeNewlines, sanitizer.RemoveControlChars, sanitizer.Trim)
	f.AttendeeType = strings.ToLower(strings.TrimSpace(f.AttendeeType))
	return f
}

// Validate returns field errors keyed by form field, or nil.
func (f TemplateForm) Validate() url.Values {
	err := validator.Apply(
		validator.RequiredString("name", f.Name),
		validator.MaxLenString("name", f.Name, 100),
		validator.RequiredString("subject", f.Subject),
		validator.MaxLenString("subject", f.Subject, 200),
		validator.RequiredString("body", f.Body),
		validator.MaxLenString("body", f.Body, 10000),
		validator.When(f.AttendeeType != "",
			validator.InListString("attendee_type", f.AttendeeType, apiclient.AttendeeTypeStrings())),
	)
	if err == nil {
		return nil
	}
	return validator.Extract(err).Values()
}

func (f TemplateForm) Template() apiclient.EmailTemplate {
	return apiclient.EmailTemplate{
		Name:         f.Name,
		Subject:      f.Subject,
		Body:         f.Body,
		AttendeeType: apiclient.AttendeeType(f.AttendeeType),
		IsActive:     f.IsActive,
	}
}
