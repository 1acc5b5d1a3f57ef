package attendees

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/sanitizer"
	"github.com/dmitrymomot/eventmail/pkg/validator"
)

// Filter is the list query: page, free-text search and attendee type.
type Filter struct {
	Page   int    `query:"page"`
	Search string `query:"search"`
	Type   string `query:"type"`
}

func (f Filter) normalize() Filter {
	f.Page = max(f.Page, 1)
	f.Search = sanitizer.Apply(f.Search, sanitizer.Trim, sanitizer.SingleLine)
	f.Type = sanitizer.Apply(f.Type, sanitizer.Trim, sanitizer.ToLower)
	if !apiclient.AttendeeType(f.Type).Valid() {
		f.Type = ""
	}
	return f
}

func (f Filter) Params() apiclient.ListParams {
	return apiclient.ListParams{
		Page:    f.Page,
		PerPage: apiclient.DefaultPerPage,
		Search:  f.Search,
		Type:    apiclient.AttendeeType(f.Type),
	}
}

// Query encodes the filter for links, keeping page 1 implicit.
func (f Filter) Query() string {
	v := url.Values{}
	if f.Page > 1 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Type != "" {
		v.Set("type", f.Type)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// WithPage returns the query for another page of the same filter.
func (f Filter) WithPage(page int) string {
	f.Page = page
	return f.Query()
}

// AttendeeForm is the create and edit form.
type AttendeeForm struct {
	ID           int    `path:"id"`
	Name         string `form:"name"`
	Email        string `form:"email"`
	Company      string `form:"company"`
	Position     string `form:"position"`
	Phone        string `form:"phone"`
	AttendeeType string `form:"attendee_type"`
}

func formFromAttendee(a apiclient.Attendee) AttendeeForm {
	return AttendeeForm{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Company:      a.Company,
		Position:     a.Position,
		Phone:        a.Phone,
		AttendeeType: string(a.AttendeeType.OrDefault()),
	}
}

func (f AttendeeForm) Sanitize() AttendeeForm {
	line := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.Trim, sanitizer.SingleLine)
	f.Name = line(f.Name)
	f.Email = sanitizer.Email(f.Email)
	f.Company = line(f.Company)
	f.Position = line(f.Position)
	f.Phone = line(f.Phone)
	f.AttendeeType = strings.ToLower(strings.TrimSpace(f.AttendeeType))
	if f.AttendeeType == "" {
		f.AttendeeType = string(apiclient.TypeAttendee)
	}
	return f
}

// Validate returns field errors keyed by form field, or nil.
func (f AttendeeForm) Validate() url.Values {
	err := validator.Apply(
		validator.RequiredString("name", f.Name),
		validator.MaxLenString("name", f.Name, 100),
		validator.RequiredString("email", f.Email),
		validator.When(f.Email != "", validator.ValidEmail("email", f.Email)),
		validator.MaxLenString("company", f.Company, 200),
		validator.MaxLenString("position", f.Position, 100),
		validator.MaxLenString("phone", f.Phone, 20),
		validator.InListString("attendee_type", f.AttendeeType, apiclient.AttendeeTypeStrings()),
	)
	if err == nil {
		return nil
	}
	return validator.Extract(err).Values()
}

func (f AttendeeForm) Input() apiclient.AttendeeInput {
	return apiclient.AttendeeInput{
		Name:         f.Name,
		Email:        f.Email,
		Company:      f.Company,
		Position:     f.Position,
		Phone:        f.Phone,
		AttendeeType: apiclient.AttendeeType(f.AttendeeType),
	}
}
