package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (p ListParams) values() url.Values {
	v := url.Values{}
	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Type != "" {
		v.Set("type", string(p.Type))
	}
	return v
}

// ListAttendees calls GET /attendees/.
func (c *Client) ListAttendees(ctx context.Context, p ListParams) (AttendeeList, error) {
	var out AttendeeList
	err := c.get(ctx, "/attendees/", p.values(), &out)
	return out, err
}

func (c *Client) GetAttendee(ctx context.Context, id int) (Attendee, error) {
	var out Attendee
	err := c.get(ctx, "/attendees/"+strconv.Itoa(id), nil, &out)
	return out, err
}

func (c *Client) CreateAttendee(ctx context.Context, in AttendeeInput) (Attendee, error) {
	var out Attendee
	err := c.post(ctx, "/attendees/", in, &out)
	return out, err
}

// UpdateAttendee calls PUT /attendees/{id}.
func (c *Client) UpdateAttendee(ctx context.Context, id int, in AttendeeInput) (Attendee, error) {
	var out Attendee
	err := c.do(ctx, http.MethodPut, "/attendees/"+strconv.Itoa(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteAttendee(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/attendees/"+strconv.Itoa(id), nil, nil, nil)
}

// BulkCreateAttendees calls POST /attendees/bulk. Rows the backend rejects
// are reported in BulkResult.Errors, not as an error.
func (c *Client) BulkCreateAttendees(ctx context.Context, attendees []Attendee) (BulkResult, error) {
	if len(attendees) == 0 {
		return BulkResult{}, validationError("No attendees to save")
	}
	var out BulkResult
	err := c.post(ctx, "/attendees/bulk", map[string]any{"attendees": attendees}, &out)
	return out, err
}

// AttendeeTypes calls GET /attendees/types.
func (c *Client) AttendeeTypes(ctx context.Context) ([]TypeOption, error) {
	var out struct {
		Types []TypeOption `json:"types"`
	}
	err := c.get(ctx, "/attendees/types", nil, &out)
	return out.Types, err
}
