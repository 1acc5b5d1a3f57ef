package campaign

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/validator"
	"github.com/dmitrymomot/eventmail/svc/campaign"
)

const attendeesPerPage = 100

// ErrIncompleteRoster is returned when the backend reports more pages but
// sends an empty one, so the full recipient list cannot be read.
var ErrIncompleteRoster = errors.New("campaign: attendee list ended early")

// loadAttendees reads every attendee page. A campaign must see the whole
// roster, so the only bound is ctx.
func loadAttendees(ctx context.Context, b Backend) ([]apiclient.Attendee, error) {
	var all []apiclient.Attendee
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := b.ListAttendees(ctx, apiclient.ListParams{Page: page, PerPage: attendeesPerPage})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Attendees...)
		if !res.Pagination.HasNext {
			return all, nil
		}
		if len(res.Attendees) == 0 {
			return nil, &apiclient.Error{
				Kind:    apiclient.KindResponse,
				Message: fmt.Sprintf("Attendee list ended at page %d before the last page; refresh and try again", page),
				Err:     ErrIncompleteRoster,
			}
		}
	}
}

func builtinRef(id int) string { return "b-" + strconv.Itoa(id) }
func presetRef(key string) string { return "p-" + key }

func findOption(opts []TemplateOption, ref string) (TemplateOption, bool) {
	if ref == "" {
		return TemplateOption{}, false
	}
	for _, o := range opts {
		if o.Ref == ref {
			return o, true
		}
	}
	return TemplateOption{}, false
}

func sampleName(recipients []apiclient.Attendee) string {
	if len(recipients) > 0 {
		return recipients[0].Name
	}
	return campaign.SampleAttendee.Name
}

func selectionQuery(sel campaign.Selection) string {
	if sel.IsAll() {
		return ""
	}
	return "?" + url.Values{"types": sel.Values()}.Encode()
}

func firstMessage(err error) string {
	if ve := validator.Extract(err); len(ve) > 0 {
		return ve[0].Field + ": " + ve[0].Message
	}
	return apiclient.Message(err)
}
