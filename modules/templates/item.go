package templates

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/placeholder"
	"github.com/dmitrymomot/eventmail/pkg/sanitizer"
	"github.com/dmitrymomot/eventmail/svc/campaign"
)

// Item is one entry of the template list. Ref identifies it in links:
// "t-<id>" for backend templates, "p-<key>" for presets.
type Item struct {
	Ref      string
	Template apiclient.EmailTemplate
	Preset   bool
}

// Keys lists the placeholders used by the subject and the body.
func (i Item) Keys() []string {
	return placeholder.Keys(i.Template.Subject + "\n" + i.Template.Body)
}

func backendRef(id int) string { return "t-" + strconv.Itoa(id) }
func presetRef(key string) string { return "p-" + key }

func findItem(items []Item, ref string) (Item, bool) {
	for _, it := range items {
		if it.Ref == ref {
			return it, true
		}
	}
	return Item{}, false
}

// PreviewData is the editable sample used by the local preview.
type PreviewData struct {
	Name      string `form:"name"`
	EventName string `form:"event_name"`
	EventDate string `form:"event_date"`
	Venue     string `form:"venue"`
}

func DefaultPreviewData() PreviewData {
	cfg := campaign.DefaultConfig()
	return PreviewData{
		Name:      "John Doe",
		EventName: cfg.EventName,
		EventDate: cfg.EventDate,
		Venue:     cfg.Venue,
	}
}

func (d PreviewData) normalize() PreviewData {
	clean := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.Trim, sanitizer.SingleLine)
	return PreviewData{
		Name:      clean(d.Name),
		EventName: clean(d.EventName),
		EventDate: clean(d.EventDate),
		Venue:     clean(d.Venue),
	}
}

// values layers the sample data over the campaign sample attendee and the
// date defaults. Blank fields keep the lower layer.
func (d PreviewData) values(now time.Time) map[string]any {
	own := map[string]any{}
	for k, v := range map[string]string{
		"name":       d.Name,
		"event_name": d.EventName,
		"event_date": d.EventDate,
		"venue":      d.Venue,
	} {
		if strings.TrimSpace(v) != "" {
			own[k] = v
		}
	}
	return placeholder.Merge(
		placeholder.Defaults(now),
		campaign.SampleData(campaign.DefaultConfig(), nil),
		own,
	)
}

func render(it Item, data PreviewData, now time.Time) PreviewParams {
	values := data.values(now)
	return PreviewParams{
		Ref:     it.Ref,
		Data:    data,
		Subject: placeholder.Substitute(it.Template.Subject, values),
		Body:    placeholder.Substitute(it.Template.Body, values),
		Missing: placeholder.Missing(it.Template.Subject+"\n"+it.Template.Body, values),
	}
}
