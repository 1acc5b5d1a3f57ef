package campaign

import (
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/sanitizer"
	"github.com/dmitrymomot/eventmail/pkg/validator"
)

// Config describes the event a campaign is about. It lives only in the
// campaign form and is never stored.
type Config struct {
	EventName  string `form:"event_name"`
	EventDate  string `form:"event_date"`
	EventTime  string `form:"event_time"`
	Venue      string `form:"venue"`
	SenderName string `form:"sender_name"`
}

// DefaultConfig is the form's initial content.
func DefaultConfig() Config {
	return Config{
		EventName:  "AI & Technology Conference 2024",
		EventDate:  "2024년 10월 15일",
		EventTime:  "오전 9:00 - 오후 6:00",
		Venue:      "서울 코엑스 컨벤션센터",
		SenderName: "Email Automation System",
	}
}

// Normalize trims every field and fills blanks from DefaultConfig.
func (c Config) Normalize() Config {
	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.SingleLine)
	def := DefaultConfig()
	pick := func(v, fallback string) string {
		if v = sanitizer.Apply(v, clean); v == "" {
			return fallback
		}
		return v
	}
	return Config{
		EventName:  pick(c.EventName, def.EventName),
		EventDate:  pick(c.EventDate, def.EventDate),
		EventTime:  pick(c.EventTime, def.EventTime),
		Venue:      pick(c.Venue, def.Venue),
		SenderName: pick(c.SenderName, def.SenderName),
	}
}

func (c Config) Validate() error {
	return validator.Apply(
		validator.MaxLenString("event_name", c.EventName, 200),
		validator.MaxLenString("event_date", c.EventDate, 100),
		validator.MaxLenString("event_time", c.EventTime, 100),
		validator.MaxLenString("venue", c.Venue, 200),
		validator.MaxLenString("sender_name", c.SenderName, 100),
	)
}

// TemplateData is the placeholder map built from the config.
func (c Config) TemplateData() map[string]any {
	return map[string]any{
		"event_name":  c.EventName,
		"event_date":  c.EventDate,
		"event_time":  c.EventTime,
		"venue":       c.Venue,
		"sender_name": c.SenderName,
	}
}

// SampleAttendee stands in for the first recipient when none is selected.
var SampleAttendee = apiclient.Attendee{
	Name:         "홍길동",
	Email:        "sample@example.com",
	Company:      "샘플 회사",
	Position:     "개발자",
	AttendeeType: apiclient.TypeAttendee,
}

// SampleData merges the config with the first recipient, or with
// SampleAttendee when there are none. Attendee fields override config keys.
func SampleData(cfg Config, recipients []apiclient.Attendee) map[string]any {
	a := SampleAttendee
	if len(recipients) > 0 {
		a = recipients[0]
	}
	data := cfg.TemplateData()
	for k, v := range a.CustomFields {
		data[k] = v
	}
	data["name"] = a.Name
	data["email"] = a.Email
	data["company"] = a.Company
	data["position"] = a.Position
	data["attendee_type"] = string(a.AttendeeType.OrDefault())
	return data
}
