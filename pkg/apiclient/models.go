package apiclient

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AttendeeType is the category of an attendee.
type AttendeeType string

const (
	TypeAttendee AttendeeType = "attendee"
	TypeSpeaker  AttendeeType = "speaker"
	TypeSponsor  AttendeeType = "sponsor"
	TypeStaff    AttendeeType = "staff"
	TypeVIP      AttendeeType = "vip"
)

// AttendeeTypes lists every type in display order.
func AttendeeTypes() []AttendeeType {
	return []AttendeeType{TypeAttendee, TypeSpeaker, TypeSponsor, TypeStaff, TypeVIP}
}

// AttendeeTypeStrings is AttendeeTypes as plain strings.
func AttendeeTypeStrings() []string {
	types := AttendeeTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func (t AttendeeType) Valid() bool {
	switch t {
	case TypeAttendee, TypeSpeaker, TypeSponsor, TypeStaff, TypeVIP:
		return true
	}
	return false
}

// Label is the title-cased type, matching the backend's own labels.
func (t AttendeeType) Label() string {
	return cases.Title(language.Und).String(string(t))
}

// OrDefault returns TypeAttendee for an empty type.
func (t AttendeeType) OrDefault() AttendeeType {
	if t == "" {
		return TypeAttendee
	}
	return t
}

// TypeOption is one entry of GET /attendees/types.
type TypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Attendee struct {
	ID               int            `json:"id,omitempty"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Company          string         `json:"company,omitempty"`
	Position         string         `json:"position,omitempty"`
	AttendeeType     AttendeeType   `json:"attendee_type,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	RowNumber        int            `json:"row_number,omitempty"`
	RegistrationDate string         `json:"registration_date,omitempty"`
	CustomFields     map[string]any `json:"custom_fields,omitempty"`
	CreatedAt        string         `json:"created_at,omitempty"`
}

// AttendeeInput is the create and update payload.
type AttendeeInput struct {
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Company      string         `json:"company,omitempty"`
	Position     string         `json:"position,omitempty"`
	AttendeeType AttendeeType   `json:"attendee_type,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type Pagination struct {
	Page    int  `json:"current_page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// ListParams filters GET /attendees/.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
	Type    AttendeeType
}

// DefaultPerPage is the page size used when ListParams.PerPage is zero.
const DefaultPerPage = 20

type AttendeeList struct {
	Attendees  []Attendee `json:"attendees"`
	Pagination Pagination `json:"pagination"`
}

type BulkResult struct {
	Created        int      `json:"created"`
	Errors         []string `json:"errors"`
	TotalProcessed int      `json:"total_processed"`
}

type EmailTemplate struct {
	ID           int               `json:"id,omitempty"`
	Name         string            `json:"name"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
	AttendeeType AttendeeType      `json:"attendee_type,omitempty"`
	Variables    map[string]string `json:"variables,omitempty"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    string            `json:"created_at,omitempty"`
}

// TemplateContent is the subject and body pair sent for rendering.
type TemplateContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailResult is the outcome for one recipient of a bulk send.
type EmailResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	Recipient    string `json:"recipient"`
	AttendeeID   int    `json:"attendee_id,omitempty"`
	AttendeeName string `json:"attendee_name,omitempty"`
	TestMode     bool   `json:"test_mode,omitempty"`
}

type SendResult struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Total        int           `json:"total"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	StartedAt    string        `json:"started_at"`
	CompletedAt  string        `json:"completed_at"`
	Results      []EmailResult `json:"results"`
}

// SuccessRate is the rounded percentage of successful sends.
func (r SendResult) SuccessRate() int {
	if r.Total == 0 {
		return 0
	}
	return int(math.Round(float64(r.SuccessCount) / float64(r.Total) * 100))
}

// Failures returns the per-recipient results that failed.
func (r SendResult) Failures() []EmailResult {
	var out []EmailResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// SingleEmail is the payload of POST /emails/send.
type SingleEmail struct {
	Recipient     string         `json:"recipient"`
	RecipientName string         `json:"recipient_name,omitempty"`
	Subject       string         `json:"subject"`
	Body          string         `json:"body"`
	TemplateData  map[string]any `json:"template_data,omitempty"`
}

type EmailLog struct {
	ID        int    `json:"id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	SentAt    string `json:"sent_at,omitempty"`
}

type EmailLogs struct {
	Logs  []EmailLog
	Total int
}

// EmailConfig is the backend's mail delivery configuration.
type EmailConfig struct {
	Configured   bool   `json:"configured"`
	TestMode     bool   `json:"test_mode"`
	SMTPServer   string `json:"smtp_server"`
	SMTPPort     int    `json:"smtp_port"`
	SenderName   string `json:"sender_name"`
	EmailAddress string `json:"email_address"`
}

type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

type LoginResult struct {
	Valid bool   `json:"valid"`
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Profile struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name,omitempty"`
	Name          string `json:"name,omitempty"`
	PhotoURL      string `json:"photo_url,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     int64  `json:"created_at,omitempty"`
	LastSignIn    int64  `json:"last_signin,omitempty"`
}

// DisplayLabel returns the best available name for the profile.
func (p Profile) DisplayLabel() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.Name != "":
		return p.Name
	}
	return p.Email
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// Connected reports whether the backend declared itself healthy.
func (h Health) Connected() bool { return h.Status == "healthy" }

type SheetPreview struct {
	Headers          []string   `json:"headers"`
	SampleRows       [][]string `json:"sample_rows"`
	TotalPreviewRows int        `json:"total_preview_rows"`
	SpreadsheetID    string     `json:"spreadsheet_id"`
	Range            string     `json:"range"`
}

type ImportResult struct {
	Message        string     `json:"message"`
	Attendees      []Attendee `json:"attendees"`
	TotalRows      int        `json:"total_rows"`
	ValidAttendees int        `json:"valid_attendees"`
	SpreadsheetID  string     `json:"spreadsheet_id"`
	Range          string     `json:"range"`
}
