package views_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/modules/apitest"
	"github.com/dmitrymomot/eventmail/modules/attendees"
	"github.com/dmitrymomot/eventmail/modules/auth"
	"github.com/dmitrymomot/eventmail/modules/campaign"
	"github.com/dmitrymomot/eventmail/modules/dashboard"
	"github.com/dmitrymomot/eventmail/modules/shell"
	"github.com/dmitrymomot/eventmail/modules/sheets"
	"github.com/dmitrymomot/eventmail/modules/templates"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	svc "github.com/dmitrymomot/eventmail/svc/campaign"
	"github.com/dmitrymomot/eventmail/svc/sheetimport"
	"github.com/dmitrymomot/eventmail/views"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func TestLayoutHighlightsActiveTab(t *testing.T) {
	t.Parallel()

	s := shell.New("Console", nil, nil)
	ctx := shell.WithNav(context.Background(), s.Nav("/attendees"))

	html := render(t, ctx, views.Attendees().Page(attendees.PageParams{}))

	assert.Contains(t, html, "<title>Attendees · Console</title>")
	assert.Contains(t, html, `<a href="/attendees" class="active" aria-current="page">`)
	assert.Contains(t, html, `<a href="/campaign">`)
	assert.Contains(t, html, `id="toast-container"`)
	assert.Contains(t, html, views.DatastarScript)
	assert.Contains(t, html, `id="attendee-editor"`)
}

func TestDashboardStats(t *testing.T) {
	t.Parallel()

	html := render(t, context.Background(), views.Dashboard().Stats(dashboard.StatsParams{
		Health:       apiclient.Health{Status: "healthy", Version: "1.2"},
		Attendees:    42,
		EmailsErr:    "Email log unavailable",
		Email:        apiclient.EmailConfig{Configured: true, TestMode: true},
		LoadedAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		AttendeesErr: "",
	}))

	assert.Contains(t, html, `id="dashboard-stats"`)
	assert.Contains(t, html, "✅ Connected")
	assert.Contains(t, html, "<strong>42</strong>")
	assert.Contains(t, html, "Email log unavailable")
	assert.Contains(t, html, "test mode")
	assert.Contains(t, html, "2026-03-01 09:30:00")
}

func TestAttendeeListEscapesAndLinks(t *testing.T) {
	t.Parallel()

	html := render(t, context.Background(), views.Attendees().List(attendees.ListParams{
		Attendees: []apiclient.Attendee{
			{ID: 7, Name: "<b>Kim</b>", Email: "kim@example.com", AttendeeType: apiclient.AttendeeType("vip")},
			{ID: 8, Name: "Lee", Email: "lee@example.com"},
		},
		Pagination: apiclient.Pagination{Page: 1, Pages: 2, Total: 21, HasNext: true},
		Filter:     attendees.Filter{Page: 1, Search: "k"},
		Types:      []apiclient.TypeOption{{Value: "vip", Label: "VIP"}},
		Notice:     "Attendee created",
	}))

	assert.NotContains(t, html, "<b>Kim</b>")
	assert.Contains(t, html, "&lt;b&gt;Kim&lt;/b&gt;")
	assert.Contains(t, html, `href="/attendees/7/edit"`)
	assert.Contains(t, html, "Vip")
	assert.Contains(t, html, "Attendee", "missing type is shown as attendee")
	assert.Contains(t, html, "Attendee created")
	assert.Contains(t, html, `href="/attendees?page=2&amp;search=k"`)
}

func TestAttendeeListEmpty(t *testing.T) {
	t.Parallel()

	html := render(t, context.Background(), views.Attendees().List(attendees.ListParams{}))
	assert.Contains(t, html, "No attendees found")

	html = render(t, context.Background(), views.Attendees().List(attendees.ListParams{Error: "Network Error"}))
	assert.Contains(t, html, "Network Error")
	assert.NotContains(t, html, "No attendees found")
}

func TestAttendeeFormErrors(t *testing.T) {
	t.Parallel()

	html := render(t, context.Background(), views.Attendees().Form(attendees.FormParams{
		ID:     3,
		Form:   attendees.AttendeeForm{Name: "Kim", AttendeeType: "speaker"},
		Types:  []apiclient.TypeOption{{Value: "attendee", Label: "Attendee"}, {Value: "speaker", Label: "Speaker"}},
		Errors: map[string][]string{"email": {"Email is required"}},
	}))

	assert.Contains(t, html, "Edit attendee")
	assert.Contains(t, html, `action="/attendees/3"`)
	assert.Contains(t, html, "Email is required")
	assert.Contains(t, html, `<option value="speaker" selected>`)
}

func TestTemplateDetailShowsPlaceholders(t *testing.T) {
	t.Parallel()

	item := templates.Item{Ref: "p-welcome", Preset: true, Template: apiclient.EmailTemplate{
		Name:    "Welcome",
		Subject: "Hi {{name}}",
		Body:    "See you at {{venue}}",
	}}
	html := render(t, context.Background(), views.Templates().Detail(templates.DetailParams{
		Item: &item,
		Keys: []string{"name", "venue"},
		Preview: templates.PreviewParams{
			Ref:     "p-welcome",
			Subject: "Hi Kim",
			Missing: []string{"venue"},
		},
	}))

	assert.Contains(t, html, "<code>{{name}}</code>")
	assert.Contains(t, html, `name="ref" value="p-welcome"`)
	assert.Contains(t, html, `id="template-preview"`)
	assert.Contains(t, html, "Hi Kim")
	assert.Contains(t, html, "No value for: venue")
	assert.NotContains(t, html, "/edit", "presets are read-only")
}

func TestCampaignRecipients(t *testing.T) {
	t.Parallel()

	sel := svc.ParseSelection([]string{"speaker", "vip"})
	html := render(t, context.Background(), views.Campaign().Recipients(campaign.RecipientsParams{
		Counts: []svc.TypeCount{
			{Value: svc.All, Label: "All", Count: 5},
			{Value: "speaker", Label: "Speaker", Count: 1},
			{Value: "vip", Label: "Vip", Count: 1},
			{Value: "attendee", Label: "Attendee", Count: 3},
		},
		Selection:  sel,
		Recipients: make([]apiclient.Attendee, 2),
	}))

	assert.Contains(t, html, `<input type="hidden" name="types" value="speaker">`)
	assert.Contains(t, html, `<input type="hidden" name="types" value="vip">`)
	assert.Contains(t, html, `value="vip" checked`)
	assert.NotContains(t, html, `value="all" checked`)
	assert.Contains(t, html, "<strong>2</strong> recipient(s)")
}

func TestCampaignResults(t *testing.T) {
	t.Parallel()

	html := render(t, context.Background(), views.Campaign().Results(campaign.ResultsParams{
		Result: &apiclient.SendResult{
			Total: 2, SuccessCount: 1, FailureCount: 1,
			Results: []apiclient.EmailResult{
				{Success: true, Recipient: "a@example.com"},
				{Recipient: "b@example.com", AttendeeName: "Bo", Error: "mailbox full"},
			},
		},
	}))

	assert.Contains(t, html, "<strong>50%</strong>")
	assert.Contains(t, html, "Bo &lt;b@example.com&gt;: mailbox full")
	assert.NotContains(t, html, "a@example.com")
}

func TestSheetsSteps(t *testing.T) {
	t.Parallel()

	v := views.Sheets()
	ctx := context.Background()

	html := render(t, ctx, v.Step(sheets.StepParams{Step: sheetimport.Input{URL: "bad", Err: "Invalid URL"}}))
	assert.Contains(t, html, `name="sheet_url" value="bad"`)
	assert.Contains(t, html, "Invalid URL")

	html = render(t, ctx, v.Step(sheets.StepParams{Step: sheetimport.Preview{
		SpreadsheetID: "abc",
		Data:          apiclient.SheetPreview{Headers: []string{"이름", "이메일"}, SampleRows: [][]string{{"홍길동", "h@example.com"}}, TotalPreviewRows: 1},
		Err:           "Import failed",
	}}))
	assert.Contains(t, html, "<th>이름</th>")
	assert.Contains(t, html, "<td>홍길동</td>")
	assert.Contains(t, html, "Import failed")
	assert.Contains(t, html, "/sheets/import")

	html = render(t, ctx, v.Step(sheets.StepParams{
		Step:   sheetimport.Complete{Result: apiclient.ImportResult{TotalRows: 9, ValidAttendees: 6}},
		Sample: []apiclient.Attendee{{Name: "Kim"}},
	}))
	assert.Contains(t, html, "<strong>67%</strong>")
	assert.Contains(t, html, "<td>Kim</td>")
	assert.Contains(t, html, "Save to attendee list")

	html = render(t, ctx, v.Step(sheets.StepParams{Step: sheetimport.Complete{
		Saved: &apiclient.BulkResult{Created: 6, TotalProcessed: 6},
	}}))
	assert.Contains(t, html, "Saved 6 of 6 attendees.")
	assert.NotContains(t, html, "Save to attendee list")
}

func TestAPITestResults(t *testing.T) {
	t.Parallel()

	html := render(t, context.Background(), views.APITest().Results(apitest.ResultsParams{
		BaseURL: "http://localhost:5001/api",
		Checks: []apitest.Check{
			{Name: "Health Check", Endpoint: "/health", Passed: true, Status: 200, Message: "OK", Data: `{"status": "healthy"}`},
			{Name: "Mock Login", Endpoint: "/auth/mock-login", Message: "Network Error"},
		},
	}))

	assert.Contains(t, html, "1/2 tests passing")
	assert.Contains(t, html, "✅ Health Check")
	assert.Contains(t, html, "❌ Mock Login")
	assert.Contains(t, html, "{&#34;status&#34;: &#34;healthy&#34;}")
}

func TestAuthViews(t *testing.T) {
	t.Parallel()

	v := views.Auth()
	ctx := context.Background()

	html := render(t, ctx, v.LoginPage(auth.LoginPageParams{
		Notice: "Your session has expired. Please sign in again.",
		Form:   auth.LoginFormParams{Email: "kim@example.com", Next: "/campaign"},
	}))
	assert.Contains(t, html, "Your session has expired")
	assert.Contains(t, html, `name="next" value="/campaign"`)
	assert.Contains(t, html, `id="login-form"`)

	html = render(t, ctx, v.Badge(auth.BadgeParams{SignedIn: true, Label: "Kim"}))
	assert.Contains(t, html, "👤 Kim")
	assert.Contains(t, html, "Sign out")

	html = render(t, ctx, v.Badge(auth.BadgeParams{}))
	assert.Contains(t, html, `href="/login"`)
}

func TestErrorViews(t *testing.T) {
	t.Parallel()

	cfg := views.ErrorHandlerConfig()
	ctx := context.Background()

	html := render(t, ctx, cfg.ErrorPage(handler.ErrorPageParams{
		Error: "Page not found", StatusCode: 404, RequestID: "req-1", RetryURL: "/nope",
	}))
	assert.Contains(t, html, "<h2>404</h2>")
	assert.Contains(t, html, "req-1")
	assert.Contains(t, html, `href="/nope"`)

	html = render(t, ctx, cfg.ErrorToast(handler.ErrorToastParams{Message: "Oops", Type: "warning"}))
	assert.Contains(t, html, `class="toast warning"`)
	assert.Contains(t, html, "Oops")
}
