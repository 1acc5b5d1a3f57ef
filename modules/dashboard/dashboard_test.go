package dashboard_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/modules/dashboard"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
)

type stubBackend struct {
	health    apiclient.Health
	healthErr error
	list      apiclient.AttendeeList
	listErr   error
	logs      apiclient.EmailLogs
	logsErr   error
	cfg       apiclient.EmailConfig
	cfgErr    error
}

func (s stubBackend) Health(context.Context) (apiclient.Health, error) { return s.health, s.healthErr }
func (s stubBackend) ListAttendees(context.Context, apiclient.ListParams) (apiclient.AttendeeList, error) {
	return s.list, s.listErr
}
func (s stubBackend) EmailLogs(context.Context) (apiclient.EmailLogs, error) { return s.logs, s.logsErr }
func (s stubBackend) EmailConfig(context.Context) (apiclient.EmailConfig, error) {
	return s.cfg, s.cfgErr
}

func statsText(p dashboard.StatsParams) string {
	return fmt.Sprintf("connected=%t attendees=%d sent=%d test_mode=%t health_err=%q attendees_err=%q",
		p.Connected(), p.Attendees, p.EmailsSent, p.Email.TestMode, p.HealthErr, p.AttendeesErr)
}

var views = dashboard.Views{
	Page: func(p dashboard.PageParams) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<main>"+statsText(p.Stats)+"</main>")
			return err
		})
	},
	Stats: func(p dashboard.StatsParams) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, `<section id="dashboard-stats">`+statsText(p)+"</section>")
			return err
		})
	},
}

func newService(b stubBackend, errs *[]error) *dashboard.Service {
	return dashboard.NewService(
		func(context.Context) dashboard.Backend { return b },
		views,
		slog.New(slog.DiscardHandler),
		func(ctx handler.Context, err error) {
			*errs = append(*errs, err)
			ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
		},
	)
}

func TestDashboardPage(t *testing.T) {
	t.Parallel()

	var errs []error
	svc := newService(stubBackend{
		health: apiclient.Health{Status: "healthy"},
		list:   apiclient.AttendeeList{Pagination: apiclient.Pagination{Total: 42}},
		logs:   apiclient.EmailLogs{Total: 7},
		cfg:    apiclient.EmailConfig{TestMode: true},
	}, &errs)

	rec := httptest.NewRecorder()
	svc.Handle().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, errs)
	assert.Contains(t, rec.Body.String(), "<main>connected=true attendees=42 sent=7 test_mode=true")
}

func TestDashboardSectionErrors(t *testing.T) {
	t.Parallel()

	var errs []error
	svc := newService(stubBackend{
		healthErr: &apiclient.Error{Kind: apiclient.KindNetwork, Message: "Network error"},
		list:      apiclient.AttendeeList{Attendees: []apiclient.Attendee{{Name: "A"}, {Name: "B"}}},
		logsErr:   errors.New("logs down"),
	}, &errs)

	rec := httptest.NewRecorder()
	svc.Handle().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, errs)
	body := rec.Body.String()
	assert.Contains(t, body, "connected=false attendees=2")
	assert.Contains(t, body, `health_err="Network error"`)
}

func TestDashboardRefreshPatchesStats(t *testing.T) {
	t.Parallel()

	var errs []error
	svc := newService(stubBackend{health: apiclient.Health{Status: "healthy"}}, &errs)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Datastar-Request", "true")
	rec := httptest.NewRecorder()
	svc.Handle().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, "#dashboard-stats")
	assert.NotContains(t, body, "<main>")
}

func TestDashboardUnauthorized(t *testing.T) {
	t.Parallel()

	var errs []error
	unauthorized := &apiclient.Error{Kind: apiclient.KindResponse, Status: 401, Message: "Token expired", Err: apiclient.ErrUnauthorized}
	svc := newService(stubBackend{
		health:  apiclient.Health{Status: "healthy"},
		listErr: unauthorized,
	}, &errs)

	rec := httptest.NewRecorder()
	svc.Handle().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, errs, 1)
	assert.True(t, apiclient.IsUnauthorized(errs[0]))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
