package sheets_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventmail/handler"
	"github.com/dmitrymomot/eventmail/modules/sheets"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/session"
	"github.com/dmitrymomot/eventmail/svc/sheetimport"
)

type fakeBackend struct {
	calls     []string
	importErr error
	saveErr   error

	// When set, ImportAttendees closes started and waits for release.
	started, release chan struct{}
}

func (f *fakeBackend) ExtractSpreadsheetID(_ context.Context, u string) (string, error) {
	f.calls = append(f.calls, "extract")
	return "sheet-" + u[len(u)-1:], nil
}

func (f *fakeBackend) TestConnection(context.Context, string) error {
	f.calls = append(f.calls, "test")
	return nil
}

func (f *fakeBackend) PreviewData(_ context.Context, id, _ string) (apiclient.SheetPreview, error) {
	f.calls = append(f.calls, "preview")
	return apiclient.SheetPreview{Headers: []string{"name", "email"}, SpreadsheetID: id}, nil
}

func (f *fakeBackend) ImportAttendees(context.Context, string, string) (apiclient.ImportResult, error) {
	f.calls = append(f.calls, "import")
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.importErr != nil {
		return apiclient.ImportResult{}, f.importErr
	}
	att := make([]apiclient.Attendee, 7)
	for i := range att {
		att[i] = apiclient.Attendee{Name: fmt.Sprintf("A%d", i)}
	}
	return apiclient.ImportResult{Attendees: att, TotalRows: 8, ValidAttendees: 7}, nil
}

func (f *fakeBackend) BulkCreateAttendees(_ context.Context, a []apiclient.Attendee) (apiclient.BulkResult, error) {
	f.calls = append(f.calls, "save")
	return apiclient.BulkResult{Created: len(a)}, f.saveErr
}

func stepText(p sheets.StepParams) string {
	switch st := p.Step.(type) {
	case sheetimport.Input:
		return fmt.Sprintf(`<div id="sheets-wizard">input url=%q err=%q</div>`, st.URL, st.Err)
	case sheetimport.Preview:
		return fmt.Sprintf(`<div id="sheets-wizard">preview id=%s headers=%v err=%q</div>`, st.SpreadsheetID, st.Data.Headers, st.Err)
	case sheetimport.Importing:
		return fmt.Sprintf(`<div id="sheets-wizard">importing id=%s</div>`, st.SpreadsheetID)
	case sheetimport.Complete:
		saved := -1
		if st.Saved != nil {
			saved = st.Saved.Created
		}
		return fmt.Sprintf(`<div id="sheets-wizard">complete rate=%d sample=%d saved=%d err=%q</div>`, st.SuccessRate(), len(p.Sample), saved, st.Err)
	}
	return `<div id="sheets-wizard">other</div>`
}

var views = sheets.Views{
	Page: func(p sheets.PageParams) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<main>"+stepText(p.Step)+"</main>")
			return err
		})
	},
	Step: func(p sheets.StepParams) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, stepText(p))
			return err
		})
	},
}

type harness struct {
	backend *fakeBackend
	handler http.Handler
	sess    *session.Session
	errs    []error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{backend: &fakeBackend{}, sess: &session.Session{ID: uuid.New()}}
	log := slog.New(slog.DiscardHandler)
	svc := sheets.NewService(
		func(context.Context) sheetimport.Backend { return h.backend },
		sheetimport.NewRegistry(10, log),
		views,
		log,
		func(ctx handler.Context, err error) {
			h.errs = append(h.errs, err)
			ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
		},
	)
	h.handler = svc.Handle()
	return h
}

func (h *harness) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	r.Header.Set("Datastar-Request", "true")
	r = r.WithContext(session.WithSession(r.Context(), h.sess))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, r)
	return rec
}

func TestWizardFlow(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	rec := h.do(http.MethodPost, "/connect", url.Values{"sheet_url": {""}})
	assert.Contains(t, rec.Body.String(), `input url="" err="Please enter a Google Sheets URL"`)
	assert.Empty(t, h.backend.calls)

	rec = h.do(http.MethodPost, "/connect", url.Values{"sheet_url": {"https://docs.google.com/spreadsheets/d/1"}})
	assert.Contains(t, rec.Body.String(), "preview id=sheet-1 headers=[name email]")
	assert.Equal(t, []string{"extract", "test", "preview"}, h.backend.calls)

	rec = h.do(http.MethodPost, "/import", nil)
	assert.Contains(t, rec.Body.String(), "complete rate=88 sample=5 saved=-1")

	rec = h.do(http.MethodPost, "/save", nil)
	assert.Contains(t, rec.Body.String(), "saved=7")

	rec = h.do(http.MethodPost, "/reset", nil)
	assert.Contains(t, rec.Body.String(), `input url="" err=""`)

	rec = h.do(http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "#sheets-wizard")
	assert.Empty(t, h.errs)
}

func TestWizardImportFailureStaysOnPreview(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.backend.importErr = &apiclient.Error{Kind: apiclient.KindResponse, Status: 500, Message: "시트 읽기 실패"}

	h.do(http.MethodPost, "/connect", url.Values{"sheet_url": {"https://docs.google.com/spreadsheets/d/2"}})
	rec := h.do(http.MethodPost, "/import", nil)

	assert.Contains(t, rec.Body.String(), `preview id=sheet-2 headers=[name email] err="시트 읽기 실패"`)
	assert.Empty(t, h.errs)
}

func TestWizardInvalidActionRerenders(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rec := h.do(http.MethodPost, "/import", nil)

	assert.Contains(t, rec.Body.String(), "input url=")
	assert.Empty(t, h.backend.calls)
	assert.Empty(t, h.errs)
}

func TestWizardUnauthorized(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.do(http.MethodPost, "/connect", url.Values{"sheet_url": {"https://docs.google.com/spreadsheets/d/3"}})
	h.backend.importErr = &apiclient.Error{Kind: apiclient.KindResponse, Status: 401, Err: apiclient.ErrUnauthorized}

	rec := h.do(http.MethodPost, "/import", nil)

	require.Len(t, h.errs, 1)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestWizardsAreIsolatedPerSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.do(http.MethodPost, "/connect", url.Values{"sheet_url": {"https://docs.google.com/spreadsheets/d/4"}})

	other := *h
	other.sess = &session.Session{ID: uuid.New()}
	rec := other.do(http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "input url=")

	rec = h.do(http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "preview id=sheet-4")
}

func TestWizardRequiresSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, h.errs, 1)
	assert.ErrorIs(t, h.errs[0], session.ErrNotInContext)
}

func TestWizardPageShowsImportInProgress(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.do(http.MethodPost, "/connect", url.Values{"sheet_url": {"https://docs.google.com/x/1"}})
	h.backend.started, h.backend.release = make(chan struct{}), make(chan struct{})

	done := make(chan string, 1)
	go func() {
		done <- h.do(http.MethodPost, "/import", nil).Body.String()
	}()
	<-h.backend.started

	assert.Contains(t, h.do(http.MethodGet, "/", nil).Body.String(), "importing id=sheet-1")
	assert.Contains(t, h.do(http.MethodPost, "/import", nil).Body.String(), "importing id=sheet-1",
		"a second import while one runs re-renders the running step")

	close(h.backend.release)
	assert.Contains(t, <-done, "complete rate=88")
}
