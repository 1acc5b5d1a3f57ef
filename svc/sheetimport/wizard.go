package sheetimport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/logger"
	"github.com/dmitrymomot/eventmail/pkg/statemachine"
)

// Backend is the subset of the API the wizard calls.
type Backend interface {
	ExtractSpreadsheetID(ctx context.Context, sheetURL string) (string, error)
	TestConnection(ctx context.Context, spreadsheetID string) error
	PreviewData(ctx context.Context, spreadsheetID, rng string) (apiclient.SheetPreview, error)
	ImportAttendees(ctx context.Context, spreadsheetID, rng string) (apiclient.ImportResult, error)
	BulkCreateAttendees(ctx context.Context, attendees []apiclient.Attendee) (apiclient.BulkResult, error)
}

// Wizard is one session's import flow. Backend calls run without the lock,
// so Step keeps answering (and shows Importing) while an import is in flight.
type Wizard struct {
	mu    sync.Mutex
	fsm   *statemachine.Machine[State, Event]
	step  Step
	busy  bool
	reset uint64
	log   *slog.Logger
}

func newMachine() *statemachine.Machine[State, Event] {
	return statemachine.MustNew(StateInput,
		statemachine.WithTransition(StateInput, EventConnect, StatePreview),
		statemachine.WithTransition(StatePreview, EventImport, StateImporting),
		statemachine.WithTransition(StateImporting, EventDone, StateComplete),
		statemachine.WithTransition(StateImporting, EventFail, StatePreview),
		statemachine.WithWildcard[State](EventReset, StateInput),
	)
}

// New creates a wizard at the Input step.
func New(log *slog.Logger) *Wizard {
	if log == nil {
		log = slog.Default()
	}
	return &Wizard{
		fsm:  newMachine(),
		step: Input{},
		log:  log.With(logger.Component("sheetimport")),
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Submit validates the URL and runs extract, connection test and preview in
// order. The first failure leaves the wizard at Input with the error set.
func (w *Wizard) Submit(ctx context.Context, b Backend, sheetURL string) (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return w.step, ErrBusy
	}
	if !w.fsm.CanFire(EventConnect) {
		return w.step, w.noTransition(EventConnect)
	}

	sheetURL = strings.TrimSpace(sheetURL)
	if sheetURL == "" {
		w.step = Input{Err: "Please enter a Google Sheets URL"}
		return w.step, &apiclient.Error{Kind: apiclient.KindValidation, Message: "Please enter a Google Sheets URL", Err: ErrEmptyURL}
	}

	fail := func(stage string, err error) (Step, error) {
		w.log.WarnContext(ctx, "connect failed", logger.Step(stage), logger.Error(err))
		w.step = Input{URL: sheetURL, Err: apiclient.Message(err)}
		return w.step, err
	}

	var (
		id, stage string
		data      apiclient.SheetPreview
		err       error
	)
	if !w.unlocked(func() {
		stage = "extract"
		if id, err = b.ExtractSpreadsheetID(ctx, sheetURL); err != nil {
			return
		}
		stage = "test_connection"
		if err = b.TestConnection(ctx, id); err != nil {
			return
		}
		stage = "preview"
		data, err = b.PreviewData(ctx, id, apiclient.PreviewRange)
	}) {
		return w.step, ErrReset
	}
	if err != nil {
		return fail(stage, err)
	}

	if err := w.fire(ctx, EventConnect); err != nil {
		return w.step, err
	}
	w.step = Preview{URL: sheetURL, SpreadsheetID: id, Data: data}
	return w.step, nil
}

// Import fetches every row of the previewed spreadsheet. A failure returns
// to Preview with the preview kept and the error set.
func (w *Wizard) Import(ctx context.Context, b Backend) (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return w.step, ErrBusy
	}
	prev, ok := w.step.(Preview)
	if !ok {
		return w.step, w.noTransition(EventImport)
	}
	if err := w.fire(ctx, EventImport); err != nil {
		return w.step, err
	}
	w.step = Importing{SpreadsheetID: prev.SpreadsheetID, Data: prev.Data}

	var (
		res apiclient.ImportResult
		err error
	)
	if !w.unlocked(func() {
		res, err = b.ImportAttendees(ctx, prev.SpreadsheetID, apiclient.ImportRange)
	}) {
		return w.step, ErrReset
	}
	if err != nil {
		w.log.WarnContext(ctx, "import failed", logger.Step("import"), logger.Error(err))
		if ferr := w.fire(ctx, EventFail); ferr != nil {
			return w.step, ferr
		}
		prev.Err = apiclient.Message(err)
		w.step = prev
		return w.step, err
	}

	if err := w.fire(ctx, EventDone); err != nil {
		return w.step, err
	}
	w.step = Complete{SpreadsheetID: prev.SpreadsheetID, Result: res}
	return w.step, nil
}

// Save stores the imported attendees through the bulk endpoint. The wizard
// stays at Complete.
func (w *Wizard) Save(ctx context.Context, b Backend) (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return w.step, ErrBusy
	}
	done, ok := w.step.(Complete)
	if !ok {
		return w.step, ErrNotComplete
	}
	var (
		res apiclient.BulkResult
		err error
	)
	if !w.unlocked(func() {
		res, err = b.BulkCreateAttendees(ctx, done.Result.Attendees)
	}) {
		return w.step, ErrReset
	}
	if err != nil {
		done.Err = apiclient.Message(err)
		w.step = done
		return w.step, err
	}
	done.Saved = &res
	done.Err = ""
	w.step = done
	w.log.InfoContext(ctx, "attendees saved",
		slog.Int("created", res.Created),
		slog.Int("rejected", len(res.Errors)),
	)
	return w.step, nil
}

// Reset returns to Input and drops any preview or import result. A step
// still running when Reset is called finishes with ErrReset and its result
// is discarded.
func (w *Wizard) Reset() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset++
	_ = w.fire(context.Background(), EventReset)
	w.step = Input{}
	return w.step
}

// unlocked runs fn with w.mu released and the wizard marked busy. It
// reports false when Reset ran meanwhile. The caller holds w.mu.
func (w *Wizard) unlocked(fn func()) (current bool) {
	w.busy = true
	gen := w.reset
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.busy = false
		current = w.reset == gen
	}()
	fn()
	return
}

func (w *Wizard) fire(ctx context.Context, e Event) error {
	from := w.fsm.Current()
	to, err := w.fsm.Fire(e)
	if err != nil {
		return fmt.Errorf("sheetimport: %w", err)
	}
	w.log.DebugContext(ctx, "step changed",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		logger.Event(string(e)),
	)
	return nil
}

func (w *Wizard) noTransition(e Event) error {
	return fmt.Errorf("sheetimport: %w", statemachine.NewErrNoTransitionAvailable(string(w.step.State()), string(e)))
}
