package sheetimport

import (
	"math"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
)

type State string

const (
	StateInput     State = "input"
	StatePreview   State = "preview"
	StateImporting State = "importing"
	StateComplete  State = "complete"
)

type Event string

const (
	EventConnect Event = "connect"
	EventImport  Event = "import"
	EventDone    Event = "done"
	EventFail    Event = "fail"
	EventReset   Event = "reset"
)

// Step is the wizard's current step. It is implemented only by Input,
// Preview, Importing and Complete.
type Step interface {
	State() State
	sealed()
}

// Input asks for the spreadsheet URL.
type Input struct {
	URL string
	Err string
}

// Preview shows the first rows of a connected spreadsheet.
type Preview struct {
	URL           string
	SpreadsheetID string
	Data          apiclient.SheetPreview
	Err           string
}

// Importing is shown while the import request runs.
type Importing struct {
	SpreadsheetID string
	Data          apiclient.SheetPreview
}

// Complete holds a finished import.
type Complete struct {
	SpreadsheetID string
	Result        apiclient.ImportResult
	Saved         *apiclient.BulkResult
	Err           string
}

func (Input) State() State     { return StateInput }
func (Preview) State() State   { return StatePreview }
func (Importing) State() State { return StateImporting }
func (Complete) State() State  { return StateComplete }

func (Input) sealed()     {}
func (Preview) sealed()   {}
func (Importing) sealed() {}
func (Complete) sealed()  {}

// SuccessRate is valid attendees over total rows as a rounded percentage.
func (c Complete) SuccessRate() int {
	if c.Result.TotalRows == 0 {
		return 0
	}
	return int(math.Round(float64(c.Result.ValidAttendees) / float64(c.Result.TotalRows) * 100))
}

// Sample returns at most n imported attendees.
func (c Complete) Sample(n int) []apiclient.Attendee {
	if n < 0 {
		n = 0
	}
	return c.Result.Attendees[:min(n, len(c.Result.Attendees))]
}
