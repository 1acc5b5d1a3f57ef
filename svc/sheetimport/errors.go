package sheetimport

import "errors"

var (
	ErrEmptyURL    = errors.New("sheetimport: spreadsheet URL is required")
	ErrNotComplete = errors.New("sheetimport: no completed import to save")
	ErrBusy        = errors.New("sheetimport: another step is still running")
	ErrReset       = errors.New("sheetimport: wizard was reset while the step ran")
)
