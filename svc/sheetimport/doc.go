// Package sheetimport implements the spreadsheet import wizard.
//
// A Wizard moves through four steps:
//
//	input --connect--> preview --import--> importing --done--> complete
//	                      ^                    |
//	                      +-------fail---------+
//
// and reset returns any step to input. The current step is one of the
// Input, Preview, Importing and Complete types, so a view can type-switch on
// it and a Complete step always carries its import result.
//
// Each Wizard serialises its operations with a mutex held for the whole
// backend round trip. Wizards are kept per console session in a Registry.
package sheetimport
