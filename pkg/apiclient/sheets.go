package apiclient

import (
	"context"
	"strings"
)

const (
	PreviewRange = "A1:Z10"
	ImportRange  = "A:Z"
)

// ExtractSpreadsheetID calls POST /google-sheets/extract-spreadsheet-id.
func (c *Client) ExtractSpreadsheetID(ctx context.Context, sheetURL string) (string, error) {
	sheetURL = strings.TrimSpace(sheetURL)
	if sheetURL == "" {
		return "", validationError("Google Sheets URL is required")
	}
	var out struct {
		SpreadsheetID string `json:"spreadsheet_id"`
	}
	err := c.post(ctx, "/google-sheets/extract-spreadsheet-id", map[string]string{"url": sheetURL}, &out)
	return out.SpreadsheetID, err
}

// TestConnection calls POST /google-sheets/test-connection.
func (c *Client) TestConnection(ctx context.Context, spreadsheetID string) error {
	if spreadsheetID == "" {
		return validationError("Spreadsheet ID is required")
	}
	return c.post(ctx, "/google-sheets/test-connection", map[string]string{"spreadsheet_id": spreadsheetID}, nil)
}

// PreviewData calls POST /google-sheets/preview-data. An empty rng uses
// PreviewRange.
func (c *Client) PreviewData(ctx context.Context, spreadsheetID, rng string) (SheetPreview, error) {
	if rng == "" {
		rng = PreviewRange
	}
	var out SheetPreview
	err := c.post(ctx, "/google-sheets/preview-data", map[string]string{
		"spreadsheet_id": spreadsheetID,
		"range":          rng,
	}, &out)
	return out, err
}

// ImportAttendees calls POST /google-sheets/import-attendees. An empty rng
// uses ImportRange.
func (c *Client) ImportAttendees(ctx context.Context, spreadsheetID, rng string) (ImportResult, error) {
	if rng == "" {
		rng = ImportRange
	}
	var out ImportResult
	err := c.post(ctx, "/google-sheets/import-attendees", map[string]string{
		"spreadsheet_id": spreadsheetID,
		"range":          rng,
	}, &out)
	return out, err
}
