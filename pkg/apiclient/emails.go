package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
)

// SendEmail calls POST /emails/send.
func (c *Client) SendEmail(ctx context.Context, in SingleEmail) (EmailResult, error) {
	if in.Recipient == "" {
		return EmailResult{}, validationError("Recipient is required")
	}
	var out EmailResult
	err := c.post(ctx, "/emails/send", in, &out)
	return out, err
}

// SendBulk calls POST /emails/send-bulk.
func (c *Client) SendBulk(ctx context.Context, attendees []Attendee, tpl TemplateContent, data map[string]any) (SendResult, error) {
	if len(attendees) == 0 {
		return SendResult{}, validationError("Select a template and at least one recipient")
	}
	var out SendResult
	err := c.post(ctx, "/emails/send-bulk", map[string]any{
		"attendees":     attendees,
		"template":      tpl,
		"template_data": data,
	}, &out)
	return out, err
}

// TestTemplate calls POST /emails/test-template and returns the rendered
// subject and body.
func (c *Client) TestTemplate(ctx context.Context, tpl TemplateContent, sample map[string]any) (TemplateContent, error) {
	var out struct {
		Processed TemplateContent `json:"processed_template"`
	}
	err := c.post(ctx, "/emails/test-template", map[string]any{
		"template":    tpl,
		"sample_data": sample,
	}, &out)
	return out.Processed, err
}

// emailLogList accepts {logs|emails|items: [...], total}.
type emailLogList EmailLogs

func (l *emailLogList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &l.Logs); err != nil {
			return err
		}
		l.Total = len(l.Logs)
		return nil
	}
	var raw struct {
		Logs   []EmailLog `json:"logs"`
		Emails []EmailLog `json:"emails"`
		Items  []EmailLog `json:"items"`
		Total  *int       `json:"total"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.Logs != nil:
		l.Logs = raw.Logs
	case raw.Emails != nil:
		l.Logs = raw.Emails
	default:
		l.Logs = raw.Items
	}
	l.Total = len(l.Logs)
	if raw.Total != nil {
		l.Total = *raw.Total
	}
	return nil
}

// EmailLogs calls GET /emails/logs.
func (c *Client) EmailLogs(ctx context.Context) (EmailLogs, error) {
	var out emailLogList
	err := c.get(ctx, "/emails/logs", nil, &out)
	return EmailLogs(out), err
}

// EmailConfig calls GET /emails/config.
func (c *Client) EmailConfig(ctx context.Context) (EmailConfig, error) {
	var out EmailConfig
	err := c.get(ctx, "/emails/config", nil, &out)
	return out, err
}
