package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
)

// templateList decodes either a bare array or {"templates": [...]}.
type templateList []EmailTemplate

func (l *templateList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, (*[]EmailTemplate)(l))
	}
	var wrapped struct {
		Templates []EmailTemplate `json:"templates"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Templates
	return nil
}

// ListTemplates calls GET /templates/.
func (c *Client) ListTemplates(ctx context.Context) ([]EmailTemplate, error) {
	var out templateList
	err := c.get(ctx, "/templates/", nil, &out)
	return out, err
}

func (c *Client) GetTemplate(ctx context.Context, id int) (EmailTemplate, error) {
	var out EmailTemplate
	err := c.get(ctx, "/templates/"+strconv.Itoa(id), nil, &out)
	return out, err
}

// CreateTemplate calls POST /templates/.
func (c *Client) CreateTemplate(ctx context.Context, t EmailTemplate) (EmailTemplate, error) {
	if err := checkTemplate(t); err != nil {
		return EmailTemplate{}, err
	}
	var out EmailTemplate
	err := c.post(ctx, "/templates/", t, &out)
	return withFallback(out, t), err
}

// UpdateTemplate calls POST /templates/{id}.
func (c *Client) UpdateTemplate(ctx context.Context, id int, t EmailTemplate) (EmailTemplate, error) {
	if err := checkTemplate(t); err != nil {
		return EmailTemplate{}, err
	}
	var out EmailTemplate
	err := c.post(ctx, "/templates/"+strconv.Itoa(id), t, &out)
	if out.ID == 0 {
		out.ID = id
	}
	return withFallback(out, t), err
}

// BuiltinTemplates calls GET /emails/templates, the backend's stock templates.
func (c *Client) BuiltinTemplates(ctx context.Context) ([]EmailTemplate, error) {
	var out templateList
	err := c.get(ctx, "/emails/templates", nil, &out)
	return out, err
}

func checkTemplate(t EmailTemplate) error {
	if t.Subject == "" || t.Body == "" {
		return validationError("Template must include subject and body")
	}
	return nil
}

// withFallback fills fields the backend left out of its reply from the
// submitted template.
func withFallback(out, in EmailTemplate) EmailTemplate {
	if out.Name == "" && out.Subject == "" && out.Body == "" {
		id := out.ID
		out = in
		out.ID = id
	}
	return out
}
