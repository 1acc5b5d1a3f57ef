package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"

	"github.com/dmitrymomot/eventmail/pkg/requestid"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 10 << 20
)

// Credentials identify the console user to the backend.
type Credentials struct {
	Token string
}

// Client is a backend API client. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *httpclient.Client
	log     *slog.Logger
	token   string
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	o := &options{
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	hopts := []httpclient.Option{
		httpclient.WithHTTPTimeout(o.timeout),
		httpclient.WithRetryCount(0),
	}
	if o.doer != nil {
		hopts = append(hopts, httpclient.WithHTTPClient(o.doer))
	}
	hc := httpclient.NewClient(hopts...)
	hc.AddPlugin(newLogPlugin(o.logger))

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		log:     o.logger,
	}
}

// For returns a copy of c that authenticates with creds.
func (c *Client) For(creds Credentials) *Client {
	cp := *c
	cp.token = creds.Token
	return &cp
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return validationError(fmt.Sprintf("encode request: %v", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestid.Inject(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if readErr == nil {
			_ = json.Unmarshal(raw, &env)
		}
		return responseError(resp.StatusCode, env.message())
	}
	if readErr != nil {
		return networkError(readErr)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "Request failed"
		}
		return &Error{Kind: KindResponse, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindResponse, Status: resp.StatusCode, Message: "Unexpected response from server", Err: err}
	}
	return nil
}

// envelope is the subset of fields the backend uses to report failures.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e envelope) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
