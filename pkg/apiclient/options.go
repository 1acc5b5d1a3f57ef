package apiclient

import (
	"log/slog"
	"time"

	"github.com/gojektech/heimdall/v6"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	timeout time.Duration
	doer    heimdall.Doer
	logger  *slog.Logger
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithDoer replaces the underlying HTTP client.
func WithDoer(d heimdall.Doer) Option {
	return func(o *options) {
		if d != nil {
			o.doer = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
