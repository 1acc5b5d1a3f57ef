package requestid

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/eventmail/pkg/logger"
)

type contextKey struct{}

func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// FromContext returns the request id or an empty string.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Inject sets the request id header on an outbound request when the
// request context carries one.
func Inject(req *http.Request) {
	if id := FromContext(req.Context()); id != "" {
		req.Header.Set(Header, id)
	}
}

// LoggerExtractor adds "request_id" to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
