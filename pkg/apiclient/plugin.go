package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/eventmail/pkg/logger"
)

type startKey struct{}

// logPlugin is a heimdall plugin that logs every backend call.
type logPlugin struct {
	log *slog.Logger
}

func newLogPlugin(log *slog.Logger) *logPlugin {
	return &logPlugin{log: log.With(logger.Component("apiclient"))}
}

func (p *logPlugin) OnRequestStart(req *http.Request) {
	ctx := context.WithValue(req.Context(), startKey{}, time.Now())
	*req = *req.WithContext(ctx)
}

func (p *logPlugin) OnRequestEnd(req *http.Request, resp *http.Response) {
	level := slog.LevelDebug
	if resp.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	p.log.LogAttrs(req.Context(), level, "backend call",
		logger.Endpoint(req.Method, req.URL.Path),
		logger.Status(resp.StatusCode),
		logger.Duration(elapsed(req)),
	)
}

func (p *logPlugin) OnError(req *http.Request, err error) {
	p.log.LogAttrs(req.Context(), slog.LevelWarn, "backend call failed",
		logger.Endpoint(req.Method, req.URL.Path),
		logger.Error(err),
		logger.Duration(elapsed(req)),
	)
}

func elapsed(req *http.Request) time.Duration {
	if start, ok := req.Context().Value(startKey{}).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}
