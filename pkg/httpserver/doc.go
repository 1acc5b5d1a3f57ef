// Package httpserver runs the console's http.Handler with graceful shutdown.
//
// Run blocks until the context is cancelled, SIGINT/SIGTERM arrives or the
// listener fails, then drains in-flight requests within the shutdown
// timeout. Config carries the HTTP_* environment settings.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// HealthHandler reports liveness and, when checks are registered, readiness
// of dependencies such as the Redis session store.
package httpserver
