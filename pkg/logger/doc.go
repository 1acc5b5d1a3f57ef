// Package logger builds *slog.Logger instances for the console.
//
// New takes functional options for format, level, output and static
// attributes. Every logger is wrapped in a context decorator, so attributes
// registered with WithContextExtractors (for example the request id set by
// the requestid middleware) are added to each record at Handle time.
//
// Attribute helpers in attr.go keep key names consistent across packages:
//
//	log.ErrorContext(ctx, "backend call failed",
//	    logger.Component("apiclient"),
//	    logger.Endpoint(http.MethodGet, "/attendees/"),
//	    logger.Status(502),
//	    logger.Error(err),
//	)
//
// NewFromConfig reads level, format and environment from Config, which is
// loaded from the process environment with pkg/config.
package logger
