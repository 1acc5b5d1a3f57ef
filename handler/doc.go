// Package handler turns typed request handlers into http.HandlerFunc values.
//
// A handler receives a Context and a bound request struct and returns a
// Response. Responses know how to render themselves for both regular browser
// requests (full HTML page) and datastar requests (SSE element patches):
//
//	func (s *Service) list(ctx handler.Context, req listRequest) handler.Response {
//		page := s.views.Page(params)
//		table := s.views.Table(params)
//		return handler.TemplPartial(table, page, handler.WithTarget("#attendee-table"))
//	}
//
//	r.Get("/", handler.Wrap(s.list,
//		handler.WithBinders[handler.Context, listRequest](binder.Query()),
//		handler.WithErrorHandler[handler.Context, listRequest](s.errorHandler),
//	))
//
// Errors returned from binders and from Response.Render, including the
// Error response, go to the configured ErrorHandler. NewErrorHandler builds
// one that renders a full error page or a toast patch depending on the
// request.
package handler
