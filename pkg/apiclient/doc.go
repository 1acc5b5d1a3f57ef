// Package apiclient talks to the event email backend over its JSON REST API.
//
// A Client is created once at startup and bound to a session token per
// request with For:
//
//	api := apiclient.New(cfg.BaseURL, apiclient.WithTimeout(cfg.Timeout))
//	list, err := api.For(apiclient.Credentials{Token: token}).ListAttendees(ctx, apiclient.ListParams{})
//
// Every failure is an *Error with a Kind (network, response, validation), the
// HTTP status when there was one, and a single human-readable Message. A 401
// additionally matches ErrUnauthorized so callers can drop the token and send
// the user to the login page. No request is ever retried.
package apiclient
