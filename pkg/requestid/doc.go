// Package requestid assigns an identifier to every inbound request and
// carries it through context to logs and outbound backend calls.
//
// Middleware reuses a well-formed X-Request-ID header from the client or
// generates a UUID, echoes it in the response and stores it in the request
// context. Inject copies the id from a context onto an outgoing request so
// the backend can correlate its logs with the console's.
package requestid
