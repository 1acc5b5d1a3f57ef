// Package session keeps per-browser console sessions.
//
// A session is identified by an opaque random token carried in an encrypted
// cookie (see CookieTransport) and stored server side in a Store: the
// in-process MemoryStore, or RedisStore when several console instances share
// state. After login the session holds the backend bearer token and the
// signed-in user. Handlers read it from the request context; nothing about
// the credentials is global.
//
//	mgr := session.New(
//	    session.WithStore(session.NewRedisStore(rdb)),
//	    session.WithTransport(session.NewCookieTransport(cm, cfg.CookieName)),
//	)
//	r.Use(mgr.Middleware)
//	r.With(mgr.RequireAuth(loginRedirect)).Mount("/attendees", attendees.Handle())
//
// Login rotates the session token to prevent fixation. ClearCredentials drops
// the bearer token but keeps the session, which is what the console does when
// the backend answers 401.
package session
