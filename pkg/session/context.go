package session

import "context"

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// BearerToken returns the backend token of the session in ctx, if any.
func BearerToken(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.BearerToken()
}
