package session

import "context"

type sessionContextKey struct{}

// FromContext returns the session attached to the request context, if any.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	if !ok {
		return nil
	}

	return s
}

// NewContext attaches a session to the context.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}
