package identity

import (
	"context"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
)

type sessionKey struct{}

// WithSession returns a copy of ctx carrying the authenticated session.
func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session stored by WithSession, if any.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*domain.Session)
	return sess, ok && sess != nil
}
