package httpx

import (
	"context"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers and middleware use the same key.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session from context and a boolean
// indicating presence.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}
