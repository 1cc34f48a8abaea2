package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/open-rp/zitadel-rp/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// TokenRefresher is the slice of the token service the guard depends on.
type TokenRefresher interface {
	IsExpired(expiresAt int64) bool
	Refresh(ctx context.Context, refreshToken string) *service.RefreshResult
}

// SessionGuard gates protected resources on an authenticated session.
//
// Per request: no identity redirects to sign-in with the original URL
// preserved; an expired token with a refresh token triggers a silent refresh
// (failure clears the session and redirects to sign-in); a live token passes
// unconditionally, expiry time being the sole trust signal.
type SessionGuard struct {
	Sessions *SessionManager
	Tokens   TokenRefresher
	Logger   *slog.Logger
}

// Require wraps a handler with the guard. The validated session is injected
// into the request context.
func (g *SessionGuard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := g.Sessions.Load(r)
		if !ok || !sess.IsAuthenticated() {
			redirectToSignIn(w, r)
			return
		}

		if g.Tokens.IsExpired(sess.ExpiresAt) && sess.RefreshToken != "" {
			refreshed := g.Tokens.Refresh(r.Context(), sess.RefreshToken)
			if refreshed == nil {
				// Failed refresh invalidates the whole session, never a
				// partial update.
				g.Sessions.Destroy(r.Context(), w, r, sess.ID)
				redirectToSignIn(w, r)
				return
			}

			sess.AccessToken = refreshed.AccessToken
			sess.RefreshToken = refreshed.RefreshToken
			sess.ExpiresAt = refreshed.ExpiresAt
			if err := g.Sessions.Save(r.Context(), sess); err != nil {
				g.logger().ErrorContext(r.Context(), "save refreshed session failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		ctx := SetSessionInContext(r.Context(), &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *SessionGuard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// redirectToSignIn sends the browser to the sign-in page, preserving the
// originally requested URL as the callback target.
func redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/auth/signin?callbackUrl="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}
