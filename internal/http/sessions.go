package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	"github.com/open-rp/zitadel-rp/internal/ports"
)

const (
	sessionCookieName = "session_id"
	flashCookieName   = "flash_error"
)

// SessionManager ties the session-ID cookie to the server-side session
// record. It is the only place that reads or writes the session cookie.
type SessionManager struct {
	Store        ports.SessionStore
	CookieDomain string
	TTL          time.Duration
	Logger       *slog.Logger
}

// Load returns the session record referenced by the request's cookie.
func (m *SessionManager) Load(r *http.Request) (domainauth.Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return domainauth.Session{}, false
	}
	sess, err := m.Store.Get(r.Context(), c.Value)
	if err != nil {
		return domainauth.Session{}, false
	}
	return sess, true
}

// LoadOrCreate returns the existing session or mints a new empty record and
// sets its cookie. The record itself is persisted by the first Save.
func (m *SessionManager) LoadOrCreate(w http.ResponseWriter, r *http.Request) domainauth.Session {
	if sess, ok := m.Load(r); ok {
		return sess
	}
	sess := domainauth.Session{ID: uuid.NewString()}
	m.setSessionCookie(w, r, sess.ID)
	return sess
}

// Save persists the session record.
func (m *SessionManager) Save(ctx context.Context, sess domainauth.Session) error {
	return m.Store.Save(ctx, sess)
}

// Destroy deletes the session record and clears the cookie on the client.
func (m *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) {
	if err := m.Store.Delete(ctx, id); err != nil {
		m.logger().WarnContext(ctx, "delete session failed", "error", err)
	}
	m.clearCookie(w, r, sessionCookieName)
}

// ClearCookie removes the session cookie without touching the store.
func (m *SessionManager) ClearCookie(w http.ResponseWriter, r *http.Request) {
	m.clearCookie(w, r, sessionCookieName)
}

// SetFlashError stores a one-shot error message shown on the next page load.
func (m *SessionManager) SetFlashError(w http.ResponseWriter, r *http.Request, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    msg,
		Path:     "/",
		Domain:   m.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// PopFlashError reads and clears the flash error cookie.
func (m *SessionManager) PopFlashError(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	m.clearCookie(w, r, flashCookieName)
	return c.Value
}

func (m *SessionManager) setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	maxAge := int(m.TTL.Seconds())
	if maxAge <= 0 {
		maxAge = int((24 * time.Hour).Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		Domain:   m.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clearCookie clears a cookie by setting it to expire immediately. It mirrors
// the attributes used when setting cookies to maximize compatibility across
// browsers during deletion.
func (m *SessionManager) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   m.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
