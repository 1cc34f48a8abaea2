package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	mocks "github.com/open-rp/zitadel-rp/internal/mocks/auth"
)

func newPageHandlers(store *mocks.MemorySessionStore) *PageHandlers {
	if store == nil {
		store = mocks.NewMemorySessionStore()
	}
	return &PageHandlers{
		Flow:     &stubFlow{},
		Sessions: &SessionManager{Store: store, TTL: time.Hour},
		Renderer: &Renderer{Logger: testLogger()},
		Logger:   testLogger(),
	}
}

func TestHomeSignedOut(t *testing.T) {
	h := newPageHandlers(nil)

	w := httptest.NewRecorder()
	h.Home(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You are not signed in.")
	assert.Contains(t, w.Body.String(), "/auth/signin/zitadel")
}

func TestHomeSignedIn(t *testing.T) {
	store := mocks.NewMemorySessionStore()
	require.NoError(t, store.Save(context.Background(), domainauth.Session{
		ID:       "sess-1",
		Identity: map[string]any{"sub": "user-1"},
	}))
	h := newPageHandlers(store)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	h.Home(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You are signed in.")
	assert.Contains(t, w.Body.String(), "/profile")
}

func TestHomeShowsAndClearsFlashError(t *testing.T) {
	h := newPageHandlers(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: flashCookieName, Value: "No valid session or ID token found"})
	h.Home(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No valid session or ID token found")

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestProfileRendersSessionJSON(t *testing.T) {
	h := newPageHandlers(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	ctx := SetSessionInContext(r.Context(), &domainauth.Session{
		ID:          "sess-1",
		Identity:    map[string]any{"sub": "user-1", "email": "jane@example.com"},
		AccessToken: "access-token",
		IDToken:     "id-token",
		ExpiresAt:   1750000000,
	})
	h.Profile(w, r.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "jane@example.com")
	assert.Contains(t, body, "id-token")
	assert.Contains(t, body, "1750000000")
}

func TestProfileWithoutSessionRedirects(t *testing.T) {
	h := newPageHandlers(nil)

	w := httptest.NewRecorder()
	h.Profile(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/signin")
}
