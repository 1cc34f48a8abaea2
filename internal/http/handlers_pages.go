package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// PageHandlers serves the browser-facing pages outside the auth flows.
type PageHandlers struct {
	Flow     AuthFlowInterface
	Sessions *SessionManager
	Renderer *Renderer
	Logger   *slog.Logger
}

// Home renders the landing page.
// GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.Sessions.Load(r)
	flash := h.Sessions.PopFlashError(w, r)

	h.Renderer.Render(w, "home.html", map[string]any{
		"FlashError":      flash,
		"IsAuthenticated": sess.IsAuthenticated(),
		"SignInURL":       "/auth/signin/" + h.Flow.ProviderName(),
	})
}

// Profile renders the session contents for the authenticated user.
// GET /profile (guarded).
func (h *PageHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/auth/signin", http.StatusFound)
		return
	}

	view := map[string]any{
		"user":        sess.Identity,
		"idToken":     sess.IDToken,
		"accessToken": sess.AccessToken,
		"expiresAt":   sess.ExpiresAt,
	}
	body, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		h.logger().ErrorContext(r.Context(), "marshal profile view failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.Renderer.Render(w, "profile.html", map[string]string{
		"SessionJSON": string(body),
	})
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
