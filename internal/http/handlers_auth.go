package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	"github.com/open-rp/zitadel-rp/internal/ports"
	"github.com/open-rp/zitadel-rp/internal/service"
)

// AuthFlowInterface is the slice of the auth flow service the handlers use.
type AuthFlowInterface interface {
	ProviderName() string
	StartSignIn(ctx context.Context, sess *domainauth.Session) (string, error)
	CompleteSignIn(ctx context.Context, sess *domainauth.Session, in service.CallbackInput) error
	StartLogout(ctx context.Context, sess *domainauth.Session) (string, error)
	CompleteLogout(ctx context.Context, sess *domainauth.Session, state string) error
}

// UserInfoClient fetches raw claims from the provider UserInfo endpoint.
type UserInfoClient interface {
	FetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error)
}

// AuthHandlers provides HTTP handlers for the authentication flows.
type AuthHandlers struct {
	Flow     AuthFlowInterface
	UserInfo UserInfoClient
	Messages service.MessageCatalog
	Sessions *SessionManager
	Renderer *Renderer
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// providerView feeds the sign-in page template.
type providerView struct {
	ID        string
	Name      string
	SignInURL string
}

// SignInPage renders the sign-in page.
// GET /auth/signin?error=<code>&callbackUrl=<url>.
func (h *AuthHandlers) SignInPage(w http.ResponseWriter, r *http.Request) {
	errorCode := r.URL.Query().Get("error")

	var message *service.Message
	if errorCode != "" {
		m := h.Messages.GetMessage(errorCode, service.CategorySignInError)
		message = &m
	}

	name := h.Flow.ProviderName()
	h.Renderer.Render(w, "signin.html", map[string]any{
		"Providers": []providerView{{
			ID:        name,
			Name:      "ZITADEL",
			SignInURL: "/auth/signin/" + name,
		}},
		"CallbackURL": r.URL.Query().Get("callbackUrl"),
		"Message":     message,
	})
}

// SignInStart begins the handshake and redirects to the provider.
// POST /auth/signin/{provider}.
func (h *AuthHandlers) SignInStart(w http.ResponseWriter, r *http.Request) {
	if !h.checkProvider(w, r) {
		return
	}

	sess := h.Sessions.LoadOrCreate(w, r)
	authURL, err := h.Flow.StartSignIn(r.Context(), &sess)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "start sign-in failed", "error", err)
		h.redirectError(w, r, "generic_error")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the handshake.
// GET /auth/callback/{provider}?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.checkProvider(w, r) {
		return
	}

	sess, ok := h.Sessions.Load(r)
	if !ok {
		h.logger().WarnContext(r.Context(), "callback without session")
		h.redirectError(w, r, "generic_error")
		return
	}

	q := r.URL.Query()
	err := h.Flow.CompleteSignIn(r.Context(), &sess, service.CallbackInput{
		Code:  q.Get("code"),
		State: q.Get("state"),
	})

	switch {
	case err == nil:
		http.Redirect(w, r, "/profile", http.StatusFound)

	case errors.Is(err, service.ErrMissingIDToken):
		h.redirectError(w, r, "missing_id_token")

	default:
		var rejection *ports.ProviderRejectionError
		if errors.As(err, &rejection) {
			h.logger().ErrorContext(r.Context(), "provider rejected request",
				"status", rejection.Status,
				"body", rejection.Body,
			)
			h.redirectError(w, r, "provider_rejection")
			return
		}
		h.logger().ErrorContext(r.Context(), "unexpected error during authentication", "error", err)
		h.redirectError(w, r, "generic_error")
	}
}

// ErrorPage renders the authentication error page.
// GET /auth/error?error=<code>.
func (h *AuthHandlers) ErrorPage(w http.ResponseWriter, r *http.Request) {
	message := h.Messages.GetMessage(r.URL.Query().Get("error"), service.CategoryAuthError)
	h.Renderer.Render(w, "auth_error.html", message)
}

// Logout initiates the federated logout handshake.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Sessions.Load(r)
	if !ok || sess.IDToken == "" {
		h.Sessions.SetFlashError(w, r, "No valid session or ID token found")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	logoutURL, err := h.Flow.StartLogout(r.Context(), &sess)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			h.Sessions.SetFlashError(w, r, "No valid session or ID token found")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.logger().ErrorContext(r.Context(), "start logout failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, logoutURL, http.StatusFound)
}

// LogoutCallback verifies the state echoed back by the provider.
// GET /auth/logout/callback?state=<state>.
func (h *AuthHandlers) LogoutCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")

	sess, ok := h.Sessions.Load(r)
	if !ok {
		h.redirectLogoutError(w, r)
		return
	}

	err := h.Flow.CompleteLogout(r.Context(), &sess, state)
	switch {
	case err == nil:
		h.Sessions.ClearCookie(w, r)
		http.Redirect(w, r, "/auth/logout/success", http.StatusFound)

	case errors.Is(err, service.ErrInvalidLogoutState):
		h.redirectLogoutError(w, r)

	default:
		h.logger().ErrorContext(r.Context(), "logout callback failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// LogoutSuccess renders the terminal logout success page.
// GET /auth/logout/success.
func (h *AuthHandlers) LogoutSuccess(w http.ResponseWriter, _ *http.Request) {
	h.Renderer.Render(w, "logout_success.html", nil)
}

// LogoutError renders the terminal logout error page.
// GET /auth/logout/error?reason=<text>.
func (h *AuthHandlers) LogoutError(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "An unknown error occurred."
	}
	h.Renderer.Render(w, "logout_error.html", map[string]string{"Reason": reason})
}

// UserInfoProxy proxies a UserInfo call for the authenticated session.
// GET /auth/userinfo (guarded).
func (h *AuthHandlers) UserInfoProxy(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok || sess.AccessToken == "" {
		WriteJSONError(w, http.StatusUnauthorized, "No access token available")
		return
	}

	claims, err := h.UserInfo.FetchUserInfo(r.Context(), sess.AccessToken)
	if err != nil {
		var rejection *ports.ProviderRejectionError
		if errors.As(err, &rejection) {
			WriteJSONError(w, rejection.Status, fmt.Sprintf("UserInfo API error: %d", rejection.Status))
			return
		}
		h.logger().ErrorContext(r.Context(), "fetch user info failed", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to fetch user info")
		return
	}

	WriteJSON(w, http.StatusOK, claims)
}

// checkProvider enforces the {provider} path segment against the single
// configured provider.
func (h *AuthHandlers) checkProvider(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("provider") != h.Flow.ProviderName() {
		http.NotFound(w, r)
		return false
	}
	return true
}

func (h *AuthHandlers) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/auth/error?error="+url.QueryEscape(code), http.StatusFound)
}

func (h *AuthHandlers) redirectLogoutError(w http.ResponseWriter, r *http.Request) {
	reason := url.QueryEscape("Invalid or missing state parameter.")
	http.Redirect(w, r, "/auth/logout/error?reason="+reason, http.StatusFound)
}
