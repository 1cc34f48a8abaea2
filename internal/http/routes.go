package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices carries the handlers and middleware the router wires up.
type RouterServices struct {
	Auth   *AuthHandlers
	Pages  *PageHandlers
	Guard  *SessionGuard
	Logger *slog.Logger
}

// NewRouter assembles the full route table.
func NewRouter(svc RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", svc.Pages.Home)
	mux.HandleFunc("GET /healthz", Healthz)
	mux.Handle("GET /static/", StaticHandler())

	mux.HandleFunc("GET /auth/signin", svc.Auth.SignInPage)
	mux.HandleFunc("POST /auth/signin/{provider}", svc.Auth.SignInStart)
	mux.HandleFunc("GET /auth/callback/{provider}", svc.Auth.Callback)
	mux.HandleFunc("GET /auth/error", svc.Auth.ErrorPage)
	mux.HandleFunc("POST /auth/logout", svc.Auth.Logout)
	mux.HandleFunc("GET /auth/logout/callback", svc.Auth.LogoutCallback)
	mux.HandleFunc("GET /auth/logout/success", svc.Auth.LogoutSuccess)
	mux.HandleFunc("GET /auth/logout/error", svc.Auth.LogoutError)

	mux.Handle("GET /profile", svc.Guard.Require(http.HandlerFunc(svc.Pages.Profile)))
	mux.Handle("GET /auth/userinfo", svc.Guard.Require(http.HandlerFunc(svc.Auth.UserInfoProxy)))

	return mux
}
