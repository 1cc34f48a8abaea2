package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/open-rp/zitadel-rp/config"
	httpx "github.com/open-rp/zitadel-rp/internal/http"
	"github.com/open-rp/zitadel-rp/internal/service"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// HTTPDeps contains dependencies for the HTTP server.
type HTTPDeps struct {
	Config config.AppConfig
	Auth   *AuthStack
	Logger *slog.Logger
}

// BuildHTTPHandler assembles the router and wraps it with middleware.
// Order: Recover -> Logging -> Router.
func BuildHTTPHandler(deps HTTPDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer := &httpx.Renderer{Logger: logger}

	auth := &httpx.AuthHandlers{
		Flow:     deps.Auth.Flow,
		UserInfo: deps.Auth.Provider,
		Messages: service.MessageCatalog{},
		Sessions: deps.Auth.Sessions,
		Renderer: renderer,
		Logger:   logger,
	}
	pages := &httpx.PageHandlers{
		Flow:     deps.Auth.Flow,
		Sessions: deps.Auth.Sessions,
		Renderer: renderer,
		Logger:   logger,
	}

	h := httpx.NewRouter(httpx.RouterServices{
		Auth:   auth,
		Pages:  pages,
		Guard:  deps.Auth.Guard,
		Logger: logger,
	})

	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)

	return h
}

// RunServer starts the HTTP server and blocks until the context is canceled
// or the listener fails. SIGINT and SIGTERM trigger a graceful shutdown.
func RunServer(ctx context.Context, deps HTTPDeps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := deps.Config.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      BuildHTTPHandler(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
