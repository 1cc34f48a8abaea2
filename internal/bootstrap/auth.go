package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/open-rp/zitadel-rp/config"
	redisadapter "github.com/open-rp/zitadel-rp/internal/adapters/redis"
	"github.com/open-rp/zitadel-rp/internal/adapters/zitadel"
	httpx "github.com/open-rp/zitadel-rp/internal/http"
	"github.com/open-rp/zitadel-rp/internal/service"
	"github.com/redis/go-redis/v9"
)

const discoveryTimeout = 10 * time.Second

// AuthDeps contains dependencies for the auth stack.
type AuthDeps struct {
	Config      config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthStack bundles the constructed auth components.
type AuthStack struct {
	Provider *zitadel.Provider
	Flow     *service.AuthFlowService
	Tokens   *service.TokenService
	Sessions *httpx.SessionManager
	Guard    *httpx.SessionGuard
}

// BuildAuthStack wires the provider adapter, the session store, and the
// services on top of them.
func BuildAuthStack(ctx context.Context, deps AuthDeps) (*AuthStack, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	zcfg := deps.Config.Auth.Zitadel
	provider, err := zitadel.NewProvider(zitadel.Config{
		Domain:        zcfg.Domain,
		ClientID:      zcfg.ClientID,
		ClientSecret:  zcfg.ClientSecret,
		RedirectURL:   zcfg.RedirectURL,
		PostLogoutURL: zcfg.PostLogoutURL,
		Scopes:        zcfg.Scopes,
	})
	if err != nil {
		return nil, fmt.Errorf("create zitadel provider: %w", err)
	}

	if zcfg.VerifyIDToken {
		discoveryCtx, cancel := context.WithTimeout(ctx, discoveryTimeout)
		defer cancel()
		if verr := provider.EnableIDTokenVerification(discoveryCtx); verr != nil {
			// The flow still gates on ID-token presence; startup continues
			// without signature verification rather than crash-looping on a
			// transient discovery outage.
			logger.Warn("ID token verification disabled: discovery failed", "error", verr)
		}
	}

	sessionStore := redisadapter.NewSessionStoreWithTTL(
		deps.RedisClient, "session:", deps.Config.Session.TTL)

	tokens := service.NewTokenService(service.TokenServiceOptions{
		Provider:        provider,
		Logger:          logger,
		DefaultTokenTTL: deps.Config.Auth.DefaultTokenTTL,
	})

	flow := service.NewAuthFlowService(service.AuthFlowOptions{
		Provider: provider,
		Sessions: sessionStore,
		Tokens:   tokens,
		Logger:   logger,
	})

	sessions := &httpx.SessionManager{
		Store:        sessionStore,
		CookieDomain: deps.Config.HTTP.CookieDomain,
		TTL:          deps.Config.Session.TTL,
		Logger:       logger,
	}

	guard := &httpx.SessionGuard{
		Sessions: sessions,
		Tokens:   tokens,
		Logger:   logger,
	}

	return &AuthStack{
		Provider: provider,
		Flow:     flow,
		Tokens:   tokens,
		Sessions: sessions,
		Guard:    guard,
	}, nil
}
