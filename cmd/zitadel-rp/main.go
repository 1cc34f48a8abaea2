package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/open-rp/zitadel-rp/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting zitadel-rp",
		"addr", cfg.HTTP.Addr,
		"zitadel_domain", cfg.Auth.Zitadel.Domain,
		"dev", cfg.IsDev)

	redisClient, err := bootstrap.ConnectRedis(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	auth, err := bootstrap.BuildAuthStack(ctx, bootstrap.AuthDeps{
		Config:      cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServer(ctx, bootstrap.HTTPDeps{
		Config: cfg,
		Auth:   auth,
		Logger: logger,
	})
}
