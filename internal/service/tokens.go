package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/open-rp/zitadel-rp/internal/ports"
)

// logoutStateBytes is the entropy of the logout CSRF state (128 bits). The
// state is a correlation token, not a secret key.
const logoutStateBytes = 16

// TokenServiceOptions groups dependencies for TokenService.
type TokenServiceOptions struct {
	Provider ports.Provider
	Logger   *slog.Logger

	// DefaultTokenTTL is assumed when a token response omits expires_in.
	DefaultTokenTTL time.Duration

	// Now overrides the clock for tests.
	Now func() time.Time
}

// TokenService owns the token lifecycle: expiry detection, silent refresh,
// and logout-URL construction with CSRF state generation.
type TokenService struct {
	provider   ports.Provider
	logger     *slog.Logger
	defaultTTL time.Duration
	now        func() time.Time
}

// NewTokenService constructs a new TokenService.
func NewTokenService(opts TokenServiceOptions) *TokenService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.DefaultTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		provider:   opts.Provider,
		logger:     logger,
		defaultTTL: ttl,
		now:        now,
	}
}

// IsExpired reports whether an access token is past its expiry. An unknown
// expiry (zero) counts as expired.
func (s *TokenService) IsExpired(expiresAt int64) bool {
	if expiresAt == 0 {
		return true
	}
	return s.now().Unix() >= expiresAt
}

// AbsoluteExpiry normalizes a provider-reported expiry into unix seconds,
// applying the configured default lifetime when the provider omitted one.
func (s *TokenService) AbsoluteExpiry(expiry time.Time) int64 {
	if expiry.IsZero() {
		return s.now().Add(s.defaultTTL).Unix()
	}
	return expiry.Unix()
}

// RefreshResult carries the normalized outcome of a successful refresh.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// Refresh exchanges a refresh token for fresh tokens. Any provider rejection
// or transport failure returns nil: the caller must treat nil as "refresh
// failed, re-authenticate". When the provider omits a rotated refresh token,
// the prior one is preserved.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) *RefreshResult {
	if refreshToken == "" {
		return nil
	}

	res, err := s.provider.RefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.ErrorContext(ctx, "token refresh failed", "error", err)
		return nil
	}

	out := &RefreshResult{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    s.AbsoluteExpiry(res.Expiry),
	}
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out
}

// LogoutRedirect is the provider end-session URL together with the CSRF
// state that the logout callback must echo back.
type LogoutRedirect struct {
	URL   string
	State string
}

// BuildLogoutURL generates a fresh random logout state and the provider
// end-session URL carrying it.
func (s *TokenService) BuildLogoutURL(idToken string) (LogoutRedirect, error) {
	buf := make([]byte, logoutStateBytes)
	if _, err := rand.Read(buf); err != nil {
		return LogoutRedirect{}, fmt.Errorf("generate logout state: %w", err)
	}
	state := hex.EncodeToString(buf)

	return LogoutRedirect{
		URL:   s.provider.EndSessionURL(idToken, state),
		State: state,
	}, nil
}
