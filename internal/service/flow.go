package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	"github.com/open-rp/zitadel-rp/internal/ports"
	"golang.org/x/oauth2"
)

// Sentinel errors for the sign-in and logout handshakes. Handlers map these
// onto opaque user-facing error codes; details stay in the server log.
var (
	// ErrMissingIDToken means the token response carried no id_token. The
	// flow fails closed: without the identity assertion there is no session
	// and no federated logout.
	ErrMissingIDToken = errors.New("token response missing id_token")

	// ErrNoSignInAttempt means the callback arrived without a pending PKCE
	// verifier, e.g. a replayed or forged callback.
	ErrNoSignInAttempt = errors.New("no sign-in attempt in progress")

	// ErrStateMismatch means the callback state did not match the value
	// stored when sign-in started.
	ErrStateMismatch = errors.New("state parameter mismatch")

	// ErrNoActiveSession means logout was requested without an ID token in
	// the session.
	ErrNoActiveSession = errors.New("no valid session or ID token found")

	// ErrInvalidLogoutState means the logout callback state was missing or
	// did not match. The session is left untouched.
	ErrInvalidLogoutState = errors.New("invalid or missing state parameter")
)

// AuthFlowOptions groups dependencies for AuthFlowService.
type AuthFlowOptions struct {
	Provider ports.Provider
	Sessions ports.SessionStore
	Tokens   *TokenService
	Logger   *slog.Logger
}

// AuthFlowService orchestrates the end-to-end handshake: sign-in initiation,
// callback processing with the ID-token gate, and the logout handshake with
// its CSRF state matching.
type AuthFlowService struct {
	provider ports.Provider
	sessions ports.SessionStore
	tokens   *TokenService
	logger   *slog.Logger
}

// NewAuthFlowService constructs a new AuthFlowService.
func NewAuthFlowService(opts AuthFlowOptions) *AuthFlowService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthFlowService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		tokens:   opts.Tokens,
		logger:   logger,
	}
}

// ProviderName returns the route identifier of the configured provider.
func (s *AuthFlowService) ProviderName() string { return s.provider.Name() }

// StartSignIn generates the PKCE verifier and CSRF state, persists both on
// the session, and returns the provider authorization URL to redirect to.
func (s *AuthFlowService) StartSignIn(ctx context.Context, sess *domainauth.Session) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	sess.PKCEVerifier = oauth2.GenerateVerifier()
	sess.SignInState = state
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return s.provider.AuthCodeURL(state, sess.PKCEVerifier), nil
}

// CallbackInput carries the query parameters of the provider callback.
type CallbackInput struct {
	Code  string
	State string
}

// CompleteSignIn consumes the pending PKCE verifier, exchanges the code,
// enforces the ID-token gate, fetches UserInfo claims, and materializes the
// authenticated session.
//
// The verifier and state are single-use: they are cleared and persisted
// before the exchange so a replayed callback cannot reuse them, whatever
// the outcome of this attempt.
func (s *AuthFlowService) CompleteSignIn(ctx context.Context, sess *domainauth.Session, in CallbackInput) error {
	verifier := sess.PKCEVerifier
	expectedState := sess.SignInState
	sess.PKCEVerifier = ""
	sess.SignInState = ""
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if verifier == "" {
		return ErrNoSignInAttempt
	}
	if in.State == "" || in.State != expectedState {
		return ErrStateMismatch
	}
	if in.Code == "" {
		return errors.New("authorization code is required")
	}

	tok, err := s.provider.ExchangeCode(ctx, in.Code, verifier)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	if tok.IDToken == "" {
		s.logger.ErrorContext(ctx, "provider did not return an id_token; check scopes")
		return ErrMissingIDToken
	}

	claims, err := s.provider.FetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}

	sess.Identity = claims
	sess.AccessToken = tok.AccessToken
	sess.RefreshToken = tok.RefreshToken
	sess.IDToken = tok.IDToken
	sess.ExpiresAt = s.tokens.AbsoluteExpiry(tok.Expiry)
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// StartLogout builds the provider end-session URL and stores the generated
// CSRF state on the session. Requires an ID token from the original sign-in.
func (s *AuthFlowService) StartLogout(ctx context.Context, sess *domainauth.Session) (string, error) {
	if sess.IDToken == "" {
		return "", ErrNoActiveSession
	}

	redirect, err := s.tokens.BuildLogoutURL(sess.IDToken)
	if err != nil {
		return "", err
	}

	sess.LogoutState = redirect.State
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return redirect.URL, nil
}

// CompleteLogout compares the callback state against the stored logout state.
// On an exact non-empty match the whole session record is destroyed. The
// stored state is consumed either way, so replaying the callback always
// lands on the error path.
func (s *AuthFlowService) CompleteLogout(ctx context.Context, sess *domainauth.Session, state string) error {
	stored := sess.LogoutState
	sess.LogoutState = ""

	if state != "" && stored != "" && state == stored {
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	}

	if err := s.sessions.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return ErrInvalidLogoutState
}

// randomState generates a URL-safe CSRF state for the authorization request.
func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
