package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"fmt"
	"time"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
)

// TokenResult is the transient outcome of a token-endpoint call. It is never
// persisted verbatim; the flow service normalizes it into a session record.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	IDToken      string

	// Expiry is the absolute access-token expiry reported by the provider.
	// Zero when the response carried no expires_in.
	Expiry time.Time
}

// Provider encodes one identity provider's protocol deviations from generic
// OAuth2/OIDC behind a stable contract, so the flow service stays
// protocol-generic and providers can be substituted without touching
// orchestration.
type Provider interface {
	// Name is the provider identifier used in routes (e.g., "zitadel").
	Name() string

	// AuthCodeURL builds the authorization endpoint URL for the given CSRF
	// state and PKCE verifier (the adapter derives the S256 challenge).
	AuthCodeURL(state, pkceVerifier string) string

	// ExchangeCode swaps an authorization code for tokens.
	ExchangeCode(ctx context.Context, code, pkceVerifier string) (TokenResult, error)

	// RefreshToken performs the refresh_token grant.
	RefreshToken(ctx context.Context, refreshToken string) (TokenResult, error)

	// FetchUserInfo retrieves the raw UserInfo claims for an access token.
	FetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error)

	// MapClaimsToIdentity translates raw claims into the domain identity.
	// Missing claims map to empty fields; it never fails.
	MapClaimsToIdentity(claims map[string]any) domainauth.Identity

	// EndSessionURL builds the provider logout URL carrying the ID token
	// hint and the CSRF state for the logout callback.
	EndSessionURL(idToken, state string) string
}

// SessionStore persists and retrieves per-browser session records.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ProviderRejectionError reports a non-2xx response from the identity
// provider. Status and Body are logged server-side and never shown to users.
type ProviderRejectionError struct {
	Status int
	Body   string
}

func (e *ProviderRejectionError) Error() string {
	return fmt.Sprintf("provider rejected request: status %d", e.Status)
}
