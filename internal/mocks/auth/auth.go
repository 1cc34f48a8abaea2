package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	"github.com/open-rp/zitadel-rp/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Provider     = (*MockProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
)

// MockProvider simulates an identity provider with deterministic defaults.
// Any of the Func fields overrides the corresponding default behavior.
type MockProvider struct {
	ExchangeFunc  func(ctx context.Context, code, pkceVerifier string) (ports.TokenResult, error)
	RefreshFunc   func(ctx context.Context, refreshToken string) (ports.TokenResult, error)
	UserInfoFunc  func(ctx context.Context, accessToken string) (map[string]any, error)
	ProviderName  string
	DefaultClaims map[string]any
	DefaultToken  ports.TokenResult
}

// NewMockProvider creates a MockProvider with sensible defaults: a full token
// result and a standard OIDC claim set.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		ProviderName: "zitadel",
		DefaultToken: ports.TokenResult{
			AccessToken:  "mock-access-token",
			RefreshToken: "mock-refresh-token",
			IDToken:      "mock-id-token",
			Expiry:       time.Now().Add(time.Hour),
		},
		DefaultClaims: map[string]any{
			"sub":     "mock-user-1",
			"name":    "Mock User",
			"email":   "mock.user@example.com",
			"picture": "https://example.com/avatar.png",
		},
	}
}

func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "zitadel"
	}
	return m.ProviderName
}

func (m *MockProvider) AuthCodeURL(state, pkceVerifier string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("code_challenge", pkceVerifier)
	return "https://mock-idp/oauth/v2/authorize?" + q.Encode()
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code, pkceVerifier string) (ports.TokenResult, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code, pkceVerifier)
	}
	return m.DefaultToken, nil
}

func (m *MockProvider) RefreshToken(ctx context.Context, refreshToken string) (ports.TokenResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return m.DefaultToken, nil
}

func (m *MockProvider) FetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	if m.UserInfoFunc != nil {
		return m.UserInfoFunc(ctx, accessToken)
	}
	return m.DefaultClaims, nil
}

func (m *MockProvider) MapClaimsToIdentity(claims map[string]any) domainauth.Identity {
	get := func(k string) string {
		if v, ok := claims[k].(string); ok {
			return v
		}
		return ""
	}
	return domainauth.Identity{
		Subject:   get("sub"),
		Name:      get("name"),
		Email:     get("email"),
		AvatarURL: get("picture"),
	}
}

func (m *MockProvider) EndSessionURL(idToken, state string) string {
	return fmt.Sprintf("https://mock-idp/oidc/v1/end_session?id_token_hint=%s&state=%s",
		url.QueryEscape(idToken), url.QueryEscape(state))
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	delete(m.sessions, id)
	return nil
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}
