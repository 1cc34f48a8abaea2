package zitadel

// Package zitadel implements the provider port for ZITADEL. It encodes the
// protocol deviations this IdP has from generic OAuth2/OIDC: Basic-Auth
// client credentials on the code exchange (body credentials are rejected
// with 400), a forced openid/profile/email scope set, and fixed oauth/v2
// and oidc/v1 endpoint paths under the instance domain.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	"github.com/open-rp/zitadel-rp/internal/ports"
	"golang.org/x/oauth2"
)

const providerName = "zitadel"

// forcedScopes are always requested. Without openid ZITADEL omits the ID
// token, which breaks federated logout and user identification.
var forcedScopes = []string{"openid", "profile", "email"}

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

// Config holds configuration for the ZITADEL provider adapter.
type Config struct {
	Domain        string // base URL of the ZITADEL instance, no trailing slash
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	PostLogoutURL string
	Scopes        []string
	HTTPClient    *http.Client // optional, defaults to a 10s-timeout client
}

// Provider implements ports.Provider for ZITADEL.
type Provider struct {
	domain        string
	postLogoutURL string
	httpClient    *http.Client

	// exchange uses Basic-Auth header credentials; refresh puts them in the
	// form body. ZITADEL accepts nothing else for either call.
	exchangeConfig *oauth2.Config
	refreshConfig  *oauth2.Config

	// verifier is optional; when set, ExchangeCode verifies the ID token
	// signature and audience. The presence gate lives in the flow service.
	verifier *gooidc.IDTokenVerifier
}

var _ ports.Provider = (*Provider)(nil)

// NewProvider creates a ZITADEL provider adapter. It performs no network IO;
// call EnableIDTokenVerification to fetch the discovery document and JWKS.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Domain == "" {
		return nil, errors.New("domain is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	domain := strings.TrimRight(cfg.Domain, "/")
	scopes := scopeUnion(cfg.Scopes)

	base := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
	}

	exchange := base
	exchange.Endpoint = oauth2.Endpoint{
		AuthURL:   domain + "/oauth/v2/authorize",
		TokenURL:  domain + "/oauth/v2/token",
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	refresh := base
	refresh.Endpoint = oauth2.Endpoint{
		AuthURL:   domain + "/oauth/v2/authorize",
		TokenURL:  domain + "/oauth/v2/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return &Provider{
		domain:         domain,
		postLogoutURL:  cfg.PostLogoutURL,
		httpClient:     httpClient,
		exchangeConfig: &exchange,
		refreshConfig:  &refresh,
	}, nil
}

// EnableIDTokenVerification fetches the ZITADEL discovery document and wires
// an ID-token verifier. ZITADEL's issuer is the instance domain itself.
func (p *Provider) EnableIDTokenVerification(ctx context.Context) error {
	ctx = gooidc.ClientContext(ctx, p.httpClient)
	op, err := gooidc.NewProvider(ctx, p.domain)
	if err != nil {
		return fmt.Errorf("oidc discovery: %w", err)
	}
	p.verifier = op.Verifier(&gooidc.Config{ClientID: p.exchangeConfig.ClientID})
	return nil
}

func (p *Provider) Name() string { return providerName }

// AuthCodeURL builds the authorization URL with standard OAuth2 parameters
// plus the S256 PKCE challenge derived from the verifier.
func (p *Provider) AuthCodeURL(state, pkceVerifier string) string {
	return p.exchangeConfig.AuthCodeURL(state, oauth2.S256ChallengeOption(pkceVerifier))
}

// ExchangeCode swaps the authorization code for tokens. Client credentials go
// into the Authorization header, never the body. Non-2xx responses surface as
// *ports.ProviderRejectionError with status and body.
func (p *Provider) ExchangeCode(ctx context.Context, code, pkceVerifier string) (ports.TokenResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.exchangeConfig.Exchange(ctx, code, oauth2.VerifierOption(pkceVerifier))
	if err != nil {
		return ports.TokenResult{}, asProviderError("exchange code", err)
	}

	res := tokenResult(tok)
	if res.IDToken != "" && p.verifier != nil {
		if _, verr := p.verifier.Verify(ctx, res.IDToken); verr != nil {
			return ports.TokenResult{}, fmt.Errorf("verify id_token: %w", verr)
		}
	}
	return res, nil
}

// RefreshToken performs the refresh_token grant. Unlike the code exchange,
// client credentials are form-encoded into the body.
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (ports.TokenResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	src := p.refreshConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return ports.TokenResult{}, asProviderError("refresh token", err)
	}
	return tokenResult(tok), nil
}

// FetchUserInfo retrieves raw claims from the OIDC UserInfo endpoint.
func (p *Provider) FetchUserInfo(ctx context.Context, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.domain+"/oidc/v1/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read userinfo response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ports.ProviderRejectionError{Status: resp.StatusCode, Body: string(body)}
	}

	var claims map[string]any
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	return claims, nil
}

// MapClaimsToIdentity extracts the standard OIDC profile claims.
// Missing claims map to empty fields.
func (p *Provider) MapClaimsToIdentity(claims map[string]any) domainauth.Identity {
	return domainauth.Identity{
		Subject:   stringClaim(claims, "sub"),
		Name:      stringClaim(claims, "name"),
		Email:     stringClaim(claims, "email"),
		AvatarURL: stringClaim(claims, "picture"),
	}
}

// EndSessionURL builds the federated logout URL with the ID token hint, the
// post-logout redirect, and the CSRF correlation state.
func (p *Provider) EndSessionURL(idToken, state string) string {
	q := url.Values{}
	q.Set("id_token_hint", idToken)
	q.Set("post_logout_redirect_uri", p.postLogoutURL)
	q.Set("state", state)
	return p.domain + "/oidc/v1/end_session?" + q.Encode()
}

// scopeUnion returns the deduplicated union of the configured scopes and the
// forced additions, keeping the configured order first.
func scopeUnion(configured []string) []string {
	seen := make(map[string]bool, len(configured)+len(forcedScopes))
	out := make([]string, 0, len(configured)+len(forcedScopes))
	for _, lists := range [][]string{configured, forcedScopes} {
		for _, sc := range lists {
			if sc == "" || seen[sc] {
				continue
			}
			seen[sc] = true
			out = append(out, sc)
		}
	}
	return out
}

// tokenResult normalizes an oauth2 token into the port shape. The ID token
// rides along as an extra field of the token response.
func tokenResult(tok *oauth2.Token) ports.TokenResult {
	res := ports.TokenResult{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if raw, ok := tok.Extra("id_token").(string); ok {
		res.IDToken = raw
	}
	return res
}

// asProviderError maps oauth2 retrieval failures onto the port error model:
// non-2xx responses become ProviderRejectionError, everything else is wrapped
// as a transport failure.
func asProviderError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &ports.ProviderRejectionError{
			Status: re.Response.StatusCode,
			Body:   string(re.Body),
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func stringClaim(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
