package config

import (
	"strings"
	"time"
)

// ZitadelConfig contains the ZITADEL provider configuration.
// All URLs are derived from Domain, which is the base URL of the
// ZITADEL instance (e.g., "https://auth.example.zitadel.cloud").
type ZitadelConfig struct {
	Domain       string `env:"DOMAIN"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`

	// RedirectURL is the callback URL registered with ZITADEL.
	RedirectURL string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback/zitadel"`

	// PostLogoutURL is where ZITADEL sends the browser after end_session.
	PostLogoutURL string `env:"POST_LOGOUT_URL" envDefault:"http://localhost:8080/auth/logout/callback"`

	// Scopes requested during sign-in. The provider adapter always adds
	// openid, profile, and email on top of this list.
	Scopes []string `env:"SCOPES" envSeparator:" " envDefault:"openid profile email offline_access"`

	// VerifyIDToken enables signature verification of the ID token using
	// the ZITADEL discovery document and JWKS. The presence check on the
	// ID token is unconditional either way.
	VerifyIDToken bool `env:"VERIFY_ID_TOKEN" envDefault:"true"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Zitadel configuration for the single configured provider.
	Zitadel ZitadelConfig `envPrefix:"ZITADEL_"`

	// DefaultTokenTTL is the access-token lifetime assumed when the token
	// endpoint response omits expires_in.
	DefaultTokenTTL time.Duration `env:"AUTH_DEFAULT_TOKEN_TTL" envDefault:"1h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.Zitadel.Domain = strings.TrimRight(a.Zitadel.Domain, "/")
	if a.DefaultTokenTTL <= 0 {
		a.DefaultTokenTTL = time.Hour
	}
}
